package services_test

import (
	"errors"
	"strings"
	"testing"

	"animetracker/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalService, "nyaa", "search", "request failed", base)
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"nyaa", "search", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestIsClientError(t *testing.T) {
	cases := map[error]bool{
		services.Wrap(services.ErrValidation, "tracker", "create show", "names required", nil): true,
		services.Wrap(services.ErrNotFound, "store", "get show", "id 3", nil):                  true,
		services.Wrap(services.ErrConflict, "scan", "start", "already running", nil):           true,
		services.Wrap(services.ErrExternalService, "nyaa", "search", "", errors.New("x")):      false,
		errors.New("plain"): false,
	}
	for err, want := range cases {
		if got := services.IsClientError(err); got != want {
			t.Fatalf("IsClientError(%v) = %v, want %v", err, got, want)
		}
	}
}
