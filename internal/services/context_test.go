package services_test

import (
	"context"
	"testing"

	"animetracker/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithShowID(ctx, 42)
	ctx = services.WithJobID(ctx, "job-1")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.ShowIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("unexpected show id: %v %v", id, ok)
	}
	if job, ok := services.JobIDFromContext(ctx); !ok || job != "job-1" {
		t.Fatalf("unexpected job id: %v %v", job, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankJobPreservesContext(t *testing.T) {
	ctx := services.WithJobID(context.Background(), "")
	if _, ok := services.JobIDFromContext(ctx); ok {
		t.Fatal("expected no job value")
	}
	if _, ok := services.ShowIDFromContext(ctx); ok {
		t.Fatal("expected no show value")
	}
}
