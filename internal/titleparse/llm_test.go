package titleparse

import (
	"context"
	"errors"
	"strings"
	"testing"

	"animetracker/internal/matching"
)

type fakeCompleter struct {
	response string
	err      error
	calls    int
	prompt   string
	system   string
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.system = systemPrompt
	f.prompt = userPrompt
	return f.response, f.err
}

func TestLLMParserDefaults(t *testing.T) {
	fake := &fakeCompleter{response: "Here you go:\n```json\n{\"showName\": \"Frieren\", \"episode\": \"5\", \"quality\": null}\n```"}
	parser := NewLLMParser(fake)

	got, err := parser.Parse(context.Background(), "[SubsPlease] Frieren - 05")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := matching.Candidate{ShowName: "Frieren", Season: 1, Episode: 5, Quality: "Unknown", Group: "Unknown"}
	if got == nil || *got != want {
		t.Fatalf("Parse = %+v, want %+v", got, want)
	}
	if !strings.Contains(fake.prompt, `"[SubsPlease] Frieren - 05"`) {
		t.Fatalf("expected title quoted in prompt, got %q", fake.prompt)
	}
	if fake.system != systemPrompt {
		t.Fatalf("unexpected system prompt %q", fake.system)
	}
}

func TestLLMParserBatch(t *testing.T) {
	fake := &fakeCompleter{response: `{"showName":"Bleach","season":2,"episode":null,"quality":"1080p","group":"Erai-raws","batch":true,"batchStart":1,"batchEnd":13.0}`}
	got, err := NewLLMParser(fake).Parse(context.Background(), "[Erai-raws] Bleach S2 01-13")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := matching.Candidate{ShowName: "Bleach", Season: 2, Episode: 1, Quality: "1080p", Group: "Erai-raws", Batch: true, BatchStart: 1, BatchEnd: 13}
	if got == nil || *got != want {
		t.Fatalf("Parse = %+v, want %+v", got, want)
	}
}

func TestLLMParserMissingFields(t *testing.T) {
	for _, response := range []string{
		`{"showName":"","episode":3}`,
		`{"showName":"Frieren","episode":0}`,
		`{"showName":"Frieren","batch":true,"batchStart":1}`,
	} {
		got, err := NewLLMParser(&fakeCompleter{response: response}).Parse(context.Background(), "title")
		if err != nil {
			t.Fatalf("Parse(%s): %v", response, err)
		}
		if got != nil {
			t.Fatalf("Parse(%s) = %+v, want nil", response, *got)
		}
	}
}

func TestLLMParserErrors(t *testing.T) {
	_, err := NewLLMParser(&fakeCompleter{response: "I cannot help with that"}).Parse(context.Background(), "title")
	if !errors.Is(err, ErrUnparseable) {
		t.Fatalf("expected ErrUnparseable, got %v", err)
	}

	boom := errors.New("boom")
	_, err = NewLLMParser(&fakeCompleter{err: boom}).Parse(context.Background(), "title")
	if !errors.Is(err, boom) {
		t.Fatalf("expected client error to propagate, got %v", err)
	}

	fake := &fakeCompleter{}
	got, err := NewLLMParser(fake).Parse(context.Background(), "  ")
	if err != nil || got != nil || fake.calls != 0 {
		t.Fatalf("expected blank title to short-circuit, got %+v %v calls=%d", got, err, fake.calls)
	}
}
