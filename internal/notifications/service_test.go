package notifications

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gregdel/pushover"
	"golang.org/x/time/rate"

	"animetracker/internal/config"
)

type capturedRequest struct {
	title    string
	tags     string
	priority string
	body     string
}

func newNtfyServer(t *testing.T, status int) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var mu sync.Mutex
	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		captured = append(captured, capturedRequest{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func testConfig(topic string) *config.Config {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	return &cfg
}

func TestNewServiceReturnsNoopWhenUnconfigured(t *testing.T) {
	svc := NewService(testConfig(""))
	if _, ok := svc.(noopService); !ok {
		t.Fatalf("expected noop service, got %T", svc)
	}
	if err := svc.NotifyMatchFound(context.Background(), "Frieren", 1, 5, "title"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if _, ok := NewService(nil).(noopService); !ok {
		t.Fatal("expected noop service for nil config")
	}
}

func TestNtfyFormatsPayloads(t *testing.T) {
	srv, captured := newNtfyServer(t, http.StatusOK)
	svc := NewService(testConfig(srv.URL))
	ctx := context.Background()

	if err := svc.NotifyMatchFound(ctx, " Frieren ", 1, 5, "[SubsPlease] Frieren - 05 (1080p)"); err != nil {
		t.Fatalf("NotifyMatchFound: %v", err)
	}
	if err := svc.NotifyScanCompleted(ctx, 12, 2, 1500*time.Millisecond); err != nil {
		t.Fatalf("NotifyScanCompleted: %v", err)
	}
	if err := svc.NotifyError(ctx, errors.New("nyaa down"), "scan"); err != nil {
		t.Fatalf("NotifyError: %v", err)
	}
	if err := svc.TestNotification(ctx); err != nil {
		t.Fatalf("TestNotification: %v", err)
	}

	want := []capturedRequest{
		{title: "Anime Tracker - Episode Found", tags: "animetracker,match", body: "Found Frieren S01E05\n[SubsPlease] Frieren - 05 (1080p)"},
		{title: "Anime Tracker - Scan Complete", tags: "animetracker,scan,completed", priority: "low", body: "Scan completed in 2s: 12 episodes processed, 2 found"},
		{title: "Anime Tracker - Error", tags: "animetracker,error", priority: "high", body: "Error during scan: nyaa down"},
		{title: "Anime Tracker - Test", tags: "animetracker,test", priority: "low", body: "Notification system test"},
	}
	if len(*captured) != len(want) {
		t.Fatalf("expected %d requests, got %d", len(want), len(*captured))
	}
	for i, w := range want {
		if (*captured)[i] != w {
			t.Fatalf("request %d = %+v, want %+v", i, (*captured)[i], w)
		}
	}
}

func TestNtfyReportsHTTPErrors(t *testing.T) {
	srv, _ := newNtfyServer(t, http.StatusForbidden)
	err := NewService(testConfig(srv.URL)).TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}

func TestEventSwitchesSilenceKinds(t *testing.T) {
	srv, captured := newNtfyServer(t, http.StatusOK)
	cfg := testConfig(srv.URL)
	cfg.Notifications.OnMatch = false
	cfg.Notifications.OnScanComplete = false
	cfg.Notifications.OnError = false
	svc := NewService(cfg)
	ctx := context.Background()

	_ = svc.NotifyMatchFound(ctx, "A", 1, 1, "")
	_ = svc.NotifyScanCompleted(ctx, 1, 0, time.Second)
	_ = svc.NotifyError(ctx, errors.New("x"), "")
	if len(*captured) != 0 {
		t.Fatalf("expected silenced events, got %d requests", len(*captured))
	}
	if err := svc.TestNotification(ctx); err != nil || len(*captured) != 1 {
		t.Fatalf("expected test notification to ignore switches, err=%v count=%d", err, len(*captured))
	}
}

type fakePushover struct {
	messages []*pushover.Message
	err      error
}

func (f *fakePushover) SendMessage(message *pushover.Message, _ *pushover.Recipient) (*pushover.Response, error) {
	f.messages = append(f.messages, message)
	return &pushover.Response{Status: 1}, f.err
}

func TestPushoverPriorityMapping(t *testing.T) {
	fake := &fakePushover{}
	p := &pushoverNotifier{app: fake, recipient: pushover.NewRecipient("user"), limiter: rate.NewLimiter(rate.Inf, 1)}
	ctx := context.Background()

	if err := p.send(ctx, payload{title: "t", message: "m", priority: "high"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := p.send(ctx, payload{title: "t", message: "m", priority: "low"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(fake.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(fake.messages))
	}
	if fake.messages[0].Priority != pushover.PriorityHigh || fake.messages[1].Priority != pushover.PriorityLow {
		t.Fatalf("unexpected priorities %d/%d", fake.messages[0].Priority, fake.messages[1].Priority)
	}
	if fake.messages[0].Title != "t" || fake.messages[0].Message != "m" {
		t.Fatalf("unexpected message %+v", fake.messages[0])
	}
}

type failingNotifier struct{ err error }

func (f failingNotifier) send(context.Context, payload) error { return f.err }

func TestBroadcastJoinsErrors(t *testing.T) {
	srv, captured := newNtfyServer(t, http.StatusOK)
	first := errors.New("pushover down")
	svc := &service{
		targets: []notifier{
			failingNotifier{err: first},
			&ntfyNotifier{endpoint: srv.URL, client: srv.Client()},
		},
		onMatch: true,
	}
	err := svc.NotifyMatchFound(context.Background(), "A", 1, 1, "")
	if !errors.Is(err, first) {
		t.Fatalf("expected joined error to include first failure, got %v", err)
	}
	if len(*captured) != 1 {
		t.Fatalf("expected remaining targets to still be notified, got %d", len(*captured))
	}
}

func TestNewServiceFansOutToPushover(t *testing.T) {
	cfg := testConfig("https://ntfy.example/topic")
	cfg.Notifications.PushoverToken = "token"
	cfg.Notifications.PushoverUser = "user"
	svc, ok := NewService(cfg).(*service)
	if !ok {
		t.Fatalf("expected fan-out service, got %T", NewService(cfg))
	}
	if len(svc.targets) != 2 {
		t.Fatalf("expected ntfy and pushover targets, got %d", len(svc.targets))
	}
}
