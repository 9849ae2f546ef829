package notifications

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"animetracker/internal/config"
)

const userAgent = "animetracker/0.1.0"

// Service defines the notification surface used by scans and the CLI.
type Service interface {
	NotifyMatchFound(ctx context.Context, show string, season, episode int, releaseTitle string) error
	NotifyScanCompleted(ctx context.Context, processed, found int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type notifier interface {
	send(ctx context.Context, data payload) error
}

// NewService builds a service over every configured transport. When none is
// configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	n := cfg.Notifications
	timeout := time.Duration(n.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var targets []notifier
	if topic := strings.TrimSpace(n.NtfyTopic); topic != "" {
		targets = append(targets, &ntfyNotifier{
			endpoint: topic,
			client:   &http.Client{Timeout: timeout},
		})
	}
	if token, user := strings.TrimSpace(n.PushoverToken), strings.TrimSpace(n.PushoverUser); token != "" && user != "" {
		targets = append(targets, newPushoverNotifier(token, user))
	}
	if len(targets) == 0 {
		return noopService{}
	}
	return &service{
		targets:        targets,
		onMatch:        n.OnMatch,
		onScanComplete: n.OnScanComplete,
		onError:        n.OnError,
	}
}

type service struct {
	targets        []notifier
	onMatch        bool
	onScanComplete bool
	onError        bool
}

func (s *service) NotifyMatchFound(ctx context.Context, show string, season, episode int, releaseTitle string) error {
	if !s.onMatch {
		return nil
	}
	message := fmt.Sprintf("Found %s S%02dE%02d", strings.TrimSpace(show), season, episode)
	if releaseTitle = strings.TrimSpace(releaseTitle); releaseTitle != "" {
		message = fmt.Sprintf("%s\n%s", message, releaseTitle)
	}
	return s.broadcast(ctx, payload{
		title:   "Anime Tracker - Episode Found",
		message: message,
		tags:    []string{"animetracker", "match"},
	})
}

func (s *service) NotifyScanCompleted(ctx context.Context, processed, found int, duration time.Duration) error {
	if !s.onScanComplete {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	return s.broadcast(ctx, payload{
		title:    "Anime Tracker - Scan Complete",
		message:  fmt.Sprintf("Scan completed in %s: %d episodes processed, %d found", duration, processed, found),
		tags:     []string{"animetracker", "scan", "completed"},
		priority: "low",
	})
}

func (s *service) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !s.onError {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" during ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	return s.broadcast(ctx, payload{
		title:    "Anime Tracker - Error",
		message:  builder.String(),
		tags:     []string{"animetracker", "error"},
		priority: "high",
	})
}

func (s *service) TestNotification(ctx context.Context) error {
	return s.broadcast(ctx, payload{
		title:    "Anime Tracker - Test",
		message:  "Notification system test",
		tags:     []string{"animetracker", "test"},
		priority: "low",
	})
}

func (s *service) broadcast(ctx context.Context, data payload) error {
	var errs []error
	for _, target := range s.targets {
		if err := target.send(ctx, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type noopService struct{}

func (noopService) NotifyMatchFound(context.Context, string, int, int, string) error   { return nil }
func (noopService) NotifyScanCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                   { return nil }
func (noopService) TestNotification(context.Context) error                             { return nil }
