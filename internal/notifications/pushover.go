package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/gregdel/pushover"
	"golang.org/x/time/rate"
)

// pushoverSender is the part of *pushover.Pushover used here.
type pushoverSender interface {
	SendMessage(message *pushover.Message, recipient *pushover.Recipient) (*pushover.Response, error)
}

type pushoverNotifier struct {
	app       pushoverSender
	recipient *pushover.Recipient
	limiter   *rate.Limiter
}

func newPushoverNotifier(token, user string) *pushoverNotifier {
	return &pushoverNotifier{
		app:       pushover.New(token),
		recipient: pushover.NewRecipient(user),
		limiter:   rate.NewLimiter(rate.Every(10*time.Second), 3),
	}
}

func (p *pushoverNotifier) send(ctx context.Context, data payload) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pushover rate limit: %w", err)
	}
	message := pushover.NewMessageWithTitle(data.message, data.title)
	switch data.priority {
	case "high":
		message.Priority = pushover.PriorityHigh
	case "low":
		message.Priority = pushover.PriorityLow
	}

	// SendMessage has no context parameter, so honour cancellation around it.
	done := make(chan error, 1)
	go func() {
		_, err := p.app.SendMessage(message, p.recipient)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send pushover notification: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
