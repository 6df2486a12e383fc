package delivery

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"devstudio-site/internal/common/metrics"
)

// MailSender hands one message to a mail transport.
type MailSender interface {
	Send(ctx context.Context, msg Message) error
}

// MailSenderFunc adapts a function to MailSender.
type MailSenderFunc func(ctx context.Context, msg Message) error

func (f MailSenderFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// SendAll sends every message concurrently and waits for all of them. The
// first failure cancels the sends still in flight and is returned.
func SendAll(ctx context.Context, channel string, sender MailSender, msgs []Message) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, msg := range msgs {
		msg := msg
		g.Go(func() error {
			if err := sender.Send(gctx, msg); err != nil {
				metrics.MailsSent.WithLabelValues(channel, msg.Kind, "failed").Inc()
				return fmt.Errorf("send %s mail: %w", msg.Kind, err)
			}
			metrics.MailsSent.WithLabelValues(channel, msg.Kind, "sent").Inc()
			return nil
		})
	}
	return g.Wait()
}
