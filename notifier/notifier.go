// Package notifier delivers transactional email.
package notifier

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Notifier sends one HTML email.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// LogNotifier writes messages to the log instead of delivering them.
type LogNotifier struct{}

var _ Notifier = LogNotifier{}

func (LogNotifier) Send(_ context.Context, to, subject, htmlBody string) error {
	log.Info().Str("to", to).Str("subject", subject).Int("body_bytes", len(htmlBody)).Msg("email not delivered, log transport")
	return nil
}
