package email

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
)

// LogMailer logs mail instead of sending it, for development without SMTP.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.log.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("email (log only; configure SMTP for real email)")
	return nil
}

var _ ports.Mailer = (*LogMailer)(nil)
