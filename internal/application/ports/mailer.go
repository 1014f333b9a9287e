package ports

import "context"

// Mailer sends plain-text notification email. The queue worker is the only
// caller; request handlers never send mail inline.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
