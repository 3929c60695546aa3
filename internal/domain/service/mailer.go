package service

import "context"

// Mailer sends plain-text notification emails.
type Mailer interface {
	// SendEmail dispatches a message in the background and returns a channel that
	// receives exactly one value: nil on success or the transport error.
	// The channel is buffered, so callers that do not care may drop it.
	SendEmail(ctx context.Context, to, subject, body string) <-chan error
}
