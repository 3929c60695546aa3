// Package mail implements the domain Mailer on top of SMTP.
package mail

import (
	"context"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"sync"
	"time"

	"splitpay/config"
	deliverycontext "splitpay/internal/delivery/context"
	"splitpay/internal/domain/service"
	"splitpay/internal/errors"

	"github.com/jhillyerd/enmime"
	"go.uber.org/fx"
)

// Params holds dependencies for the Mailer, injected by Fx
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New returns an SMTP mailer when credentials are configured, otherwise a no-op mailer.
// The SMTP mailer drains in-flight sends on shutdown.
func New(params Params) service.Mailer {
	cfg := params.Config.Mail
	if !cfg.Enabled() {
		params.Logger.Info("Mail not configured, using no-op mailer")

		return &noopMailer{logger: params.Logger}
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	sender := enmime.NewSMTP(addr, smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host))

	params.Logger.Info("Using SMTP mailer", slog.String("addr", addr), slog.String("from", cfg.FromAddress))

	mailer := newSMTPMailer(sender, cfg.FromName, cfg.FromAddress, params.Logger)
	params.Append(fx.Hook{
		OnStop: mailer.Wait,
	})

	return mailer
}

// smtpMailer composes plain-text MIME messages and hands them to an enmime.Sender.
type smtpMailer struct {
	sender      enmime.Sender
	fromName    string
	fromAddress string
	logger      *slog.Logger
	now         func() time.Time
	inflight    sync.WaitGroup
}

func newSMTPMailer(sender enmime.Sender, fromName, fromAddress string, logger *slog.Logger) *smtpMailer {
	return &smtpMailer{
		sender:      sender,
		fromName:    fromName,
		fromAddress: fromAddress,
		logger:      logger,
		now:         time.Now,
	}
}

// SendEmail sends one message on its own goroutine. The outcome is logged and
// delivered on the returned channel, which callers are free to ignore.
func (m *smtpMailer) SendEmail(ctx context.Context, to, subject, body string) <-chan error {
	result := make(chan error, 1)

	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		defer close(result)

		logger := deliverycontext.GetLoggerOrDefault(ctx, m.logger)
		err := m.send(ctx, to, subject, body)
		if err != nil {
			logger.Error("Failed to send email", slog.String("to", to), slog.Any("error", err))
		} else {
			logger.Info("Email sent", slog.String("to", to))
		}

		result <- err
	}()

	return result
}

func (m *smtpMailer) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "send cancelled")
	}

	err := enmime.Builder().
		From(m.fromName, m.fromAddress).
		To("", to).
		Subject(subject).
		Date(m.now()).
		Text([]byte(body)).
		Send(m.sender)
	if err != nil {
		return errors.Wrapf(err, "failed to send email to %s", to)
	}

	return nil
}

// Wait blocks until every in-flight send has finished or ctx expires.
func (m *smtpMailer) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "mailer did not drain before shutdown")
	}
}

// noopMailer stands in when no SMTP account is configured.
type noopMailer struct {
	logger *slog.Logger
}

func (m *noopMailer) SendEmail(_ context.Context, to, subject, _ string) <-chan error {
	m.logger.Debug("[NoopMailer] Mail disabled, skipping", slog.String("to", to), slog.String("subject", subject))

	result := make(chan error, 1)
	result <- nil
	close(result)

	return result
}
