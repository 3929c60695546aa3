package mail

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"splitpay/config"

	"github.com/jhillyerd/enmime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

type recordingSender struct {
	mu          sync.Mutex
	reversePath string
	recipients  []string
	msg         []byte
	err         error
}

func (s *recordingSender) Send(reversePath string, recipients []string, msg []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reversePath = reversePath
	s.recipients = recipients
	s.msg = msg

	return s.err
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSMTPMailer_SendEmail(t *testing.T) {
	sender := &recordingSender{}
	mailer := newSMTPMailer(sender, "Expense Tracker", "bot@example.com", newDiscardLogger())

	err := <-mailer.SendEmail(context.Background(), "a@x.com", "You owe 120", "Settle up with B")
	require.NoError(t, err)

	assert.Equal(t, "bot@example.com", sender.reversePath)
	assert.Equal(t, []string{"a@x.com"}, sender.recipients)

	env, err := enmime.ReadEnvelope(bytes.NewReader(sender.msg))
	require.NoError(t, err)
	assert.Equal(t, "You owe 120", env.GetHeader("Subject"))
	assert.Contains(t, env.GetHeader("From"), "Expense Tracker")
	assert.Contains(t, env.GetHeader("From"), "bot@example.com")
	assert.Equal(t, "Settle up with B", strings.TrimSpace(env.Text))
	assert.Empty(t, env.HTML)
	assert.Empty(t, env.Attachments)
}

func TestSMTPMailer_FailureIsReportedNotRaised(t *testing.T) {
	sender := &recordingSender{err: assert.AnError}
	mailer := newSMTPMailer(sender, "Expense Tracker", "bot@example.com", newDiscardLogger())

	result := mailer.SendEmail(context.Background(), "a@x.com", "subject", "body")

	err, ok := <-result
	require.True(t, ok)
	assert.ErrorIs(t, err, assert.AnError)

	_, ok = <-result
	assert.False(t, ok, "result channel yields exactly one value")
}

func TestSMTPMailer_IgnoredResultDoesNotBlock(t *testing.T) {
	sender := &recordingSender{err: assert.AnError}
	mailer := newSMTPMailer(sender, "Expense Tracker", "bot@example.com", newDiscardLogger())

	for range 5 {
		_ = mailer.SendEmail(context.Background(), "a@x.com", "subject", "body")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, mailer.Wait(ctx))
}

func TestSMTPMailer_CancelledContext(t *testing.T) {
	sender := &recordingSender{}
	mailer := newSMTPMailer(sender, "Expense Tracker", "bot@example.com", newDiscardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := <-mailer.SendEmail(ctx, "a@x.com", "subject", "body")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, sender.msg)
}

func TestNew_WithoutCredentialsIsNoop(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	mailer := New(Params{Lifecycle: lc, Config: &config.Config{}, Logger: newDiscardLogger()})

	_, isNoop := mailer.(*noopMailer)
	assert.True(t, isNoop)
	assert.NoError(t, <-mailer.SendEmail(context.Background(), "a@x.com", "s", "b"))
}

func TestNew_WithCredentialsIsSMTP(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	cfg := &config.Config{Mail: &config.MailConfig{
		Host:        "smtp.example.com",
		Port:        587,
		Username:    "bot@example.com",
		Password:    "app-pass",
		FromName:    "Expense Tracker",
		FromAddress: "bot@example.com",
	}}

	mailer := New(Params{Lifecycle: lc, Config: cfg, Logger: newDiscardLogger()})

	smtpM, ok := mailer.(*smtpMailer)
	require.True(t, ok)
	assert.Equal(t, "Expense Tracker", smtpM.fromName)

	lc.RequireStart()
	lc.RequireStop()
}
