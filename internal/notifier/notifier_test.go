package notifier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"dlremindme/internal/clock"
	"dlremindme/internal/config"
	"dlremindme/internal/task"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReminderSubjectByTier(t *testing.T) {
	subjects := map[task.Tier]string{
		task.TierOneHour:    "🚨 URGENT! Task 'Essay' is due in 1 hour!",
		task.TierTwoHours:   "⚠️ WARNING! Task 'Essay' is due in 2 hours!",
		task.TierThreeHours: "🔔 REMINDER! Task 'Essay' is due in 3 hours!",
		task.Tier(5):        "⚠️ Task 'Essay' is due in 5 hours!",
	}
	seen := map[string]bool{}
	for tier, want := range subjects {
		got := ReminderSubject("Essay", tier)
		assert.Equal(t, want, got)
		assert.False(t, seen[got], "subjects must differ per tier")
		seen[got] = true
	}
}

func TestSendDeadlineReminder(t *testing.T) {
	now := time.Date(2025, 5, 21, 8, 0, 0, 0, clock.DefaultZone)
	fake := &FakeSender{}
	n := New(fake, clock.NewManual(now), discardLogger())

	deadline := now.Add(2*time.Hour + 30*time.Minute)
	ok := n.SendDeadlineReminder(context.Background(), "alice@example.com", "Essay", deadline, task.TierThreeHours)
	require.True(t, ok)

	sent := fake.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "alice@example.com", sent[0].To)
	assert.Equal(t, ReminderSubject("Essay", task.TierThreeHours), sent[0].Subject)
	assert.Equal(t, "Reminder: task 'Essay' is due at 21-05-2025 10:30\n\nTime remaining: 2h30m0s", sent[0].Body)
}

func TestSendDeadlineReminderFailure(t *testing.T) {
	fake := &FakeSender{Fail: true}
	n := New(fake, clock.NewManual(time.Now()), discardLogger())
	assert.False(t, n.SendDeadlineReminder(context.Background(), "a@example.com", "x", time.Now(), task.TierOneHour))
	assert.Len(t, fake.Sent(), 1)
}

func TestSendTest(t *testing.T) {
	fake := &FakeSender{}
	n := New(fake, clock.NewManual(time.Now()), discardLogger())
	require.True(t, n.SendTest(context.Background(), "a@example.com"))
	assert.Equal(t, testSubject, fake.Sent()[0].Subject)
	assert.Equal(t, testBody, fake.Sent()[0].Body)
}

func TestSendPassesMessageThrough(t *testing.T) {
	fake := &FakeSender{}
	n := New(fake, clock.NewManual(time.Now()), discardLogger())

	require.True(t, n.Send(context.Background(), "bob@example.com", "Custom", "hello"))
	assert.Equal(t, []Message{{To: "bob@example.com", Subject: "Custom", Body: "hello"}}, fake.Sent())

	fake.SetFail(true)
	assert.False(t, n.Send(context.Background(), "bob@example.com", "Custom", "hello"))
	assert.Len(t, fake.Sent(), 2)
}

func configuredSMTP() config.SMTPConfig {
	return config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     465,
		Username: "sender@example.com",
		Password: "secret",
		Timeout:  time.Second,
	}
}

func TestSMTPSenderWithoutCredentials(t *testing.T) {
	cfg := configuredSMTP()
	cfg.Password = ""
	s := NewSMTPSender(cfg, discardLogger())
	called := false
	s.deliver = func(context.Context, *mail.Msg) error {
		called = true
		return nil
	}
	assert.False(t, s.Send(context.Background(), "a@example.com", "s", "b"))
	assert.False(t, called, "nothing is dialled without credentials")
}

func TestSMTPSenderRejectsBadInput(t *testing.T) {
	s := NewSMTPSender(configuredSMTP(), discardLogger())
	s.deliver = func(context.Context, *mail.Msg) error {
		t.Fatal("deliver must not be called for malformed input")
		return nil
	}
	assert.False(t, s.Send(context.Background(), "   ", "s", "b"))
	assert.False(t, s.Send(context.Background(), "not an address", "s", "b"))
}

func TestSMTPSenderDelivery(t *testing.T) {
	s := NewSMTPSender(configuredSMTP(), discardLogger())

	var recipients []string
	s.deliver = func(_ context.Context, msg *mail.Msg) error {
		var err error
		recipients, err = msg.GetRecipients()
		return err
	}
	require.True(t, s.Send(context.Background(), " alice@example.com ", "subject", "body"))
	assert.Equal(t, []string{"alice@example.com"}, recipients)

	s.deliver = func(context.Context, *mail.Msg) error { return errors.New("connection refused") }
	assert.False(t, s.Send(context.Background(), "alice@example.com", "subject", "body"))

	s.deliver = func(context.Context, *mail.Msg) error { panic("transport bug") }
	assert.False(t, s.Send(context.Background(), "alice@example.com", "subject", "body"))
}
