// Package notifier formats deadline reminders and hands them to a Sender.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dlremindme/internal/clock"
	"dlremindme/internal/task"
)

const (
	testSubject = "Test reminder notification"
	testBody    = "This is a test email from DLRemindMe."
)

type Notifier struct {
	sender Sender
	clock  clock.Clock
	logger *slog.Logger
}

func New(sender Sender, clk clock.Clock, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		sender: sender,
		clock:  clk,
		logger: logger.With("component", "notifier"),
	}
}

// Send delivers an arbitrary message and reports whether it went out.
func (n *Notifier) Send(ctx context.Context, to, subject, body string) bool {
	if !n.sender.Send(ctx, to, subject, body) {
		n.logger.Warn("notification not delivered", "to", to, "subject", subject)
		return false
	}
	return true
}

// SendDeadlineReminder sends the reminder for one tier of a task.
func (n *Notifier) SendDeadlineReminder(ctx context.Context, to, name string, deadline time.Time, tier task.Tier) bool {
	subject := ReminderSubject(name, tier)
	body := ReminderBody(name, deadline, n.clock.Now())
	ok := n.Send(ctx, to, subject, body)
	if ok {
		n.logger.Info("deadline reminder sent", "to", to, "task", name, "tier", int(tier))
	}
	return ok
}

// SendTest sends the fixed test message used to check sender settings.
func (n *Notifier) SendTest(ctx context.Context, to string) bool {
	return n.Send(ctx, to, testSubject, testBody)
}

// ReminderSubject words the subject by urgency: the closer the deadline, the
// louder the prefix.
func ReminderSubject(name string, tier task.Tier) string {
	switch tier {
	case task.TierOneHour:
		return fmt.Sprintf("🚨 URGENT! Task '%s' is due in 1 hour!", name)
	case task.TierTwoHours:
		return fmt.Sprintf("⚠️ WARNING! Task '%s' is due in 2 hours!", name)
	case task.TierThreeHours:
		return fmt.Sprintf("🔔 REMINDER! Task '%s' is due in 3 hours!", name)
	default:
		return fmt.Sprintf("⚠️ Task '%s' is due in %d hours!", name, int(tier))
	}
}

func ReminderBody(name string, deadline, now time.Time) string {
	remaining := deadline.Sub(now).Truncate(time.Second)
	return fmt.Sprintf("Reminder: task '%s' is due at %s\n\nTime remaining: %s",
		name, deadline.Format(task.DisplayDateTime), remaining)
}
