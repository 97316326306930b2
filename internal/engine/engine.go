// Package engine decides which deadline reminders are due and sends them.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"dlremindme/internal/clock"
	"dlremindme/internal/task"
	"dlremindme/internal/tracker"
)

// TaskSource lists one owner's tasks. storage.TaskStore satisfies it.
type TaskSource interface {
	TasksFor(ownerID string) []*task.Task
}

// OwnerSource reports the owner whose tasks are scanned. session.Session
// satisfies it.
type OwnerSource interface {
	Owner() string
}

// Notifier delivers a single tier reminder and reports whether it went out.
type Notifier interface {
	SendDeadlineReminder(ctx context.Context, to, name string, deadline time.Time, tier task.Tier) bool
}

// Result summarizes one scan.
type Result struct {
	Tasks  int
	Sent   int
	Failed int
}

type Engine struct {
	tasks    TaskSource
	owner    OwnerSource
	clock    clock.Clock
	tracker  *tracker.Tracker
	notifier Notifier
	logger   *slog.Logger
}

func New(tasks TaskSource, owner OwnerSource, clk clock.Clock, tr *tracker.Tracker, n Notifier, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		tasks:    tasks,
		owner:    owner,
		clock:    clk,
		tracker:  tr,
		notifier: n,
		logger:   logger.With("component", "engine"),
	}
}

// Scan runs one pass over the active owner's tasks. Tiers are checked from
// the earliest (3h) to the latest (1h), so a cold tracker can send several
// tiers of one task in the same pass. Overdue tasks are skipped entirely,
// including any tiers that never went out.
func (e *Engine) Scan(ctx context.Context) Result {
	var res Result
	ownerID := e.owner.Owner()
	if ownerID == "" {
		return res
	}

	tasks := e.tasks.TasksFor(ownerID)
	now := e.clock.Now()
	for _, t := range tasks {
		if ctx.Err() != nil {
			break
		}
		res.Tasks++
		sent, failed, err := e.scanTask(ctx, ownerID, t, now)
		res.Sent += sent
		res.Failed += failed
		if err != nil {
			res.Failed++
			e.logger.Error("error processing task", "task_id", t.ID, "error", err)
		}
	}
	if res.Sent > 0 || res.Failed > 0 {
		e.logger.Info("scan finished", "owner", ownerID, "tasks", res.Tasks, "sent", res.Sent, "failed", res.Failed)
	}
	return res
}

func (e *Engine) scanTask(ctx context.Context, ownerID string, t *task.Task, now time.Time) (sent, failed int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()

	if !t.HasDeadline() {
		e.logger.Warn("skipping task with unparseable deadline", "task_id", t.ID, "task", t.Name)
		return 0, 0, nil
	}
	if t.Overdue(now) {
		return 0, 0, nil
	}
	for _, tier := range task.Tiers {
		if !tier.Due(t.Deadline, now) || e.tracker.Contains(t.ID, tier) {
			continue
		}
		if !e.notifier.SendDeadlineReminder(ctx, ownerID, t.Name, t.Deadline, tier) {
			failed++
			e.logger.Warn("reminder not sent, will retry", "task_id", t.ID, "tier", int(tier))
			continue
		}
		sent++
		// a journal failure is already logged; the in-memory mark still stops a resend
		_ = e.tracker.MarkSent(t.ID, tier, now)
	}
	return sent, failed, nil
}
