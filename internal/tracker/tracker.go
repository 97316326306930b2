// Package tracker remembers which deadline reminders have been delivered so
// that each (task, tier) pair is sent at most once.
package tracker

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dlremindme/internal/task"
)

// Journal persists sent marks across restarts. storage.Storage satisfies it.
type Journal interface {
	ListSent() ([]*task.SentRecord, error)
	CreateSent(rec *task.SentRecord) error
}

type key struct {
	taskID string
	tier   task.Tier
}

// Tracker is an in-memory set of sent (task, tier) pairs, optionally backed
// by a Journal. Entries are never evicted.
type Tracker struct {
	mu      sync.Mutex
	sent    map[key]struct{}
	journal Journal
	logger  *slog.Logger
}

// New creates a Tracker seeded from journal. A nil journal gives a tracker
// whose memory lasts only as long as the process.
func New(journal Journal, logger *slog.Logger) (*Tracker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{
		sent:    make(map[key]struct{}),
		journal: journal,
		logger:  logger.With("component", "tracker"),
	}
	if journal == nil {
		return t, nil
	}
	recs, err := journal.ListSent()
	if err != nil {
		return nil, fmt.Errorf("failed to load sent notifications: %w", err)
	}
	for _, rec := range recs {
		if !rec.Tier.Valid() {
			t.logger.Warn("ignoring sent notification with unknown tier", "task_id", rec.TaskID, "tier", int(rec.Tier))
			continue
		}
		t.sent[key{rec.TaskID, rec.Tier}] = struct{}{}
	}
	t.logger.Debug("seeded sent notifications", "count", len(recs))
	return t, nil
}

func (t *Tracker) Contains(taskID string, tier task.Tier) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sent[key{taskID, tier}]
	return ok
}

// MarkSent records a confirmed delivery. The in-memory mark always sticks;
// a journal failure is logged and returned so the caller can report it.
func (t *Tracker) MarkSent(taskID string, tier task.Tier, at time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := key{taskID, tier}
	if _, ok := t.sent[k]; ok {
		return nil
	}
	t.sent[k] = struct{}{}
	if t.journal == nil {
		return nil
	}
	if err := t.journal.CreateSent(&task.SentRecord{TaskID: taskID, Tier: tier, SentAt: at}); err != nil {
		t.logger.Error("failed to persist sent notification",
			"task_id", taskID,
			"tier", int(tier),
			"error", err)
		return fmt.Errorf("persist sent notification: %w", err)
	}
	return nil
}

// Len returns the number of sent marks.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent)
}
