package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrBadDeadline is returned when a stored deadline cannot be interpreted.
var ErrBadDeadline = errors.New("invalid deadline")

// Task is a named deadline belonging to an owner. Tasks are immutable once
// created; the only lifecycle change is deletion.
type Task struct {
	ID       string
	Name     string
	Deadline time.Time

	// raw holds the stored deadline text when it could not be parsed, so
	// saving the task writes it back untouched.
	raw string
}

// Record is the persisted shape of a task. Deadline is kept as text so that
// legacy values without an offset survive until they are normalized.
type Record struct {
	Name     string `json:"name" bson:"name"`
	Deadline string `json:"deadline" bson:"deadline"`
	ID       string `json:"id" bson:"id"`
}

// NewID returns a fresh opaque task id: 32 lowercase hex characters.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func NewTask(id, name string, deadline time.Time) *Task {
	return &Task{
		ID:       id,
		Name:     strings.TrimSpace(name),
		Deadline: deadline,
	}
}

// FromRecord converts a persisted record into a Task. Deadlines lacking an
// offset get zone attached without shifting the wall clock. When the deadline
// cannot be parsed the task is still returned, carrying the raw text, along
// with an error wrapping ErrBadDeadline.
func FromRecord(rec Record, zone *time.Location) (*Task, error) {
	t := &Task{ID: rec.ID, Name: rec.Name}
	deadline, err := ParseDeadline(rec.Deadline, zone)
	if err != nil {
		t.raw = rec.Deadline
		return t, fmt.Errorf("task %s: %w", rec.ID, err)
	}
	t.Deadline = deadline
	return t, nil
}

// Record returns the persisted shape of t.
func (t *Task) Record() Record {
	rec := Record{Name: t.Name, ID: t.ID}
	if t.HasDeadline() {
		rec.Deadline = t.Deadline.Format(time.RFC3339Nano)
	} else {
		rec.Deadline = t.raw
	}
	return rec
}

// HasDeadline reports whether the task carries a usable deadline.
func (t *Task) HasDeadline() bool {
	return !t.Deadline.IsZero()
}

// Overdue reports whether the deadline is at or before now.
func (t *Task) Overdue(now time.Time) bool {
	return !t.Deadline.After(now)
}
