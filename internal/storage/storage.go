package storage

import (
	"dlremindme/internal/owner"
	"dlremindme/internal/task"
)

// Storage defines the interface for data persistence
// of task registries and the sent-reminder journal.
type Storage interface {
	// Task registry operations. LoadTasks returns an empty set, not an
	// error, when nothing has been stored yet.
	LoadTasks() (owner.Records, error)
	SaveTasks(recs owner.Records) error

	// Sent-reminder journal operations. CreateSent is idempotent per
	// (task id, tier).
	ListSent() ([]*task.SentRecord, error)
	CreateSent(rec *task.SentRecord) error
}
