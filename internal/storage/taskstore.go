package storage

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"dlremindme/internal/owner"
	"dlremindme/internal/task"
)

// TaskStore exposes per-owner task operations on top of a Storage backend.
// Every call goes back to the backend; nothing is cached between calls.
// Mutations are serialized within the process, but two processes saving the
// same backend can still lose each other's updates.
type TaskStore struct {
	backend Storage
	zone    *time.Location
	logger  *slog.Logger
	newID   func() string
	mu      sync.Mutex
}

// NewTaskStore wraps backend. Deadlines stored without an offset are read
// in zone.
func NewTaskStore(backend Storage, zone *time.Location, logger *slog.Logger) *TaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		backend: backend,
		zone:    zone,
		logger:  logger.With("component", "task_store"),
		newID:   task.NewID,
	}
}

// load reads and normalizes the registry. Normalization failures are logged
// per task and never fail the load.
func (s *TaskStore) load() (owner.Registry, error) {
	recs, err := s.backend.LoadTasks()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	reg, errs := owner.FromRecords(recs, s.zone)
	for _, err := range errs {
		s.logger.Warn("could not normalize task deadline, keeping stored value", "error", err)
	}
	return reg, nil
}

// Load returns the full registry. A missing or unreadable store yields an
// empty registry; the failure is logged rather than returned.
func (s *TaskStore) Load() owner.Registry {
	reg, err := s.load()
	if err != nil {
		s.logger.Error("failed to load tasks, treating store as empty", "error", err)
		return owner.Registry{}
	}
	return reg
}

// Save writes the full registry. Failures wrap ErrWrite.
func (s *TaskStore) Save(reg owner.Registry) error {
	if reg == nil {
		reg = owner.Registry{}
	}
	if err := s.backend.SaveTasks(reg.Records()); err != nil {
		s.logger.Error("failed to save tasks", "error", err)
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// Add creates a task for ownerID and persists it. Blank owners and names are
// rejected before the store is touched. When persisting fails the created
// task is still returned together with an error wrapping ErrWrite.
func (s *TaskStore) Add(ownerID, name string, deadline time.Time) (*task.Task, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrEmptyOwner
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// a store we cannot read must not be overwritten with a fresh registry
	reg, err := s.load()
	if err != nil {
		s.logger.Error("refusing to add task to unreadable store", "owner", ownerID, "error", err)
		return nil, err
	}

	t := task.NewTask(s.newID(), name, deadline)
	reg.Append(ownerID, t)
	if err := s.Save(reg); err != nil {
		return t, err
	}
	s.logger.Info("task added", "owner", ownerID, "task_id", t.ID, "deadline", t.Deadline.Format(time.RFC3339))
	return t, nil
}

// Delete removes taskID from ownerID's tasks. It persists only when a task
// was removed, so (false, nil) means not found and the store is unchanged,
// while (true, err) means the task was found but the removal was not saved.
func (s *TaskStore) Delete(ownerID, taskID string) (bool, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return false, ErrEmptyOwner
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := s.load()
	if err != nil {
		s.logger.Error("refusing to delete from unreadable store", "owner", ownerID, "error", err)
		return false, err
	}
	if !reg.Remove(ownerID, taskID) {
		return false, nil
	}
	if err := s.Save(reg); err != nil {
		return true, err
	}
	s.logger.Info("task deleted", "owner", ownerID, "task_id", taskID)
	return true, nil
}

// TasksFor returns ownerID's tasks in insertion order; unknown owners have
// none.
func (s *TaskStore) TasksFor(ownerID string) []*task.Task {
	tasks := s.Load().Tasks(ownerID)
	if tasks == nil {
		return []*task.Task{}
	}
	return tasks
}
