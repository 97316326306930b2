// Package owner groups tasks under the email-like identifier of the person
// who receives their reminders.
package owner

import (
	"time"

	"dlremindme/internal/task"
)

// Records is the persisted form of a Registry.
type Records map[string][]task.Record

// Registry maps an owner identifier to that owner's tasks in insertion order.
type Registry map[string][]*task.Task

// FromRecords builds a Registry from persisted records. Per-task deadline
// errors do not stop the conversion; the affected tasks keep their raw value
// and the errors are returned for logging.
func FromRecords(recs Records, zone *time.Location) (Registry, []error) {
	reg := make(Registry, len(recs))
	var errs []error
	for id, list := range recs {
		tasks := make([]*task.Task, 0, len(list))
		for _, rec := range list {
			t, err := task.FromRecord(rec, zone)
			if err != nil {
				errs = append(errs, err)
			}
			tasks = append(tasks, t)
		}
		reg[id] = tasks
	}
	return reg, errs
}

// Records converts the registry to its persisted form.
func (r Registry) Records() Records {
	recs := make(Records, len(r))
	for id, tasks := range r {
		list := make([]task.Record, 0, len(tasks))
		for _, t := range tasks {
			list = append(list, t.Record())
		}
		recs[id] = list
	}
	return recs
}

func (r Registry) Tasks(id string) []*task.Task {
	return r[id]
}

func (r Registry) Append(id string, t *task.Task) {
	r[id] = append(r[id], t)
}

// Remove deletes the task with taskID from the owner's list and reports
// whether anything was removed.
func (r Registry) Remove(id, taskID string) bool {
	tasks, ok := r[id]
	if !ok {
		return false
	}
	for i, t := range tasks {
		if t.ID == taskID {
			r[id] = append(tasks[:i:i], tasks[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the records so callers can't alias
// backend-held slices.
func (r Records) Clone() Records {
	out := make(Records, len(r))
	for id, list := range r {
		out[id] = append([]task.Record(nil), list...)
	}
	return out
}
