package storage

import (
	"sync"

	"dlremindme/internal/owner"
	"dlremindme/internal/task"
)

type MemoryStorage struct {
	records owner.Records
	sent    []*task.SentRecord
	mu      sync.Mutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(owner.Records),
	}
}

// Task registry operations
func (m *MemoryStorage) LoadTasks() (owner.Records, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records.Clone(), nil
}

func (m *MemoryStorage) SaveTasks(recs owner.Records) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = recs.Clone()
	return nil
}

// Sent-reminder journal operations
func (m *MemoryStorage) ListSent() ([]*task.SentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]*task.SentRecord, 0, len(m.sent))
	for _, rec := range m.sent {
		cp := *rec
		list = append(list, &cp)
	}
	return list, nil
}

func (m *MemoryStorage) CreateSent(rec *task.SentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.sent {
		if existing.TaskID == rec.TaskID && existing.Tier == rec.Tier {
			return nil
		}
	}
	cp := *rec
	m.sent = append(m.sent, &cp)
	return nil
}
