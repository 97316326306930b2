package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"dlremindme/internal/owner"
	"dlremindme/internal/task"
)

type FileStorage struct {
	fs       afero.Fs
	taskFile string
	sentFile string
	mu       sync.Mutex
}

// NewFileStorage stores tasks and the sent journal as JSON files on the
// local filesystem. An empty sentFile disables the journal file; ListSent
// then reports nothing and CreateSent is a no-op.
func NewFileStorage(taskFile, sentFile string) *FileStorage {
	return NewFileStorageFs(afero.NewOsFs(), taskFile, sentFile)
}

func NewFileStorageFs(fs afero.Fs, taskFile, sentFile string) *FileStorage {
	return &FileStorage{
		fs:       fs,
		taskFile: taskFile,
		sentFile: sentFile,
	}
}

// Helper functions for file IO
func (s *FileStorage) readJSON(path string, v any) error {
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// writeJSON replaces path atomically: the payload goes to a temp file in the
// same directory which is synced and then renamed over the target.
func (s *FileStorage) writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return err
	}

	tmp, err := afero.TempFile(s.fs, filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return err
	}
	if err := s.fs.Rename(tmpName, path); err != nil {
		s.fs.Remove(tmpName)
		return err
	}
	return nil
}

// Task registry operations
func (s *FileStorage) LoadTasks() (owner.Records, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := make(owner.Records)
	if err := s.readJSON(s.taskFile, &recs); err != nil {
		return nil, err
	}
	if recs == nil {
		// a literal null in the file
		recs = make(owner.Records)
	}
	return recs, nil
}

func (s *FileStorage) SaveTasks(recs owner.Records) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if recs == nil {
		recs = make(owner.Records)
	}
	return s.writeJSON(s.taskFile, recs)
}

// Sent-reminder journal operations
func (s *FileStorage) loadSent() ([]*task.SentRecord, error) {
	var list []*task.SentRecord
	if s.sentFile == "" {
		return list, nil
	}
	if err := s.readJSON(s.sentFile, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *FileStorage) ListSent() ([]*task.SentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadSent()
}

func (s *FileStorage) CreateSent(rec *task.SentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sentFile == "" {
		return nil
	}
	list, err := s.loadSent()
	if err != nil {
		return err
	}
	for _, existing := range list {
		if existing.TaskID == rec.TaskID && existing.Tier == rec.Tier {
			return nil
		}
	}
	list = append(list, rec)
	return s.writeJSON(s.sentFile, list)
}
