package storage

import "errors"

var (
	// ErrRead marks stored data that could not be read or decoded.
	ErrRead = errors.New("storage read failed")
	// ErrWrite marks a failure to persist data.
	ErrWrite = errors.New("storage write failed")
	// ErrEmptyName is returned when a task name is blank after trimming.
	ErrEmptyName = errors.New("task name must not be empty")
	// ErrEmptyOwner is returned when no owner identifier is given.
	ErrEmptyOwner = errors.New("owner must not be empty")
)
