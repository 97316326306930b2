package task

import "time"

// SentRecord notes that the reminder for one tier of a task was delivered.
type SentRecord struct {
	TaskID string    `json:"task_id" bson:"task_id"`
	Tier   Tier      `json:"tier" bson:"tier"`
	SentAt time.Time `json:"sent_at" bson:"sent_at"`
}
