package notifier

import (
	"context"
	"sync"
)

// Message is one delivery attempt captured by FakeSender.
type Message struct {
	To      string
	Subject string
	Body    string
}

// FakeSender records every message it is asked to send. Fail makes every
// attempt report failure while still being recorded.
type FakeSender struct {
	mu       sync.Mutex
	Fail     bool
	Messages []Message
}

func (f *FakeSender) Send(_ context.Context, to, subject, body string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Messages = append(f.Messages, Message{To: to, Subject: subject, Body: body})
	return !f.Fail
}

// SetFail switches failure mode under the lock.
func (f *FakeSender) SetFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Fail = fail
}

// Sent returns a copy of the recorded messages.
func (f *FakeSender) Sent() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.Messages...)
}
