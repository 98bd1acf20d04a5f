package mail

import (
	"context"
	"log/slog"
	"sync"
)

// Message is one captured dispatch.
type Message struct {
	To      string
	Subject string
	Body    string
}

// MockDispatcher records messages instead of sending them. Used by tests and
// by local development (EMAIL_PROVIDER=mock), where the code is read from the
// server log instead of a mailbox.
type MockDispatcher struct {
	mu       sync.Mutex
	messages []Message
}

func NewMockDispatcher() *MockDispatcher { return &MockDispatcher{} }

func (d *MockDispatcher) Send(_ context.Context, to, subject, body string) error {
	d.mu.Lock()
	d.messages = append(d.messages, Message{To: to, Subject: subject, Body: body})
	d.mu.Unlock()
	slog.Info("mock mail dispatched", "to", to, "subject", subject)
	return nil
}

// Last returns the most recently dispatched message, if any.
func (d *MockDispatcher) Last() (Message, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.messages) == 0 {
		return Message{}, false
	}
	return d.messages[len(d.messages)-1], true
}

// Count returns how many messages have been dispatched.
func (d *MockDispatcher) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.messages)
}
