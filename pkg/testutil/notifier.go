package testutil

import (
	"context"
	"sync"

	"github.com/koinonia-lab/backend/internal/domain/notification"
)

// MockNotifier records every message it receives.
type MockNotifier struct {
	mutex    sync.Mutex
	messages []notification.Message
}

func (m *MockNotifier) Notify(ctx context.Context, msg notification.Message) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.messages = append(m.messages, msg)
}

func (m *MockNotifier) Messages() []notification.Message {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return append([]notification.Message{}, m.messages...)
}
