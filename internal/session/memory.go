package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore хранит сессии в памяти процесса.
type MemoryStore struct {
	mu      sync.RWMutex
	data    map[string]map[string]string
	written map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore создаёт пустое хранилище в памяти.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:    make(map[string]map[string]string),
		written: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Get возвращает значение ключа сессии.
func (m *MemoryStore) Get(_ context.Context, sid, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[sid][key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set сохраняет значение ключа сессии и продлевает её срок жизни.
func (m *MemoryStore) Set(_ context.Context, sid, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	values, ok := m.data[sid]
	if !ok {
		values = make(map[string]string)
		m.data[sid] = values
	}
	values[key] = value
	m.written[sid] = m.now()
	return nil
}

// Delete удаляет ключи сессии; отсутствующие ключи игнорируются.
func (m *MemoryStore) Delete(_ context.Context, sid string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	values, ok := m.data[sid]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(values, k)
	}
	if len(values) == 0 {
		delete(m.data, sid)
		delete(m.written, sid)
	}
	return nil
}

// DeleteExpired удаляет сессии целиком, если в них ничего не записывалось дольше ttl.
// Возвращает число удалённых сессий.
func (m *MemoryStore) DeleteExpired(_ context.Context, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-ttl)
	var n int64
	for sid, at := range m.written {
		if at.Before(cutoff) {
			delete(m.data, sid)
			delete(m.written, sid)
			n++
		}
	}
	return n, nil
}
