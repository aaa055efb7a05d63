package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

var errStoreDown = errors.New("connection refused")

type mockEntry struct {
	value     string
	expiresAt time.Time
}

// mockStorage mimics the key-value store with a controllable clock.
type mockStorage struct {
	mu   sync.Mutex
	now  time.Time
	data map[string]mockEntry
	ops  int
	fail map[string]bool
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		now:  time.Unix(1_700_000_000, 0),
		data: make(map[string]mockEntry),
		fail: make(map[string]bool),
	}
}

func (m *mockStorage) advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

func (m *mockStorage) failOn(ops ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range ops {
		m.fail[op] = true
	}
}

func (m *mockStorage) opCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ops
}

func (m *mockStorage) lookup(key string) (mockEntry, bool) {
	entry, ok := m.data[key]
	if !ok {
		return mockEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !m.now.Before(entry.expiresAt) {
		delete(m.data, key)
		return mockEntry{}, false
	}
	return entry, true
}

func (m *mockStorage) begin(op string) error {
	m.ops++
	if m.fail[op] {
		return errStoreDown
	}
	return nil
}

func (m *mockStorage) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("setnx"); err != nil {
		return false, err
	}
	if _, ok := m.lookup(key); ok {
		return false, nil
	}
	m.data[key] = mockEntry{value: value, expiresAt: m.now.Add(ttl)}
	return true, nil
}

func (m *mockStorage) Increment(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("incr"); err != nil {
		return 0, err
	}
	entry, ok := m.lookup(key)
	if !ok {
		entry = mockEntry{value: "0", expiresAt: m.now.Add(ttl)}
	}
	n, err := strconv.ParseInt(entry.value, 10, 64)
	if err != nil {
		return 0, err
	}
	n++
	entry.value = strconv.FormatInt(n, 10)
	m.data[key] = entry
	return n, nil
}

func (m *mockStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("get"); err != nil {
		return "", false, err
	}
	entry, ok := m.lookup(key)
	return entry.value, ok, nil
}

func (m *mockStorage) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("set"); err != nil {
		return err
	}
	m.data[key] = mockEntry{value: value, expiresAt: m.now.Add(ttl)}
	return nil
}

func (m *mockStorage) ttl(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.lookup(key)
	if !ok {
		return 0
	}
	return entry.expiresAt.Sub(m.now)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
