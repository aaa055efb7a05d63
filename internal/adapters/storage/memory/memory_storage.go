// Package memory disponibiliza um storage em processo para desenvolvimento local.
// O estado não é compartilhado entre réplicas.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/aryan55254/Heritage/internal/core/ports"
)

type entry struct {
	value     string
	expiresAt time.Time
}

type Storage struct {
	mu   sync.Mutex
	data map[string]entry
	now  func() time.Time
}

var _ ports.Storage = (*Storage)(nil)

func New() *Storage {
	return &Storage{data: make(map[string]entry), now: time.Now}
}

// lookup devolve a entrada viva, removendo-a se já expirou. Exige mu travado.
func (s *Storage) lookup(key string) (entry, bool) {
	e, ok := s.data[key]
	if !ok {
		return entry{}, false
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.data, key)
		return entry{}, false
	}
	return e, true
}

// Ping sempre sucede; existe para o health check tratar os storages igualmente.
func (s *Storage) Ping(context.Context) error {
	return nil
}

func (s *Storage) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookup(key); ok {
		return false, nil
	}
	s.data[key] = entry{value: value, expiresAt: s.expiry(ttl)}
	return true, nil
}

func (s *Storage) Increment(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(key)
	if !ok {
		e = entry{value: "0", expiresAt: s.expiry(ttl)}
	}
	n, err := strconv.ParseInt(e.value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("value at %s is not an integer", key)
	}
	n++
	e.value = strconv.FormatInt(n, 10)
	s.data[key] = e
	return n, nil
}

func (s *Storage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(key)
	return e.value, ok, nil
}

func (s *Storage) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = entry{value: value, expiresAt: s.expiry(ttl)}
	return nil
}

// Sweep remove as chaves expiradas e devolve quantas foram apagadas.
func (s *Storage) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.data {
		if _, ok := s.lookup(key); !ok {
			removed++
		}
	}
	return removed
}

// RunJanitor chama Sweep periodicamente até ctx ser cancelado.
func (s *Storage) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Storage) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}
