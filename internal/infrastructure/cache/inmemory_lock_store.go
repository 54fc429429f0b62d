package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/josa-ai/verve-noir-app/internal/domain/shared"
)

type lease struct {
	token     string
	expiresAt time.Time
}

// InMemoryLockStore implements LockStore with a process-local map.
// Leases are not shared between instances.
type InMemoryLockStore struct {
	mu        sync.Mutex
	leases    map[string]lease
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryLockStore creates the store and starts its expiry sweeper
func NewInMemoryLockStore() *InMemoryLockStore {
	return newInMemoryLockStore(time.Minute)
}

func newInMemoryLockStore(sweepEvery time.Duration) *InMemoryLockStore {
	store := &InMemoryLockStore{
		leases:   make(map[string]lease),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop(sweepEvery)

	return store
}

// Acquire grants the lease when key is free or its previous lease expired
func (s *InMemoryLockStore) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if l, held := s.leases[key]; held && now.Before(l.expiresAt) {
		return "", false, nil
	}

	token := uuid.NewString()
	s.leases[key] = lease{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

// Release drops the lease if token still owns it
func (s *InMemoryLockStore) Release(_ context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, held := s.leases[key]; held && l.token == token {
		delete(s.leases, key)
	}
	return nil
}

// Close stops the sweeper. Safe to call multiple times.
func (s *InMemoryLockStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryLockStore) cleanupLoop(every time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryLockStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, l := range s.leases {
		if !now.Before(l.expiresAt) {
			delete(s.leases, key)
		}
	}
}

// Size returns the number of tracked leases, expired ones included until swept
func (s *InMemoryLockStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.leases)
}

var _ shared.LockStore = (*InMemoryLockStore)(nil)
