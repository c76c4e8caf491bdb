package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
	sets map[string][]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string), sets: make(map[string][]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
		delete(m.sets, key)
	}
	return nil
}

func (m *mockStore) SAdd(ctx context.Context, key string, members ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, member := range members {
		m.sets[key] = append(m.sets[key], fmt.Sprint(member))
	}
	return nil
}

func (m *mockStore) SMembers(ctx context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sets[key]...), nil
}

func (m *mockStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return fmt.Sprintf("sess:%s", accessID)
}

func (m *mockStore) SubjectSessionsKey(subjectID string) string {
	return fmt.Sprintf("subj:%s", subjectID)
}

func newTestManager(t *testing.T) (*Manager, *mockStore) {
	t.Helper()
	store := newMockStore()
	m, err := newManager(store, time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m, store
}

func TestManagerRegisterAndRevoke(t *testing.T) {
	manager, store := newTestManager(t)
	ctx := context.Background()

	if err := manager.Register(ctx, "access-1", "user-1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if stored := store.data[store.AccessSessionKey("access-1")]; stored != "user-1" {
		t.Fatalf("expected subject stored, got %q", stored)
	}

	ok, err := manager.HasSession(ctx, "access-1")
	if err != nil || !ok {
		t.Fatalf("expected live session, ok=%v err=%v", ok, err)
	}

	if err := manager.Revoke(ctx, "access-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err = manager.HasSession(ctx, "access-1")
	if err != nil || ok {
		t.Fatalf("expected revoked session, ok=%v err=%v", ok, err)
	}
}

func TestManagerRevokeSubject(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if err := manager.Register(ctx, id, "user-9"); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}
	if err := manager.Register(ctx, "c", "user-10"); err != nil {
		t.Fatalf("register c: %v", err)
	}

	if err := manager.RevokeSubject(ctx, "user-9"); err != nil {
		t.Fatalf("revoke subject: %v", err)
	}
	for _, id := range []string{"a", "b"} {
		if ok, _ := manager.HasSession(ctx, id); ok {
			t.Fatalf("session %s should be revoked", id)
		}
	}
	if ok, _ := manager.HasSession(ctx, "c"); !ok {
		t.Fatal("other subject's session should survive")
	}
}

func TestManagerValidatesInput(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()
	if err := manager.Register(ctx, "", "user"); err == nil {
		t.Fatal("expected error for empty access id")
	}
	if _, err := manager.HasSession(ctx, " "); err == nil {
		t.Fatal("expected error for blank access id")
	}
	if _, err := NewManager(nil, time.Hour); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := newManager(newMockStore(), 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
