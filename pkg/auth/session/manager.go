// Package session keeps a Redis registry of live access tokens so logout and
// account deletion take effect before the JWT expires.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"

	redisclient "github.com/bsthardware/storefront-backend/pkg/redis"
)

// backend is the slice of the redis client the registry needs.
type backend interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SAdd(ctx context.Context, key string, members ...any) error
	SMembers(ctx context.Context, key string) ([]string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	AccessSessionKey(accessID string) string
	SubjectSessionsKey(subjectID string) string
}

var errBlankID = errors.New("id is required")

// Manager stores one key per jti plus a per-subject index of jtis.
type Manager struct {
	kv  backend
	ttl time.Duration
}

// AccessSessionChecker is what the auth middleware consults per request.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// NewManager needs ttl equal to the access token lifetime so entries vanish
// together with the tokens they describe.
func NewManager(client *redisclient.Client, ttl time.Duration) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return newManager(client, ttl)
}

func newManager(kv backend, ttl time.Duration) (*Manager, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{kv: kv, ttl: ttl}, nil
}

func blank(ids ...string) bool {
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return true
		}
	}
	return false
}

func (m *Manager) Register(ctx context.Context, accessID, subjectID string) error {
	if blank(accessID, subjectID) {
		return fmt.Errorf("register session: %w", errBlankID)
	}
	if err := m.kv.Set(ctx, m.kv.AccessSessionKey(accessID), subjectID, m.ttl); err != nil {
		return err
	}
	index := m.kv.SubjectSessionsKey(subjectID)
	if err := m.kv.SAdd(ctx, index, accessID); err != nil {
		return err
	}
	// the index lives as long as the newest token in it
	return m.kv.Expire(ctx, index, m.ttl)
}

func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if blank(accessID) {
		return fmt.Errorf("revoke session: %w", errBlankID)
	}
	return m.kv.Del(ctx, m.kv.AccessSessionKey(accessID))
}

// RevokeSubject drops every token issued to subjectID along with the index.
func (m *Manager) RevokeSubject(ctx context.Context, subjectID string) error {
	if blank(subjectID) {
		return fmt.Errorf("revoke subject: %w", errBlankID)
	}
	index := m.kv.SubjectSessionsKey(subjectID)
	jtis, err := m.kv.SMembers(ctx, index)
	if err != nil && !errors.Is(err, redislib.Nil) {
		return err
	}
	keys := []string{index}
	for _, jti := range jtis {
		keys = append(keys, m.kv.AccessSessionKey(jti))
	}
	return m.kv.Del(ctx, keys...)
}

func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if blank(accessID) {
		return false, fmt.Errorf("check session: %w", errBlankID)
	}
	_, err := m.kv.Get(ctx, m.kv.AccessSessionKey(accessID))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redislib.Nil):
		return false, nil
	}
	return false, err
}
