// Package storage provides the durable, session-scoped key/value storage that
// backs the storefront stores, mirroring a browser's localStorage: string
// values under fixed keys, one namespace per storefront session.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrEmptySession is returned when a namespace is requested without a session id
var ErrEmptySession = errors.New("session id is required")

// Storage is the localStorage-like view of one session
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Backend hands out Storage namespaces per session
type Backend interface {
	Session(sessionID string) (Storage, error)
}

// GetJSON decodes the value stored under key into v. It reports false when the key is absent.
func GetJSON(ctx context.Context, s Storage, key string, v interface{}) (bool, error) {
	raw, ok, err := s.GetItem(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key
func SetJSON(ctx context.Context, s Storage, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	return s.SetItem(ctx, key, string(raw))
}

// Locker serializes read-modify-write cycles of a single session
type Locker struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewLocker creates an empty locker
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*sessionLock)}
}

// Lock blocks until the session is free and returns the unlock function
func (l *Locker) Lock(sessionID string) func() {
	l.mu.Lock()
	sl, ok := l.locks[sessionID]
	if !ok {
		sl = &sessionLock{}
		l.locks[sessionID] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()

	return func() {
		sl.mu.Unlock()

		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, sessionID)
		}
		l.mu.Unlock()
	}
}
