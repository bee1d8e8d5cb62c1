// Package state opens the stores of a storefront session.
package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/feirinha-uesb/storefront/internal/cart"
	"github.com/feirinha-uesb/storefront/internal/history"
	"github.com/feirinha-uesb/storefront/internal/session"
	"github.com/feirinha-uesb/storefront/pkg/storage"
)

// Session is the state of one browser session, held exclusively until Close
type Session struct {
	ID      string
	Cart    *cart.Store
	Auth    *session.Store
	History history.Provider

	storage storage.Storage
	unlock  func()
}

// Close releases the session for other requests
func (s *Session) Close() {
	if s.unlock != nil {
		s.unlock()
		s.unlock = nil
	}
}

// Sessions hands out locked session state
type Sessions struct {
	backend storage.Backend
	locker  *storage.Locker
	history history.Factory
}

// NewSessions creates a session opener
func NewSessions(backend storage.Backend, locker *storage.Locker, historyFactory history.Factory) *Sessions {
	return &Sessions{backend: backend, locker: locker, history: historyFactory}
}

// Open locks sessionID and loads its auth state. Callers must Close the session.
func (s *Sessions) Open(ctx context.Context, sessionID string) (*Session, error) {
	st, err := s.backend.Session(sessionID)
	if err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(sessionID)
	sess := &Session{
		ID:      sessionID,
		Cart:    cart.NewStore(st),
		Auth:    session.NewStore(st),
		History: s.history(st),
		storage: st,
		unlock:  unlock,
	}
	if err := sess.Auth.CheckLoginStatus(ctx); err != nil {
		sess.Close()
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	return sess, nil
}

// carriedKeys survive a session rotation. Auth keys never do.
var carriedKeys = []string{cart.StorageKey, history.LocalStorageKey}

// Rotate opens the fresh session toID, moves the cart and local history of
// from into it and logs from out, leaving its namespace empty. Tokens of from
// keep working but only reach an anonymous session. The returned session is
// locked; from stays locked by its caller.
func (s *Sessions) Rotate(ctx context.Context, from *Session, toID string) (*Session, error) {
	if toID == "" || toID == from.ID {
		return nil, errors.New("rotation needs a new session id")
	}

	to, err := s.Open(ctx, toID)
	if err != nil {
		return nil, err
	}
	for _, key := range carriedKeys {
		value, ok, err := from.storage.GetItem(ctx, key)
		if err == nil && ok {
			err = to.storage.SetItem(ctx, key, value)
		}
		if err == nil {
			err = from.storage.RemoveItem(ctx, key)
		}
		if err != nil {
			to.Close()
			return nil, fmt.Errorf("failed to move %s to session %s: %w", key, toID, err)
		}
	}
	if err := from.Auth.Logout(ctx); err != nil {
		to.Close()
		return nil, err
	}
	return to, nil
}
