package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/pkg/storage"
)

// Storage keys of the auth state
const (
	KeyLogged   = "logged"
	KeyUserID   = "userId"
	KeyUserData = "userData"
)

// UserData is the profile snapshot kept after login
type UserData struct {
	User  domain.UserProfile   `json:"user"`
	Tents []domain.TentSummary `json:"tents"`
}

// Tent returns a pointer into Tents for code
func (d *UserData) Tent(code int) *domain.TentSummary {
	for i := range d.Tents {
		if d.Tents[i].Code == code {
			return &d.Tents[i]
		}
	}
	return nil
}

// Store is the auth state of one session. The in-memory view mirrors the
// persisted keys; CheckLoginStatus reloads it.
type Store struct {
	storage storage.Storage

	mu     sync.RWMutex
	logged bool
	userID string
}

// NewStore creates an auth store. Call CheckLoginStatus to load the persisted state.
func NewStore(s storage.Storage) *Store {
	return &Store{storage: s}
}

// Login marks the session as logged in as userID
func (s *Store) Login(ctx context.Context, userID string) error {
	if err := s.storage.SetItem(ctx, KeyLogged, "true"); err != nil {
		return fmt.Errorf("failed to persist login: %w", err)
	}
	if err := s.storage.SetItem(ctx, KeyUserID, userID); err != nil {
		return fmt.Errorf("failed to persist user id: %w", err)
	}

	s.mu.Lock()
	s.logged = true
	s.userID = userID
	s.mu.Unlock()
	return nil
}

// Logout clears the auth keys and the profile snapshot
func (s *Store) Logout(ctx context.Context) error {
	for _, key := range []string{KeyLogged, KeyUserID, KeyUserData} {
		if err := s.storage.RemoveItem(ctx, key); err != nil {
			return fmt.Errorf("failed to remove %s: %w", key, err)
		}
	}

	s.mu.Lock()
	s.logged = false
	s.userID = ""
	s.mu.Unlock()
	return nil
}

// CheckLoginStatus reloads the in-memory state from storage. A stored user
// id without the logged flag is ignored.
func (s *Store) CheckLoginStatus(ctx context.Context) error {
	logged, _, err := s.storage.GetItem(ctx, KeyLogged)
	if err != nil {
		return fmt.Errorf("failed to read login state: %w", err)
	}
	userID, _, err := s.storage.GetItem(ctx, KeyUserID)
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}

	s.mu.Lock()
	s.logged = logged == "true"
	s.userID = ""
	if s.logged {
		s.userID = userID
	}
	s.mu.Unlock()
	return nil
}

// IsLogged reports the in-memory login flag
func (s *Store) IsLogged() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logged
}

// UserID returns the logged user id, empty when absent
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// storedUserData is the persisted form of UserData. It keeps the raw stall
// licenses that TentSummary leaves out of its JSON.
type storedUserData struct {
	User  domain.UserProfile `json:"user"`
	Tents []storedTent       `json:"tents"`
}

type storedTent struct {
	domain.TentSummary
	RawLicense *string `json:"rawLicense,omitempty"`
}

// SaveUserData stores the profile snapshot
func (s *Store) SaveUserData(ctx context.Context, data UserData) error {
	stored := storedUserData{User: data.User, Tents: make([]storedTent, 0, len(data.Tents))}
	for _, t := range data.Tents {
		stored.Tents = append(stored.Tents, storedTent{TentSummary: t, RawLicense: t.License})
	}
	if err := storage.SetJSON(ctx, s.storage, KeyUserData, stored); err != nil {
		return fmt.Errorf("failed to save user data: %w", err)
	}
	return nil
}

// UserData returns the profile snapshot, nil when none was saved
func (s *Store) UserData(ctx context.Context) (*UserData, error) {
	var stored storedUserData
	ok, err := storage.GetJSON(ctx, s.storage, KeyUserData, &stored)
	if err != nil {
		return nil, fmt.Errorf("failed to load user data: %w", err)
	}
	if !ok {
		return nil, nil
	}

	data := &UserData{User: stored.User, Tents: make([]domain.TentSummary, 0, len(stored.Tents))}
	for _, t := range stored.Tents {
		tent := t.TentSummary
		tent.License = t.RawLicense
		data.Tents = append(data.Tents, tent)
	}
	return data, nil
}

// ResolveUserID returns the buyer identity: the CPF of the profile
// snapshot, falling back to the stored user id. Empty means not logged in.
func (s *Store) ResolveUserID(ctx context.Context) (string, error) {
	data, err := s.UserData(ctx)
	if err != nil {
		return "", err
	}
	if data != nil && data.User.CPF != "" {
		return data.User.CPF, nil
	}
	return s.UserID(), nil
}
