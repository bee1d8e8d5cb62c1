package query

import (
	"context"

	"github.com/feirinha-uesb/storefront/internal/catalog"
	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/internal/storefront/state"
)

// GetCartQuery represents the query to read the cart of a session
type GetCartQuery struct {
	Session *state.Session
}

// GetCartHandler handles get cart query
type GetCartHandler struct{}

// NewGetCartHandler creates a new get cart handler
func NewGetCartHandler() *GetCartHandler {
	return &GetCartHandler{}
}

// Handle returns the cart lines with their subtotals and the grand total
func (h *GetCartHandler) Handle(ctx context.Context, query GetCartQuery) (*catalog.CheckoutSummary, error) {
	items, err := query.Session.Cart.Items(ctx)
	if err != nil {
		return nil, err
	}
	summary := catalog.BuildCheckoutSummary(items)
	return &summary, nil
}

// SessionStatusQuery represents the query to read the login state of a session
type SessionStatusQuery struct {
	Session *state.Session
}

// SessionStatus is the login state of a session
type SessionStatus struct {
	SessionID string              `json:"sessionId"`
	Logged    bool                `json:"logged"`
	UserID    *string             `json:"userId"`
	User      *domain.UserProfile `json:"user,omitempty"`
	CartCount int                 `json:"cartCount"`
}

// SessionStatusHandler handles session status query
type SessionStatusHandler struct{}

// NewSessionStatusHandler creates a new session status handler
func NewSessionStatusHandler() *SessionStatusHandler {
	return &SessionStatusHandler{}
}

// Handle reports the state loaded by CheckLoginStatus when the session was opened
func (h *SessionStatusHandler) Handle(ctx context.Context, query SessionStatusQuery) (*SessionStatus, error) {
	status := &SessionStatus{
		SessionID: query.Session.ID,
		Logged:    query.Session.Auth.IsLogged(),
	}
	if userID := query.Session.Auth.UserID(); userID != "" {
		status.UserID = &userID
	}

	data, err := query.Session.Auth.UserData(ctx)
	if err != nil {
		return nil, err
	}
	if data != nil {
		status.User = &data.User
	}

	count, err := query.Session.Cart.Count(ctx)
	if err != nil {
		return nil, err
	}
	status.CartCount = count
	return status, nil
}
