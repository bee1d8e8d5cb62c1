package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/internal/session"
	"github.com/feirinha-uesb/storefront/internal/storefront/state"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase"
	"github.com/feirinha-uesb/storefront/pkg/auth"
	"github.com/feirinha-uesb/storefront/pkg/logger"
)

// LoginCommand represents the command to log a session in
type LoginCommand struct {
	Session *state.Session
	Email   string
	Senha   string
}

// LoginResponse represents the response after successful login
type LoginResponse struct {
	Token string               `json:"token"`
	User  domain.UserProfile   `json:"user"`
	Tents []domain.TentSummary `json:"tents"`
}

// SessionRotator moves the carried state of a session to a new session id
type SessionRotator interface {
	Rotate(ctx context.Context, from *state.Session, toID string) (*state.Session, error)
}

// rotate starts a new session holding the cart of from and returns it with
// its token. The caller closes the returned session.
func rotate(ctx context.Context, sessions SessionRotator, tokens *auth.TokenManager, from *state.Session) (*state.Session, string, error) {
	id, token, err := tokens.NewSession()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	next, err := sessions.Rotate(ctx, from, id)
	if err != nil {
		return nil, "", err
	}
	return next, token, nil
}

// LoginHandler handles login command
type LoginHandler struct {
	accounts usecase.Accounts
	sessions SessionRotator
	tokens   *auth.TokenManager
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(accounts usecase.Accounts, sessions SessionRotator, tokens *auth.TokenManager) *LoginHandler {
	return &LoginHandler{accounts: accounts, sessions: sessions, tokens: tokens}
}

// Handle verifies the credentials against the backend, moves the cart to a
// new session and stores the user and the stalls they own there. The token
// of the previous session no longer reaches the login.
func (h *LoginHandler) Handle(ctx context.Context, cmd LoginCommand) (*LoginResponse, error) {
	email := strings.TrimSpace(cmd.Email)
	if email == "" {
		return nil, usecase.Invalid("email", "is required")
	}
	if cmd.Senha == "" {
		return nil, usecase.Invalid("senha", "is required")
	}

	user, err := h.accounts.Login(ctx, email, cmd.Senha)
	if err != nil {
		return nil, err
	}

	tents, err := h.accounts.FetchUserTents(ctx, user.CPF)
	if err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("cpf", user.CPF).
			Msg("Failed to load user tents on login")
		tents = []domain.TentSummary{}
	}

	next, token, err := rotate(ctx, h.sessions, h.tokens, cmd.Session)
	if err != nil {
		return nil, err
	}
	defer next.Close()

	if err := next.Auth.Login(ctx, user.CPF); err != nil {
		return nil, err
	}
	if err := next.Auth.SaveUserData(ctx, session.UserData{User: *user, Tents: tents}); err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Str("previous_session_id", cmd.Session.ID).
		Str("session_id", next.ID).
		Str("cpf", user.CPF).
		Int("tents", len(tents)).
		Msg("User logged in")

	return &LoginResponse{Token: token, User: *user, Tents: tents}, nil
}

// LogoutCommand ends the login of a session
type LogoutCommand struct {
	Session *state.Session
}

// LogoutResponse carries the token of the session that replaced the logged one
type LogoutResponse struct {
	Token string `json:"token"`
}

// LogoutHandler handles logout command
type LogoutHandler struct {
	sessions SessionRotator
	tokens   *auth.TokenManager
}

// NewLogoutHandler creates a new logout handler
func NewLogoutHandler(sessions SessionRotator, tokens *auth.TokenManager) *LogoutHandler {
	return &LogoutHandler{sessions: sessions, tokens: tokens}
}

// Handle moves the cart to a new anonymous session and clears the auth keys
// of the old one.
func (h *LogoutHandler) Handle(ctx context.Context, cmd LogoutCommand) (*LogoutResponse, error) {
	next, token, err := rotate(ctx, h.sessions, h.tokens, cmd.Session)
	if err != nil {
		return nil, err
	}
	defer next.Close()

	logger.Info(ctx).
		Str("previous_session_id", cmd.Session.ID).
		Str("session_id", next.ID).
		Msg("User logged out")
	return &LogoutResponse{Token: token}, nil
}
