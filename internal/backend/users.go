package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/feirinha-uesb/storefront/internal/domain"
)

// ErrInvalidCredentials is returned when the backend rejects a login
var ErrInvalidCredentials = errors.New("invalid email or password")

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// FetchBackendUsers lists the raw users, used to join comment authors
func (c *Client) FetchBackendUsers(ctx context.Context) ([]domain.BackendUser, error) {
	var users []domain.BackendUser
	if err := c.get(ctx, "/usuarios", &users); err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, nil
}

// FetchUserProfile gets a user by CPF. It returns nil, nil when the user does not exist.
func (c *Client) FetchUserProfile(ctx context.Context, cpf string) (*domain.UserProfile, error) {
	var user domain.BackendUser
	if err := c.get(ctx, "/usuarios/"+url.PathEscape(cpf), &user); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch user profile: %w", err)
	}
	profile := ConvertUserProfile(user)
	return &profile, nil
}

// Login verifies the credentials against the backend
func (c *Client) Login(ctx context.Context, email, senha string) (*domain.UserProfile, error) {
	var user domain.BackendUser
	err := c.send(ctx, http.MethodPost, "/usuarios/login", loginRequest{Email: email, Senha: senha}, &user)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to login: %w", err)
	}
	profile := ConvertUserProfile(user)
	return &profile, nil
}

// RegisterUser creates a user account
func (c *Client) RegisterUser(ctx context.Context, user domain.BackendUser) (*domain.UserProfile, error) {
	var created domain.BackendUser
	if err := c.send(ctx, http.MethodPost, "/usuarios", user, &created); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	if created.CPF == "" {
		created = user
	}
	profile := ConvertUserProfile(created)
	return &profile, nil
}
