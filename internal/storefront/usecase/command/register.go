package command

import (
	"context"
	"strings"

	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase"
)

// RegisterCommand represents the command to register a user
type RegisterCommand struct {
	CPF        string
	Nome       string
	Telefone   string
	Email      string
	Senha      string
	FotoPerfil *string
}

// RegisterHandler handles register command
type RegisterHandler struct {
	accounts usecase.Accounts
}

// NewRegisterHandler creates a new register handler
func NewRegisterHandler(accounts usecase.Accounts) *RegisterHandler {
	return &RegisterHandler{accounts: accounts}
}

// Handle executes the register command. The new user is not logged in.
func (h *RegisterHandler) Handle(ctx context.Context, cmd RegisterCommand) (*domain.UserProfile, error) {
	cmd.CPF = strings.TrimSpace(cmd.CPF)
	cmd.Nome = strings.TrimSpace(cmd.Nome)
	cmd.Email = strings.TrimSpace(cmd.Email)

	if cmd.CPF == "" {
		return nil, usecase.Invalid("cpf", "is required")
	}
	if cmd.Nome == "" {
		return nil, usecase.Invalid("nome", "is required")
	}
	if cmd.Email == "" || !strings.Contains(cmd.Email, "@") {
		return nil, usecase.Invalid("email", "must be a valid address")
	}
	if len(cmd.Senha) < 4 {
		return nil, usecase.Invalid("senha", "must be at least 4 characters")
	}

	return h.accounts.RegisterUser(ctx, domain.BackendUser{
		CPF:        cmd.CPF,
		Nome:       cmd.Nome,
		Telefone:   strings.TrimSpace(cmd.Telefone),
		Email:      cmd.Email,
		Senha:      cmd.Senha,
		FotoPerfil: cmd.FotoPerfil,
	})
}
