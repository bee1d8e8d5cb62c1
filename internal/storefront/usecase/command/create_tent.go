package command

import (
	"context"
	"strings"

	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/internal/storefront/state"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase"
	"github.com/feirinha-uesb/storefront/pkg/logger"
)

// CreateTentCommand represents the command to open a stall
type CreateTentCommand struct {
	Session *state.Session
	Name    string
	License *string
}

// CreateTentHandler handles create tent command
type CreateTentHandler struct {
	stalls usecase.Stalls
}

// NewCreateTentHandler creates a new create tent handler
func NewCreateTentHandler(stalls usecase.Stalls) *CreateTentHandler {
	return &CreateTentHandler{stalls: stalls}
}

// Handle creates the stall for the logged user and adds it to their
// profile snapshot
func (h *CreateTentHandler) Handle(ctx context.Context, cmd CreateTentCommand) (*domain.TentSummary, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, usecase.Invalid("name", "is required")
	}

	data, err := loadUserData(ctx, cmd.Session)
	if err != nil {
		return nil, err
	}

	created, err := h.stalls.CreateTent(ctx, domain.BackendTent{
		CPFHolder:   data.User.CPF,
		Name:        name,
		UserLicense: cmd.License,
	})
	if err != nil {
		return nil, err
	}
	if created.OwnerCPF == "" {
		created.OwnerCPF = data.User.CPF
	}

	data.Tents = append(data.Tents, *created)
	if err := cmd.Session.Auth.SaveUserData(ctx, *data); err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Int("tent_code", created.Code).
		Str("owner_cpf", created.OwnerCPF).
		Msg("Tent created")
	return created, nil
}
