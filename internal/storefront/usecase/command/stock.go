package command

import (
	"context"

	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/internal/session"
	"github.com/feirinha-uesb/storefront/internal/storefront/state"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase"
	"github.com/feirinha-uesb/storefront/pkg/logger"
)

// StockResult is the stall after a local stock change. Synced is false when
// the backend write failed; the local change is kept either way.
type StockResult struct {
	Tent   domain.TentSummary `json:"tent"`
	Synced bool               `json:"synced"`
}

// loadUserData returns the profile snapshot of a logged session. A logged
// session without a snapshot gets one holding only its user id.
func loadUserData(ctx context.Context, sess *state.Session) (*session.UserData, error) {
	if !sess.Auth.IsLogged() {
		return nil, usecase.ErrNotLoggedIn
	}
	data, err := sess.Auth.UserData(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		userID := sess.Auth.UserID()
		if userID == "" {
			return nil, usecase.ErrNotLoggedIn
		}
		data = &session.UserData{User: domain.UserProfile{CPF: userID}}
	}
	if data.Tents == nil {
		data.Tents = []domain.TentSummary{}
	}
	return data, nil
}

// SaveStockCommand sets the quantity a stall holds of a product
type SaveStockCommand struct {
	Session     *state.Session
	TentCode    int
	ProductCode int
	Quantity    int
}

// SaveStockHandler handles save stock command
type SaveStockHandler struct {
	stalls usecase.Stalls
}

// NewSaveStockHandler creates a new save stock handler
func NewSaveStockHandler(stalls usecase.Stalls) *SaveStockHandler {
	return &SaveStockHandler{stalls: stalls}
}

// Handle updates the stall in the session first and then writes the stock
// to the backend
func (h *SaveStockHandler) Handle(ctx context.Context, cmd SaveStockCommand) (*StockResult, error) {
	if cmd.ProductCode <= 0 {
		return nil, usecase.Invalid("product", "is required")
	}
	if cmd.Quantity <= 0 {
		return nil, usecase.Invalid("quantity", "must be greater than 0")
	}

	data, err := loadUserData(ctx, cmd.Session)
	if err != nil {
		return nil, err
	}
	tent := data.Tent(cmd.TentCode)
	if tent == nil {
		return nil, usecase.ErrTentNotFound
	}

	updated := false
	for i := range tent.Stock {
		if tent.Stock[i].ProductCode == cmd.ProductCode {
			tent.Stock[i].Quantity = cmd.Quantity
			updated = true
		}
	}
	if !updated {
		tent.Stock = append(tent.Stock, domain.StockEntry{
			ProductCode: cmd.ProductCode,
			TentCode:    tent.Code,
			Quantity:    cmd.Quantity,
		})
	}
	if err := cmd.Session.Auth.SaveUserData(ctx, *data); err != nil {
		return nil, err
	}

	result := &StockResult{Tent: *tent, Synced: true}
	if err := h.stalls.SaveStock(ctx, tent.Code, cmd.ProductCode, cmd.Quantity); err != nil {
		logger.Warn(ctx).
			Err(err).
			Int("tent_code", tent.Code).
			Int("product_code", cmd.ProductCode).
			Msg("Failed to sync stock with backend")
		result.Synced = false
	}
	return result, nil
}

// RemoveStockCommand drops a product from a stall
type RemoveStockCommand struct {
	Session     *state.Session
	TentCode    int
	ProductCode int
}

// RemoveStockHandler handles remove stock command
type RemoveStockHandler struct {
	stalls usecase.Stalls
}

// NewRemoveStockHandler creates a new remove stock handler
func NewRemoveStockHandler(stalls usecase.Stalls) *RemoveStockHandler {
	return &RemoveStockHandler{stalls: stalls}
}

// Handle removes the entry from the stall in the session and replaces the
// stall item list on the backend. Removing an absent product is a no-op.
func (h *RemoveStockHandler) Handle(ctx context.Context, cmd RemoveStockCommand) (*StockResult, error) {
	if cmd.ProductCode <= 0 {
		return nil, usecase.Invalid("product", "is required")
	}

	data, err := loadUserData(ctx, cmd.Session)
	if err != nil {
		return nil, err
	}
	tent := data.Tent(cmd.TentCode)
	if tent == nil {
		return nil, usecase.ErrTentNotFound
	}

	remaining := make([]domain.StockEntry, 0, len(tent.Stock))
	for _, entry := range tent.Stock {
		if entry.ProductCode != cmd.ProductCode {
			remaining = append(remaining, entry)
		}
	}
	if len(remaining) == len(tent.Stock) {
		return &StockResult{Tent: *tent, Synced: true}, nil
	}

	tent.Stock = remaining
	if err := cmd.Session.Auth.SaveUserData(ctx, *data); err != nil {
		return nil, err
	}

	result := &StockResult{Tent: *tent, Synced: true}
	if err := h.stalls.UpdateTent(ctx, toBackendTent(*tent)); err != nil {
		logger.Warn(ctx).
			Err(err).
			Int("tent_code", tent.Code).
			Int("product_code", cmd.ProductCode).
			Msg("Failed to sync stock removal with backend")
		result.Synced = false
	}
	return result, nil
}

func toBackendTent(tent domain.TentSummary) domain.BackendTent {
	items := make([]domain.BackendStock, 0, len(tent.Stock))
	for _, entry := range tent.Stock {
		items = append(items, domain.BackendStock{
			ProductCode:   entry.ProductCode,
			TentCode:      tent.Code,
			StockQuantity: entry.Quantity,
		})
	}
	return domain.BackendTent{
		Code:        tent.Code,
		CPFHolder:   tent.OwnerCPF,
		Name:        tent.Name,
		UserLicense: tent.License,
		Items:       items,
	}
}
