package command

import (
	"context"
	"fmt"

	"github.com/feirinha-uesb/storefront/internal/cart"
	"github.com/feirinha-uesb/storefront/internal/storefront/state"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase"
)

// RemoveFromCartCommand takes one unit of a product out of the cart
type RemoveFromCartCommand struct {
	Session     *state.Session
	ProductCode int
}

// RemoveFromCartHandler handles remove from cart command
type RemoveFromCartHandler struct{}

// NewRemoveFromCartHandler creates a new remove from cart handler
func NewRemoveFromCartHandler() *RemoveFromCartHandler {
	return &RemoveFromCartHandler{}
}

// Handle executes the remove from cart command
func (h *RemoveFromCartHandler) Handle(ctx context.Context, cmd RemoveFromCartCommand) ([]cart.Item, error) {
	if cmd.ProductCode <= 0 {
		return nil, usecase.Invalid("code", "is required")
	}

	items, err := cmd.Session.Cart.Remove(ctx, cmd.ProductCode)
	if err != nil {
		return nil, fmt.Errorf("failed to remove from cart: %w", err)
	}
	return items, nil
}

// ClearCartCommand empties the cart
type ClearCartCommand struct {
	Session *state.Session
}

// ClearCartHandler handles clear cart command
type ClearCartHandler struct{}

// NewClearCartHandler creates a new clear cart handler
func NewClearCartHandler() *ClearCartHandler {
	return &ClearCartHandler{}
}

// Handle executes the clear cart command
func (h *ClearCartHandler) Handle(ctx context.Context, cmd ClearCartCommand) error {
	if err := cmd.Session.Cart.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
