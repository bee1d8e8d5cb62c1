package command

import (
	"context"
	"fmt"

	"github.com/feirinha-uesb/storefront/internal/cart"
	"github.com/feirinha-uesb/storefront/internal/storefront/state"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase"
)

// AddToCartCommand represents the command to put a product in the cart
type AddToCartCommand struct {
	Session     *state.Session
	ProductCode int
	Quantity    int
}

// AddToCartHandler handles add to cart command
type AddToCartHandler struct {
	catalog usecase.Catalog
}

// NewAddToCartHandler creates a new add to cart handler
func NewAddToCartHandler(catalog usecase.Catalog) *AddToCartHandler {
	return &AddToCartHandler{catalog: catalog}
}

// Handle snapshots the product name, price and image into a cart line and
// merges it into the cart. A zero quantity adds one unit.
func (h *AddToCartHandler) Handle(ctx context.Context, cmd AddToCartCommand) ([]cart.Item, error) {
	if cmd.ProductCode <= 0 {
		return nil, usecase.Invalid("code", "is required")
	}
	if cmd.Quantity == 0 {
		cmd.Quantity = 1
	}
	if cmd.Quantity < 0 {
		return nil, usecase.Invalid("quantity", "must be greater than 0")
	}

	product, err := h.catalog.FetchProductByID(ctx, cmd.ProductCode)
	if err != nil {
		return nil, err
	}

	items, err := cmd.Session.Cart.Add(ctx, cart.Item{
		Code:     product.ID,
		Name:     product.Name,
		Price:    product.Price,
		ImageURL: product.ImageURL,
		Quantity: cmd.Quantity,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}
	return items, nil
}
