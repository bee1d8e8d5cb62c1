package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/feirinha-uesb/storefront/internal/domain"
)

// FetchProducts lists the catalog
func (c *Client) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.BackendProduct
	if err := c.get(ctx, "/products", &products); err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return ConvertProducts(products), nil
}

// FetchProductByID gets one product
func (c *Client) FetchProductByID(ctx context.Context, id int) (*domain.Product, error) {
	var product domain.BackendProduct
	if err := c.get(ctx, fmt.Sprintf("/products/%d", id), &product); err != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	converted := ConvertProduct(product)
	return &converted, nil
}

// FetchProductComments gets the comments of a product joined with their
// authors. Both lists are fetched together; either failure fails the call.
func (c *Client) FetchProductComments(ctx context.Context, productID int) ([]domain.ProductComment, error) {
	var comments []domain.BackendComment
	var users []domain.BackendUser

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.get(gctx, fmt.Sprintf("/comentarios/produto/%d", productID), &comments)
	})
	g.Go(func() error {
		return c.get(gctx, "/usuarios", &users)
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch comments of product %d: %w", productID, err)
	}

	return ConvertProductComments(comments, users), nil
}

// PostComment publishes a comment on a product
func (c *Client) PostComment(ctx context.Context, productID int, userCPF, text string) (*domain.BackendComment, error) {
	comment := domain.BackendComment{
		Texto:        text,
		CodProd:      productID,
		CPFUsuario:   userCPF,
		DataPostagem: &domain.LocalDateTime{Time: time.Now()},
	}

	var created domain.BackendComment
	if err := c.send(ctx, http.MethodPost, "/comentarios", comment, &created); err != nil {
		return nil, fmt.Errorf("failed to post comment: %w", err)
	}
	if created.CodProd == 0 {
		created = comment
	}
	return &created, nil
}
