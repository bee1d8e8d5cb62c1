// Package usecase holds the collaborators and errors shared by the
// storefront commands and queries.
package usecase

import (
	"context"

	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/kafka"
)

// Catalog reads products, stalls and comments from the backend
type Catalog interface {
	FetchProducts(ctx context.Context) ([]domain.Product, error)
	FetchProductByID(ctx context.Context, id int) (*domain.Product, error)
	FetchProductComments(ctx context.Context, productID int) ([]domain.ProductComment, error)
	FetchTents(ctx context.Context) ([]domain.TentSummary, error)
}

// Accounts authenticates and registers users
type Accounts interface {
	Login(ctx context.Context, email, senha string) (*domain.UserProfile, error)
	RegisterUser(ctx context.Context, user domain.BackendUser) (*domain.UserProfile, error)
	FetchUserProfile(ctx context.Context, cpf string) (*domain.UserProfile, error)
	FetchUserTents(ctx context.Context, cpf string) ([]domain.TentSummary, error)
}

// Sales creates and lists sales
type Sales interface {
	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	FetchSales(ctx context.Context) ([]domain.Sale, error)
}

// Comments posts product comments
type Comments interface {
	PostComment(ctx context.Context, productID int, userCPF, text string) (*domain.BackendComment, error)
}

// Stalls reads and writes stalls and their stock
type Stalls interface {
	FetchStock(ctx context.Context, tentCode int) ([]domain.StockEntry, error)
	CreateTent(ctx context.Context, tent domain.BackendTent) (*domain.TentSummary, error)
	UpdateTent(ctx context.Context, tent domain.BackendTent) error
	SaveStock(ctx context.Context, tentCode, productCode, quantity int) error
}

// EventPublisher announces created sales
type EventPublisher interface {
	PublishSaleCreated(ctx context.Context, event kafka.SaleCreatedEvent) error
}
