// Package usecasetest provides an in-memory backend and sessions for
// storefront use case tests.
package usecasetest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feirinha-uesb/storefront/internal/backend"
	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/internal/history"
	"github.com/feirinha-uesb/storefront/internal/storefront/state"
	"github.com/feirinha-uesb/storefront/kafka"
	"github.com/feirinha-uesb/storefront/pkg/storage"
)

// Backend is an in-memory marketplace backend. Set an Err field to make the
// matching calls fail.
type Backend struct {
	mu sync.Mutex

	Products map[int]domain.Product
	Tents    []domain.TentSummary
	Comments map[int][]domain.ProductComment
	Users    map[string]domain.BackendUser
	Sales    []domain.Sale

	CatalogErr error
	SalesErr   error
	StallsErr  error
	TentsErr   error

	Posted       []domain.BackendComment
	SavedStock   []domain.BackendStock
	UpdatedTents []domain.BackendTent
	nextID       int
}

// NewBackend creates an empty backend
func NewBackend() *Backend {
	return &Backend{
		Products: map[int]domain.Product{},
		Comments: map[int][]domain.ProductComment{},
		Users:    map[string]domain.BackendUser{},
		nextID:   100,
	}
}

// AddProduct registers a product
func (b *Backend) AddProduct(p domain.Product) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Products[p.ID] = p
}

// AddUser registers a user
func (b *Backend) AddUser(u domain.BackendUser) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Users[u.CPF] = u
}

func (b *Backend) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.CatalogErr != nil {
		return nil, b.CatalogErr
	}
	out := make([]domain.Product, 0, len(b.Products))
	for id := 1; len(out) < len(b.Products); id++ {
		if p, ok := b.Products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (b *Backend) FetchProductByID(ctx context.Context, id int) (*domain.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.CatalogErr != nil {
		return nil, b.CatalogErr
	}
	p, ok := b.Products[id]
	if !ok {
		return nil, &backend.APIError{Status: 404, Payload: "Produto não encontrado"}
	}
	return &p, nil
}

func (b *Backend) FetchProductComments(ctx context.Context, productID int) ([]domain.ProductComment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.CatalogErr != nil {
		return nil, b.CatalogErr
	}
	return append([]domain.ProductComment(nil), b.Comments[productID]...), nil
}

func (b *Backend) FetchTents(ctx context.Context) ([]domain.TentSummary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.CatalogErr != nil {
		return nil, b.CatalogErr
	}
	return append([]domain.TentSummary(nil), b.Tents...), nil
}

func (b *Backend) Login(ctx context.Context, email, senha string) (*domain.UserProfile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.Users {
		if u.Email == email && u.Senha == senha {
			profile := backend.ConvertUserProfile(u)
			return &profile, nil
		}
	}
	return nil, backend.ErrInvalidCredentials
}

func (b *Backend) RegisterUser(ctx context.Context, user domain.BackendUser) (*domain.UserProfile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.Users[user.CPF]; exists {
		return nil, &backend.APIError{Status: 409, Payload: "CPF já cadastrado"}
	}
	b.Users[user.CPF] = user
	profile := backend.ConvertUserProfile(user)
	return &profile, nil
}

func (b *Backend) FetchUserProfile(ctx context.Context, cpf string) (*domain.UserProfile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.Users[cpf]
	if !ok {
		return nil, nil
	}
	profile := backend.ConvertUserProfile(u)
	return &profile, nil
}

func (b *Backend) FetchUserTents(ctx context.Context, cpf string) ([]domain.TentSummary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.TentsErr != nil {
		return nil, b.TentsErr
	}
	owned := make([]domain.TentSummary, 0)
	for _, t := range b.Tents {
		if t.OwnerCPF == cpf {
			owned = append(owned, t)
		}
	}
	return owned, nil
}

func (b *Backend) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SalesErr != nil {
		return nil, b.SalesErr
	}
	b.nextID++
	sale.ID = b.nextID
	b.Sales = append(b.Sales, sale)
	return &sale, nil
}

func (b *Backend) FetchSales(ctx context.Context) ([]domain.Sale, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SalesErr != nil {
		return nil, b.SalesErr
	}
	return append([]domain.Sale(nil), b.Sales...), nil
}

func (b *Backend) PostComment(ctx context.Context, productID int, userCPF, text string) (*domain.BackendComment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	comment := domain.BackendComment{ID: b.nextID, Texto: text, CodProd: productID, CPFUsuario: userCPF}
	b.Posted = append(b.Posted, comment)
	return &comment, nil
}

func (b *Backend) CreateTent(ctx context.Context, tent domain.BackendTent) (*domain.TentSummary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.StallsErr != nil {
		return nil, b.StallsErr
	}
	b.nextID++
	tent.Code = b.nextID
	summary := backend.ConvertTent(tent)
	b.Tents = append(b.Tents, summary)
	return &summary, nil
}

func (b *Backend) UpdateTent(ctx context.Context, tent domain.BackendTent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.StallsErr != nil {
		return b.StallsErr
	}
	b.UpdatedTents = append(b.UpdatedTents, tent)
	return nil
}

func (b *Backend) FetchStock(ctx context.Context, tentCode int) ([]domain.StockEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.StallsErr != nil {
		return nil, b.StallsErr
	}
	for _, tent := range b.Tents {
		if tent.Code == tentCode {
			return append([]domain.StockEntry(nil), tent.Stock...), nil
		}
	}
	return []domain.StockEntry{}, nil
}

func (b *Backend) SaveStock(ctx context.Context, tentCode, productCode, quantity int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.StallsErr != nil {
		return b.StallsErr
	}
	b.SavedStock = append(b.SavedStock, domain.BackendStock{TentCode: tentCode, ProductCode: productCode, StockQuantity: quantity})
	return nil
}

// Publisher records published events
type Publisher struct {
	mu     sync.Mutex
	Events []kafka.SaleCreatedEvent
	Err    error
}

func (p *Publisher) PublishSaleCreated(ctx context.Context, event kafka.SaleCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, event)
	return nil
}

// Sessions returns a session opener over in-memory storage with the local
// history provider
func Sessions(t *testing.T) *state.Sessions {
	t.Helper()
	factory, err := history.NewFactory(history.KindLocal, nil, nil)
	require.NoError(t, err)
	return state.NewSessions(storage.NewMemoryBackend(), storage.NewLocker(), factory)
}

// Open opens sessionID and closes it when the test ends
func Open(t *testing.T, sessions *state.Sessions, sessionID string) *state.Session {
	t.Helper()
	sess, err := sessions.Open(context.Background(), sessionID)
	require.NoError(t, err)
	t.Cleanup(sess.Close)
	return sess
}
