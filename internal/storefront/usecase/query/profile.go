package query

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/feirinha-uesb/storefront/internal/catalog"
	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/internal/history"
	"github.com/feirinha-uesb/storefront/internal/session"
	"github.com/feirinha-uesb/storefront/internal/storefront/state"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase"
	"github.com/feirinha-uesb/storefront/pkg/logger"
)

// UnknownItemName names stock entries whose product is not in the catalog
const UnknownItemName = "Item desc."

// GetProfileQuery represents the query for the profile page
type GetProfileQuery struct {
	Session *state.Session
}

// Profile is the profile page: the user, their stalls with stock, what they
// bought and what their stalls sold
type Profile struct {
	User      domain.UserProfile   `json:"user"`
	Tents     []domain.TentSummary `json:"tents"`
	Purchases []catalog.SaleView   `json:"purchases"`
	Sales     []catalog.SaleView   `json:"sales"`
}

// GetProfileHandler handles get profile query
type GetProfileHandler struct {
	catalog  usecase.Catalog
	accounts usecase.Accounts
	sales    usecase.Sales
}

// NewGetProfileHandler creates a new get profile handler
func NewGetProfileHandler(c usecase.Catalog, accounts usecase.Accounts, sales usecase.Sales) *GetProfileHandler {
	return &GetProfileHandler{catalog: c, accounts: accounts, sales: sales}
}

// Handle builds the profile. The stalls come from the session snapshot, which
// holds local stock edits; a session without a snapshot loads it from the
// backend and saves it.
func (h *GetProfileHandler) Handle(ctx context.Context, query GetProfileQuery) (*Profile, error) {
	sess := query.Session
	if !sess.Auth.IsLogged() {
		return nil, usecase.ErrNotLoggedIn
	}

	data, err := sess.Auth.UserData(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		if data, err = h.loadUserData(ctx, sess); err != nil {
			return nil, err
		}
	}

	var (
		products  []domain.Product
		purchases []domain.Sale
		allSales  []domain.Sale
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = h.catalog.FetchProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		purchases, err = sess.History.ListByUser(gctx, data.User.CPF)
		return err
	})
	g.Go(func() error {
		var err error
		if allSales, err = h.sales.FetchSales(gctx); err != nil {
			logger.Warn(gctx).Err(err).Msg("Failed to load tent sales for profile")
			allSales = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	owned := make(map[int]bool, len(data.Tents))
	for _, tent := range data.Tents {
		owned[tent.Code] = true
	}
	vendorSales := make([]domain.Sale, 0)
	for _, sale := range allSales {
		if owned[sale.TentCode] {
			vendorSales = append(vendorSales, sale)
		}
	}
	history.SortNewestFirst(purchases)
	history.SortNewestFirst(vendorSales)

	return &Profile{
		User:      data.User,
		Tents:     enrichTents(data.Tents, products),
		Purchases: catalog.BuildHistory(purchases, products),
		Sales:     catalog.BuildHistory(vendorSales, products),
	}, nil
}

func (h *GetProfileHandler) loadUserData(ctx context.Context, sess *state.Session) (*session.UserData, error) {
	cpf := sess.Auth.UserID()
	if cpf == "" {
		return nil, usecase.ErrNotLoggedIn
	}

	var (
		user  *domain.UserProfile
		tents []domain.TentSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = h.accounts.FetchUserProfile(gctx, cpf)
		return err
	})
	g.Go(func() error {
		var err error
		tents, err = h.accounts.FetchUserTents(gctx, cpf)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if user == nil {
		user = &domain.UserProfile{CPF: cpf}
	}

	data := &session.UserData{User: *user, Tents: tents}
	if err := sess.Auth.SaveUserData(ctx, *data); err != nil {
		return nil, err
	}
	return data, nil
}

// enrichTents attaches catalog products to stock entries
func enrichTents(tents []domain.TentSummary, products []domain.Product) []domain.TentSummary {
	byID := make(map[int]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]domain.TentSummary, len(tents))
	for i, tent := range tents {
		stock := make([]domain.StockEntry, len(tent.Stock))
		for j, entry := range tent.Stock {
			if p, ok := byID[entry.ProductCode]; ok {
				product := p
				entry.Product = &product
			} else if entry.Product == nil {
				entry.Product = &domain.Product{ID: entry.ProductCode, Name: UnknownItemName}
			}
			stock[j] = entry
		}
		tent.Stock = stock
		out[i] = tent
	}
	return out
}
