// Package storefront assembles the storefront API from its infrastructure.
package storefront

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/feirinha-uesb/storefront/internal/backend"
	"github.com/feirinha-uesb/storefront/internal/config"
	"github.com/feirinha-uesb/storefront/internal/history"
	httpDelivery "github.com/feirinha-uesb/storefront/internal/storefront/delivery/http"
	"github.com/feirinha-uesb/storefront/internal/storefront/state"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase/command"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase/query"
	"github.com/feirinha-uesb/storefront/pkg/auth"
	"github.com/feirinha-uesb/storefront/pkg/storage"
)

// Infrastructure holds the connections built by the caller. Redis and
// Publisher may be nil.
type Infrastructure struct {
	Config     *config.Config
	Client     *backend.Client
	Storage    storage.Backend
	History    history.Factory
	Publisher  usecase.EventPublisher
	Redis      *redis.Client
	Registerer prometheus.Registerer
}

// Backend ports

func ProvideCatalog(c *backend.Client) usecase.Catalog {
	return c
}

func ProvideAccounts(c *backend.Client) usecase.Accounts {
	return c
}

func ProvideSales(c *backend.Client) usecase.Sales {
	return c
}

func ProvideComments(c *backend.Client) usecase.Comments {
	return c
}

func ProvideStalls(c *backend.Client) usecase.Stalls {
	return c
}

func ProvideHealthChecker(c *backend.Client) httpDelivery.HealthChecker {
	return c
}

// Session providers

func ProvideTokenManager(cfg *config.Config) *auth.TokenManager {
	return auth.NewTokenManager(cfg.Session.Secret, cfg.Session.TTL)
}

func ProvideSessions(backend storage.Backend, historyFactory history.Factory) *state.Sessions {
	return state.NewSessions(backend, storage.NewLocker(), historyFactory)
}

// Delivery providers

func ProvideRateLimiter(client *redis.Client, cfg *config.Config) *httpDelivery.RateLimiter {
	return httpDelivery.NewRateLimiter(client, cfg.RateLimitPerMinute, time.Minute)
}

func ProvideMiddlewareConfig(cfg *config.Config, tokens *auth.TokenManager, limiter *httpDelivery.RateLimiter) httpDelivery.MiddlewareConfig {
	mc := httpDelivery.DefaultMiddlewareConfig(tokens, cfg.Session.TTL, limiter)
	mc.SecureCookie = !cfg.IsDevelopment()
	return mc
}

func ProvideMetrics(reg prometheus.Registerer) *httpDelivery.Metrics {
	return httpDelivery.NewMetrics(reg)
}

// Command Handlers Providers

func ProvideAddToCartHandler(catalog usecase.Catalog) *command.AddToCartHandler {
	return command.NewAddToCartHandler(catalog)
}

func ProvideRemoveFromCartHandler() *command.RemoveFromCartHandler {
	return command.NewRemoveFromCartHandler()
}

func ProvideClearCartHandler() *command.ClearCartHandler {
	return command.NewClearCartHandler()
}

func ProvideLoginHandler(accounts usecase.Accounts, sessions *state.Sessions, tokens *auth.TokenManager) *command.LoginHandler {
	return command.NewLoginHandler(accounts, sessions, tokens)
}

func ProvideLogoutHandler(sessions *state.Sessions, tokens *auth.TokenManager) *command.LogoutHandler {
	return command.NewLogoutHandler(sessions, tokens)
}

func ProvideRegisterHandler(accounts usecase.Accounts) *command.RegisterHandler {
	return command.NewRegisterHandler(accounts)
}

func ProvideCheckoutHandler(sales usecase.Sales, publisher usecase.EventPublisher, cfg *config.Config) *command.CheckoutHandler {
	return command.NewCheckoutHandler(sales, publisher, cfg.Backend.DefaultTentCode)
}

func ProvidePostCommentHandler(comments usecase.Comments) *command.PostCommentHandler {
	return command.NewPostCommentHandler(comments)
}

func ProvideSaveStockHandler(stalls usecase.Stalls) *command.SaveStockHandler {
	return command.NewSaveStockHandler(stalls)
}

func ProvideRemoveStockHandler(stalls usecase.Stalls) *command.RemoveStockHandler {
	return command.NewRemoveStockHandler(stalls)
}

func ProvideCreateTentHandler(stalls usecase.Stalls) *command.CreateTentHandler {
	return command.NewCreateTentHandler(stalls)
}

// Query Handlers Providers

func ProvideGetCartHandler() *query.GetCartHandler {
	return query.NewGetCartHandler()
}

func ProvideSessionStatusHandler() *query.SessionStatusHandler {
	return query.NewSessionStatusHandler()
}

func ProvideListProductsHandler(catalog usecase.Catalog) *query.ListProductsHandler {
	return query.NewListProductsHandler(catalog)
}

func ProvideProductGridHandler(catalog usecase.Catalog, cfg *config.Config) *query.ProductGridHandler {
	return query.NewProductGridHandler(catalog, cfg.GridColumns)
}

func ProvideGetProductHandler(catalog usecase.Catalog) *query.GetProductHandler {
	return query.NewGetProductHandler(catalog)
}

func ProvideOrderHistoryHandler(catalog usecase.Catalog) *query.OrderHistoryHandler {
	return query.NewOrderHistoryHandler(catalog)
}

func ProvideGetProfileHandler(catalog usecase.Catalog, accounts usecase.Accounts, sales usecase.Sales) *query.GetProfileHandler {
	return query.NewGetProfileHandler(catalog, accounts, sales)
}

func ProvideTentStockHandler(catalog usecase.Catalog, stalls usecase.Stalls) *query.TentStockHandler {
	return query.NewTentStockHandler(catalog, stalls)
}
