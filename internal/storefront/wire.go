//go:build wireinject
// +build wireinject

package storefront

import (
	"github.com/google/wire"

	httpDelivery "github.com/feirinha-uesb/storefront/internal/storefront/delivery/http"
)

// Wire sets
var InfrastructureSet = wire.NewSet(
	wire.FieldsOf(new(Infrastructure), "Config", "Client", "Storage", "History", "Publisher", "Redis", "Registerer"),
)

var BackendSet = wire.NewSet(
	ProvideCatalog,
	ProvideAccounts,
	ProvideSales,
	ProvideComments,
	ProvideStalls,
	ProvideHealthChecker,
)

var SessionSet = wire.NewSet(
	ProvideTokenManager,
	ProvideSessions,
)

var DeliverySet = wire.NewSet(
	ProvideRateLimiter,
	ProvideMiddlewareConfig,
	ProvideMetrics,
)

var CommandHandlerSet = wire.NewSet(
	ProvideAddToCartHandler,
	ProvideRemoveFromCartHandler,
	ProvideClearCartHandler,
	ProvideLoginHandler,
	ProvideLogoutHandler,
	ProvideRegisterHandler,
	ProvideCheckoutHandler,
	ProvidePostCommentHandler,
	ProvideSaveStockHandler,
	ProvideRemoveStockHandler,
	ProvideCreateTentHandler,
	wire.Struct(new(httpDelivery.CommandHandlers), "*"),
)

var QueryHandlerSet = wire.NewSet(
	ProvideGetCartHandler,
	ProvideSessionStatusHandler,
	ProvideListProductsHandler,
	ProvideProductGridHandler,
	ProvideGetProductHandler,
	ProvideOrderHistoryHandler,
	ProvideGetProfileHandler,
	ProvideTentStockHandler,
	wire.Struct(new(httpDelivery.QueryHandlers), "*"),
)

var AllHandlersSet = wire.NewSet(
	InfrastructureSet,
	BackendSet,
	SessionSet,
	DeliverySet,
	CommandHandlerSet,
	QueryHandlerSet,
)

// InitializeHandler initializes the storefront handler with all dependencies
func InitializeHandler(infra Infrastructure) (*httpDelivery.StorefrontHandler, error) {
	wire.Build(
		AllHandlersSet,
		httpDelivery.NewStorefrontHandler,
	)
	return nil, nil
}
