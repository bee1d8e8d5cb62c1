package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// GetCartDoc godoc
// @Summary Get cart
// @Description Cart lines of the session with subtotals and grand total
// @Tags Cart
// @Security SessionToken
// @Produce json
// @Success 200 {object} object{success=bool,data=object{items=array,count=int,total=string}}
// @Router /api/cart [get]
func (h *StorefrontHandler) GetCartDoc() {}

// AddToCartDoc godoc
// @Summary Add to cart
// @Description Add a product to the cart; re-adding merges quantities
// @Tags Cart
// @Security SessionToken
// @Accept json
// @Produce json
// @Param request body object{code=int,quantity=int} true "Product code and quantity (default 1)"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/cart/items [post]
func (h *StorefrontHandler) AddToCartDoc() {}

// RemoveFromCartDoc godoc
// @Summary Remove one unit from cart
// @Tags Cart
// @Security SessionToken
// @Produce json
// @Param code path int true "Product code"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Router /api/cart/items/{code} [delete]
func (h *StorefrontHandler) RemoveFromCartDoc() {}

// LoginDoc godoc
// @Summary Login
// @Description Verify credentials with the backend and bind the user to the session
// @Tags Session
// @Accept json
// @Produce json
// @Param request body object{email=string,senha=string} true "Credentials"
// @Success 200 {object} object{success=bool,message=string,data=object{token=string,user=object,tents=array}}
// @Failure 401 {object} object{success=bool,error=string}
// @Router /api/session/login [post]
func (h *StorefrontHandler) LoginDoc() {}

// RegisterDoc godoc
// @Summary Register user
// @Tags Session
// @Accept json
// @Produce json
// @Param request body object{cpf=string,nome=string,telefone=string,email=string,senha=string,fotoPerfil=string} true "User data"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Router /api/users [post]
func (h *StorefrontHandler) RegisterDoc() {}

// ListProductsDoc godoc
// @Summary List products
// @Tags Products
// @Produce json
// @Param q query string false "Name search term"
// @Success 200 {object} object{success=bool,data=object{products=array,total=int}}
// @Router /api/products [get]
func (h *StorefrontHandler) ListProductsDoc() {}

// GetProductDoc godoc
// @Summary Product detail
// @Description Product with stall name, stock, comments and quantity in cart
// @Tags Products
// @Produce json
// @Param code path int true "Product code"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/products/{code} [get]
func (h *StorefrontHandler) GetProductDoc() {}

// CheckoutDoc godoc
// @Summary Checkout
// @Description Create a sale from the cart and clear it
// @Tags Orders
// @Security SessionToken
// @Produce json
// @Success 201 {object} object{success=bool,message=string,data=object{sale=object,total=string}}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 401 {object} object{success=bool,error=string}
// @Failure 502 {object} object{success=bool,error=string}
// @Router /api/checkout [post]
func (h *StorefrontHandler) CheckoutDoc() {}

// OrderHistoryDoc godoc
// @Summary Order history
// @Tags Orders
// @Security SessionToken
// @Produce json
// @Success 200 {object} object{success=bool,data=object{sales=array,total=int}}
// @Failure 401 {object} object{success=bool,error=string}
// @Router /api/history [get]
func (h *StorefrontHandler) OrderHistoryDoc() {}

// TentStockDoc godoc
// @Summary Tent stock
// @Description Stock the backend holds for one of the user's stalls
// @Tags Profile
// @Security SessionToken
// @Produce json
// @Param tent path int true "Tent code"
// @Success 200 {object} object{success=bool,data=array}
// @Failure 401 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/profile/tents/{tent}/stock [get]
func (h *StorefrontHandler) TentStockDoc() {}

// SaveStockDoc godoc
// @Summary Save stock
// @Description Set the quantity a stall holds of a product
// @Tags Profile
// @Security SessionToken
// @Accept json
// @Produce json
// @Param tent path int true "Tent code"
// @Param product path int true "Product code"
// @Param request body object{quantity=int} true "Quantity"
// @Success 200 {object} object{success=bool,message=string,data=object{tent=object,synced=bool}}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/profile/tents/{tent}/stock/{product} [put]
func (h *StorefrontHandler) SaveStockDoc() {}

// HealthCheckDoc godoc
// @Summary Health check
// @Description Check service health and backend reachability
// @Tags Health
// @Produce json
// @Success 200 {object} object{success=bool,message=string}
// @Failure 503 {object} object{success=bool,error=string}
// @Router /health [get]
func (h *StorefrontHandler) HealthCheckDoc() {}
