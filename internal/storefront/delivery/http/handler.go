package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/feirinha-uesb/storefront/internal/backend"
	"github.com/feirinha-uesb/storefront/internal/catalog"
	"github.com/feirinha-uesb/storefront/internal/storefront/state"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase/command"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase/query"
	"github.com/feirinha-uesb/storefront/pkg/logger"
)

// CommandHandlers groups the storefront write use cases
type CommandHandlers struct {
	AddToCart      *command.AddToCartHandler
	RemoveFromCart *command.RemoveFromCartHandler
	ClearCart      *command.ClearCartHandler
	Login          *command.LoginHandler
	Logout         *command.LogoutHandler
	Register       *command.RegisterHandler
	Checkout       *command.CheckoutHandler
	PostComment    *command.PostCommentHandler
	SaveStock      *command.SaveStockHandler
	RemoveStock    *command.RemoveStockHandler
	CreateTent     *command.CreateTentHandler
}

// QueryHandlers groups the storefront read use cases
type QueryHandlers struct {
	GetCart       *query.GetCartHandler
	SessionStatus *query.SessionStatusHandler
	ListProducts  *query.ListProductsHandler
	ProductGrid   *query.ProductGridHandler
	GetProduct    *query.GetProductHandler
	OrderHistory  *query.OrderHistoryHandler
	GetProfile    *query.GetProfileHandler
	TentStock     *query.TentStockHandler
}

// HealthChecker reports the state of a dependency
type HealthChecker interface {
	CheckHealth(ctx context.Context) backend.Health
}

// StorefrontHandler handles HTTP requests of the storefront API
type StorefrontHandler struct {
	commands CommandHandlers
	queries  QueryHandlers
	sessions *state.Sessions
	health   HealthChecker
	metrics  *Metrics
	config   MiddlewareConfig
}

// NewStorefrontHandler creates a new storefront handler
func NewStorefrontHandler(
	commands CommandHandlers,
	queries QueryHandlers,
	sessions *state.Sessions,
	health HealthChecker,
	metrics *Metrics,
	config MiddlewareConfig,
) *StorefrontHandler {
	return &StorefrontHandler{
		commands: commands,
		queries:  queries,
		sessions: sessions,
		health:   health,
		metrics:  metrics,
		config:   config,
	}
}

// GetMiddlewareConfig returns the middleware configuration the handler was built with
func (h *StorefrontHandler) GetMiddlewareConfig() MiddlewareConfig {
	return h.config
}

// Response is the JSON envelope of every endpoint
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RegisterRoutes registers the API on router. api must be a subrouter of
// router carrying the session middleware.
func (h *StorefrontHandler) RegisterRoutes(router, api *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	route := func(method, path string, fn http.HandlerFunc) {
		api.HandleFunc(path, h.metrics.instrument("/api"+path, fn)).Methods(method)
	}

	route(http.MethodGet, "/cart", h.GetCart)
	route(http.MethodPost, "/cart/items", h.AddToCart)
	route(http.MethodDelete, "/cart/items/{code}", h.RemoveFromCart)
	route(http.MethodDelete, "/cart", h.ClearCart)

	route(http.MethodGet, "/session", h.SessionStatus)
	route(http.MethodPost, "/session/login", h.Login)
	route(http.MethodPost, "/session/logout", h.Logout)
	route(http.MethodPost, "/users", h.Register)

	route(http.MethodGet, "/products", h.ListProducts)
	route(http.MethodGet, "/products/grid", h.ProductGrid)
	route(http.MethodGet, "/products/{code}", h.GetProduct)
	route(http.MethodPost, "/products/{code}/comments", h.PostComment)

	route(http.MethodPost, "/checkout", h.Checkout)
	route(http.MethodGet, "/history", h.OrderHistory)

	route(http.MethodGet, "/profile", h.GetProfile)
	route(http.MethodPost, "/profile/tents", h.CreateTent)
	route(http.MethodGet, "/profile/tents/{tent}/stock", h.TentStock)
	route(http.MethodPut, "/profile/tents/{tent}/stock/{product}", h.SaveStock)
	route(http.MethodDelete, "/profile/tents/{tent}/stock/{product}", h.RemoveStock)
}

// openSession locks the session of the request. On failure the response is
// written and nil is returned.
func (h *StorefrontHandler) openSession(w http.ResponseWriter, r *http.Request) *state.Session {
	sessionID, ok := SessionIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusInternalServerError, "Session not resolved")
		return nil
	}
	sess, err := h.sessions.Open(r.Context(), sessionID)
	if err != nil {
		logger.Error(r.Context()).Err(err).Str("session_id", sessionID).Msg("Failed to open session")
		respondError(w, http.StatusServiceUnavailable, "Session storage unavailable")
		return nil
	}
	return sess
}

// GetCart handles GET /api/cart
func (h *StorefrontHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess := h.openSession(w, r)
	if sess == nil {
		return
	}
	defer sess.Close()

	summary, err := h.queries.GetCart.Handle(r.Context(), query.GetCartQuery{Session: sess})
	if err != nil {
		h.fail(w, r, err, "Failed to load cart")
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: summary})
}

// AddToCart handles POST /api/cart/items
func (h *StorefrontHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code     int `json:"code"`
		Quantity int `json:"quantity"`
	}
	if !decode(w, r, &req) {
		return
	}

	sess := h.openSession(w, r)
	if sess == nil {
		return
	}
	defer sess.Close()

	items, err := h.commands.AddToCart.Handle(r.Context(), command.AddToCartCommand{
		Session:     sess,
		ProductCode: req.Code,
		Quantity:    req.Quantity,
	})
	if err != nil {
		h.fail(w, r, err, "Failed to add to cart")
		return
	}
	h.metrics.cartOperation("add")

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Item added to cart",
		Data:    catalog.BuildCheckoutSummary(items),
	})
}

// RemoveFromCart handles DELETE /api/cart/items/{code}
func (h *StorefrontHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	code, ok := pathInt(w, r, "code")
	if !ok {
		return
	}

	sess := h.openSession(w, r)
	if sess == nil {
		return
	}
	defer sess.Close()

	items, err := h.commands.RemoveFromCart.Handle(r.Context(), command.RemoveFromCartCommand{Session: sess, ProductCode: code})
	if err != nil {
		h.fail(w, r, err, "Failed to remove from cart")
		return
	}
	h.metrics.cartOperation("remove")

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Item removed from cart",
		Data:    catalog.BuildCheckoutSummary(items),
	})
}

// ClearCart handles DELETE /api/cart
func (h *StorefrontHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sess := h.openSession(w, r)
	if sess == nil {
		return
	}
	defer sess.Close()

	if err := h.commands.ClearCart.Handle(r.Context(), command.ClearCartCommand{Session: sess}); err != nil {
		h.fail(w, r, err, "Failed to clear cart")
		return
	}
	h.metrics.cartOperation("clear")

	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Cart cleared"})
}

// SessionStatus handles GET /api/session
func (h *StorefrontHandler) SessionStatus(w http.ResponseWriter, r *http.Request) {
	sess := h.openSession(w, r)
	if sess == nil {
		return
	}
	defer sess.Close()

	status, err := h.queries.SessionStatus.Handle(r.Context(), query.SessionStatusQuery{Session: sess})
	if err != nil {
		h.fail(w, r, err, "Failed to load session")
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: status})
}

// Login handles POST /api/session/login
func (h *StorefrontHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Senha string `json:"senha"`
	}
	if !decode(w, r, &req) {
		return
	}

	sess := h.openSession(w, r)
	if sess == nil {
		return
	}
	defer sess.Close()

	resp, err := h.commands.Login.Handle(r.Context(), command.LoginCommand{Session: sess, Email: req.Email, Senha: req.Senha})
	if err != nil {
		h.fail(w, r, err, "Login failed")
		return
	}
	setSessionToken(w, resp.Token, h.config.SessionTTL, h.config.SecureCookie)

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Login successful",
		Data:    resp,
	})
}

// Logout handles POST /api/session/logout
func (h *StorefrontHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := h.openSession(w, r)
	if sess == nil {
		return
	}
	defer sess.Close()

	resp, err := h.commands.Logout.Handle(r.Context(), command.LogoutCommand{Session: sess})
	if err != nil {
		h.fail(w, r, err, "Logout failed")
		return
	}
	setSessionToken(w, resp.Token, h.config.SessionTTL, h.config.SecureCookie)
	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Logged out", Data: resp})
}

// Register handles POST /api/users
func (h *StorefrontHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CPF        string  `json:"cpf"`
		Nome       string  `json:"nome"`
		Telefone   string  `json:"telefone"`
		Email      string  `json:"email"`
		Senha      string  `json:"senha"`
		FotoPerfil *string `json:"fotoPerfil"`
	}
	if !decode(w, r, &req) {
		return
	}

	profile, err := h.commands.Register.Handle(r.Context(), command.RegisterCommand{
		CPF:        req.CPF,
		Nome:       req.Nome,
		Telefone:   req.Telefone,
		Email:      req.Email,
		Senha:      req.Senha,
		FotoPerfil: req.FotoPerfil,
	})
	if err != nil {
		h.fail(w, r, err, "Registration failed")
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "User registered successfully",
		Data:    profile,
	})
}

// ListProducts handles GET /api/products
func (h *StorefrontHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.queries.ListProducts.Handle(r.Context(), query.ListProductsQuery{Term: r.URL.Query().Get("q")})
	if err != nil {
		h.fail(w, r, err, "Failed to list products")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"products": products,
			"total":    len(products),
		},
	})
}

// ProductGrid handles GET /api/products/grid
func (h *StorefrontHandler) ProductGrid(w http.ResponseWriter, r *http.Request) {
	columns, ok := queryInt(w, r, "columns")
	if !ok {
		return
	}
	ticks, ok := queryInt(w, r, "ticks")
	if !ok {
		return
	}

	grid, err := h.queries.ProductGrid.Handle(r.Context(), query.ProductGridQuery{
		Term:    r.URL.Query().Get("q"),
		Columns: columns,
		Ticks:   ticks,
	})
	if err != nil {
		h.fail(w, r, err, "Failed to build product grid")
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: grid})
}

// GetProduct handles GET /api/products/{code}
func (h *StorefrontHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	code, ok := pathInt(w, r, "code")
	if !ok {
		return
	}

	sess := h.openSession(w, r)
	if sess == nil {
		return
	}
	defer sess.Close()

	detail, err := h.queries.GetProduct.Handle(r.Context(), query.GetProductQuery{Session: sess, ProductCode: code})
	if err != nil {
		h.fail(w, r, err, "Failed to load product")
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: detail})
}

// PostComment handles POST /api/products/{code}/comments
func (h *StorefrontHandler) PostComment(w http.ResponseWriter, r *http.Request) {
	code, ok := pathInt(w, r, "code")
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &req) {
		return
	}

	sess := h.openSession(w, r)
	if sess == nil {
		return
	}
	defer sess.Close()

	comment, err := h.commands.PostComment.Handle(r.Context(), command.PostCommentCommand{
		Session:     sess,
		ProductCode: code,
		Text:        req.Text,
	})
	if err != nil {
		h.fail(w, r, err, "Failed to post comment")
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Comment posted",
		Data:    comment,
	})
}

// Checkout handles POST /api/checkout
func (h *StorefrontHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sess := h.openSession(w, r)
	if sess == nil {
		return
	}
	defer sess.Close()

	resp, err := h.commands.Checkout.Handle(r.Context(), command.CheckoutCommand{Session: sess})
	if err != nil {
		h.metrics.checkout("failed")
		h.fail(w, r, err, "Checkout failed")
		return
	}
	h.metrics.checkout("completed")

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Order placed successfully",
		Data:    resp,
	})
}

// OrderHistory handles GET /api/history
func (h *StorefrontHandler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	sess := h.openSession(w, r)
	if sess == nil {
		return
	}
	defer sess.Close()

	sales, err := h.queries.OrderHistory.Handle(r.Context(), query.OrderHistoryQuery{Session: sess})
	if err != nil {
		h.fail(w, r, err, "Failed to load order history")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"sales": sales,
			"total": len(sales),
		},
	})
}

// GetProfile handles GET /api/profile
func (h *StorefrontHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	sess := h.openSession(w, r)
	if sess == nil {
		return
	}
	defer sess.Close()

	profile, err := h.queries.GetProfile.Handle(r.Context(), query.GetProfileQuery{Session: sess})
	if err != nil {
		h.fail(w, r, err, "Failed to load profile")
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: profile})
}

// CreateTent handles POST /api/profile/tents
func (h *StorefrontHandler) CreateTent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string  `json:"name"`
		License *string `json:"license"`
	}
	if !decode(w, r, &req) {
		return
	}

	sess := h.openSession(w, r)
	if sess == nil {
		return
	}
	defer sess.Close()

	tent, err := h.commands.CreateTent.Handle(r.Context(), command.CreateTentCommand{
		Session: sess,
		Name:    req.Name,
		License: req.License,
	})
	if err != nil {
		h.fail(w, r, err, "Failed to create tent")
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Tent created successfully",
		Data:    tent,
	})
}

// TentStock handles GET /api/profile/tents/{tent}/stock
func (h *StorefrontHandler) TentStock(w http.ResponseWriter, r *http.Request) {
	tentCode, ok := pathInt(w, r, "tent")
	if !ok {
		return
	}

	sess := h.openSession(w, r)
	if sess == nil {
		return
	}
	defer sess.Close()

	stock, err := h.queries.TentStock.Handle(r.Context(), query.TentStockQuery{Session: sess, TentCode: tentCode})
	if err != nil {
		h.fail(w, r, err, "Failed to load stock")
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: stock})
}

// SaveStock handles PUT /api/profile/tents/{tent}/stock/{product}
func (h *StorefrontHandler) SaveStock(w http.ResponseWriter, r *http.Request) {
	tentCode, ok := pathInt(w, r, "tent")
	if !ok {
		return
	}
	productCode, ok := pathInt(w, r, "product")
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if !decode(w, r, &req) {
		return
	}

	sess := h.openSession(w, r)
	if sess == nil {
		return
	}
	defer sess.Close()

	result, err := h.commands.SaveStock.Handle(r.Context(), command.SaveStockCommand{
		Session:     sess,
		TentCode:    tentCode,
		ProductCode: productCode,
		Quantity:    req.Quantity,
	})
	if err != nil {
		h.fail(w, r, err, "Failed to save stock")
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Message: stockMessage(result.Synced), Data: result})
}

// RemoveStock handles DELETE /api/profile/tents/{tent}/stock/{product}
func (h *StorefrontHandler) RemoveStock(w http.ResponseWriter, r *http.Request) {
	tentCode, ok := pathInt(w, r, "tent")
	if !ok {
		return
	}
	productCode, ok := pathInt(w, r, "product")
	if !ok {
		return
	}

	sess := h.openSession(w, r)
	if sess == nil {
		return
	}
	defer sess.Close()

	result, err := h.commands.RemoveStock.Handle(r.Context(), command.RemoveStockCommand{
		Session:     sess,
		TentCode:    tentCode,
		ProductCode: productCode,
	})
	if err != nil {
		h.fail(w, r, err, "Failed to remove stock")
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Message: stockMessage(result.Synced), Data: result})
}

func stockMessage(synced bool) string {
	if synced {
		return "Stock updated"
	}
	return "Stock updated locally; backend sync failed"
}

// HealthCheck handles GET /health
func (h *StorefrontHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := h.health.CheckHealth(r.Context())
	code := http.StatusOK
	if status.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, Response{
		Success: code == http.StatusOK,
		Message: "storefront is " + status.Status,
		Data: map[string]interface{}{
			"service": "storefront",
			"backend": status,
		},
	})
}

// fail maps use case errors to status codes
func (h *StorefrontHandler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	status, text := errorStatus(err, message)

	event := logger.Warn(r.Context())
	if status >= http.StatusInternalServerError {
		event = logger.Error(r.Context())
	}
	event.Err(err).Int("status", status).Msg(message)

	respondError(w, status, text)
}

func errorStatus(err error, message string) (int, string) {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, usecase.ErrNotLoggedIn), errors.Is(err, backend.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, usecase.ErrEmptyCart), usecase.IsValidation(err):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, usecase.ErrTentNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, backend.ErrCircuitOpen):
		return http.StatusServiceUnavailable, "Backend temporarily unavailable"
	case errors.As(err, &apiErr):
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status, apiErr.Error()
		}
		return http.StatusBadGateway, message
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, message
	default:
		return http.StatusInternalServerError, message
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	value, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || value <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return value, true
}

func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return value, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, Response{Success: false, Error: message})
}
