package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feirinha-uesb/storefront/internal/backend"
	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase/command"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase/query"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase/usecasetest"
	"github.com/feirinha-uesb/storefront/pkg/auth"
)

type fakeHealth struct {
	status string
}

func (f fakeHealth) CheckHealth(ctx context.Context) backend.Health {
	return backend.Health{Status: f.status, Circuit: backend.StateClosed}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	router  *mux.Router
	backend *usecasetest.Backend
	tokens  *auth.TokenManager
	token   string
}

func newTestServer(t *testing.T, health string, limiter *RateLimiter) *testServer {
	t.Helper()
	b := usecasetest.NewBackend()
	b.AddProduct(domain.Product{ID: 7, Name: "Bolo de milho", Price: 12.5})
	b.AddProduct(domain.Product{ID: 8, Name: "Cocada", Price: 3})
	b.AddUser(domain.BackendUser{CPF: "123", Nome: "Ana", Email: "ana@uesb.br", Senha: "segredo"})
	b.Tents = []domain.TentSummary{{Code: 1, Name: "Barraca da Ana", OwnerCPF: "123"}}

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	sessions := usecasetest.Sessions(t)
	commands := CommandHandlers{
		AddToCart:      command.NewAddToCartHandler(b),
		RemoveFromCart: command.NewRemoveFromCartHandler(),
		ClearCart:      command.NewClearCartHandler(),
		Login:          command.NewLoginHandler(b, sessions, tokens),
		Logout:         command.NewLogoutHandler(sessions, tokens),
		Register:       command.NewRegisterHandler(b),
		Checkout:       command.NewCheckoutHandler(b, nil, 1),
		PostComment:    command.NewPostCommentHandler(b),
		SaveStock:      command.NewSaveStockHandler(b),
		RemoveStock:    command.NewRemoveStockHandler(b),
		CreateTent:     command.NewCreateTentHandler(b),
	}
	queries := QueryHandlers{
		GetCart:       query.NewGetCartHandler(),
		SessionStatus: query.NewSessionStatusHandler(),
		ListProducts:  query.NewListProductsHandler(b),
		ProductGrid:   query.NewProductGridHandler(b, 3),
		GetProduct:    query.NewGetProductHandler(b),
		OrderHistory:  query.NewOrderHistoryHandler(b),
		GetProfile:    query.NewGetProfileHandler(b, b, b),
		TentStock:     query.NewTentStockHandler(b, b),
	}

	config := DefaultMiddlewareConfig(tokens, time.Hour, limiter)
	config.EnableTracing = false
	handler := NewStorefrontHandler(commands, queries, sessions, fakeHealth{status: health},
		NewMetrics(prometheus.NewRegistry()), config)

	router := mux.NewRouter()
	RegisterMiddlewares(router, config)
	api := router.PathPrefix("/api").Subrouter()
	RegisterSessionMiddlewares(api, config)
	handler.RegisterRoutes(router, api)

	return &testServer{router: router, backend: b, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if token := rec.Header().Get(SessionTokenHeader); token != "" {
		s.token = token
	}

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (s *testServer) login(t *testing.T) {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/api/session/login", map[string]string{"email": "ana@uesb.br", "senha": "segredo"})
	require.Equal(t, http.StatusOK, status, env.Error)
}

func TestSessionIsIssuedAndReused(t *testing.T) {
	s := newTestServer(t, "healthy", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	token := rec.Header().Get(SessionTokenHeader)
	require.NotEmpty(t, token)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	sessionID, err := s.tokens.ValidateToken(token)
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get(SessionTokenHeader))

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var status query.SessionStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, sessionID, status.SessionID)
	assert.False(t, status.Logged)
}

func TestInvalidTokenStartsNewSession(t *testing.T) {
	s := newTestServer(t, "healthy", nil)
	s.token = "garbage"

	status, _ := s.do(t, http.MethodGet, "/api/cart", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.NotEqual(t, "garbage", s.token)
}

func TestCartFlow(t *testing.T) {
	s := newTestServer(t, "healthy", nil)

	status, _ := s.do(t, http.MethodPost, "/api/cart/items", map[string]int{"code": 7})
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodPost, "/api/cart/items", map[string]int{"code": 7, "quantity": 2})
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodPost, "/api/cart/items", map[string]int{"code": 8})
	require.Equal(t, http.StatusOK, status)

	status, env := s.do(t, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, status)
	var summary struct {
		Items []struct {
			Code     int `json:"code"`
			Quantity int `json:"quantity"`
		} `json:"items"`
		Count int    `json:"count"`
		Total string `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 4, summary.Count)
	assert.Equal(t, "40.5", summary.Total)
	require.Len(t, summary.Items, 2)
	assert.Equal(t, 3, summary.Items[0].Quantity)

	status, _ = s.do(t, http.MethodDelete, "/api/cart/items/8", nil)
	require.Equal(t, http.StatusOK, status)
	status, env = s.do(t, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Len(t, summary.Items, 1)

	status, _ = s.do(t, http.MethodDelete, "/api/cart", nil)
	require.Equal(t, http.StatusOK, status)
	_, env = s.do(t, http.MethodGet, "/api/cart", nil)
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Zero(t, summary.Count)
}

func TestAddToCartErrors(t *testing.T) {
	s := newTestServer(t, "healthy", nil)

	status, env := s.do(t, http.MethodPost, "/api/cart/items", map[string]int{"code": 99})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Produto não encontrado", env.Error)

	status, _ = s.do(t, http.MethodPost, "/api/cart/items", map[string]int{"code": 7, "quantity": -2})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodDelete, "/api/cart/items/abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t, "healthy", nil)

	status, _ := s.do(t, http.MethodPost, "/api/checkout", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env := s.do(t, http.MethodPost, "/api/session/login", map[string]string{"email": "ana@uesb.br", "senha": "errada"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	s.login(t)
	status, env = s.do(t, http.MethodPost, "/api/checkout", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, usecase.ErrEmptyCart.Error(), env.Error)

	s.do(t, http.MethodPost, "/api/cart/items", map[string]int{"code": 7, "quantity": 2})
	status, env = s.do(t, http.MethodPost, "/api/checkout", nil)
	require.Equal(t, http.StatusCreated, status, env.Error)

	var resp struct {
		Sale  domain.Sale `json:"sale"`
		Total string      `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "25", resp.Total)
	assert.Equal(t, "123", resp.Sale.UserCode)

	status, env = s.do(t, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, status)
	var history struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &history))
	assert.Equal(t, 1, history.Total)
}

func TestCheckoutBackendFailure(t *testing.T) {
	s := newTestServer(t, "healthy", nil)
	s.login(t)
	s.do(t, http.MethodPost, "/api/cart/items", map[string]int{"code": 8})

	s.backend.SalesErr = &backend.APIError{Status: 500, Payload: "stack trace"}
	status, env := s.do(t, http.MethodPost, "/api/checkout", nil)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "Checkout failed", env.Error)
}

func (s *testServer) sessionStatus(t *testing.T, token string) query.SessionStatus {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var st query.SessionStatus
	require.NoError(t, json.Unmarshal(env.Data, &st))
	return st
}

func TestLoginAndLogoutRotateSession(t *testing.T) {
	s := newTestServer(t, "healthy", nil)
	status, _ := s.do(t, http.MethodPost, "/api/cart/items", map[string]int{"code": 8})
	require.Equal(t, http.StatusOK, status)
	anonymous := s.token

	s.login(t)
	loggedIn := s.token
	assert.NotEqual(t, anonymous, loggedIn)

	st := s.sessionStatus(t, loggedIn)
	assert.True(t, st.Logged)
	assert.Equal(t, 1, st.CartCount)

	replayed := s.sessionStatus(t, anonymous)
	assert.False(t, replayed.Logged)
	assert.Zero(t, replayed.CartCount)

	status, _ = s.do(t, http.MethodPost, "/api/session/logout", nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotEqual(t, loggedIn, s.token)

	st = s.sessionStatus(t, s.token)
	assert.False(t, st.Logged)
	assert.Equal(t, 1, st.CartCount)
	assert.False(t, s.sessionStatus(t, loggedIn).Logged)
}

func TestProductsEndpoints(t *testing.T) {
	s := newTestServer(t, "healthy", nil)

	status, env := s.do(t, http.MethodGet, "/api/products?q=bolo", nil)
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Products []domain.Product `json:"products"`
		Total    int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 1, list.Total)

	status, env = s.do(t, http.MethodGet, "/api/products/grid?columns=2&ticks=1", nil)
	require.Equal(t, http.StatusOK, status)
	var grid struct {
		Columns []json.RawMessage `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &grid))
	assert.Len(t, grid.Columns, 2)

	status, _ = s.do(t, http.MethodGet, "/api/products/grid?columns=x", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = s.do(t, http.MethodGet, "/api/products/7", nil)
	require.Equal(t, http.StatusOK, status)
	var detail struct {
		Product  domain.Product `json:"product"`
		Comments []interface{}  `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "Bolo de milho", detail.Product.Name)
	assert.NotNil(t, detail.Comments)
}

func TestCommentRequiresLogin(t *testing.T) {
	s := newTestServer(t, "healthy", nil)

	status, _ := s.do(t, http.MethodPost, "/api/products/7/comments", map[string]string{"text": "bom"})
	assert.Equal(t, http.StatusUnauthorized, status)

	s.login(t)
	status, _ = s.do(t, http.MethodPost, "/api/products/7/comments", map[string]string{"text": "bom"})
	assert.Equal(t, http.StatusCreated, status)
	require.Len(t, s.backend.Posted, 1)
	assert.Equal(t, "123", s.backend.Posted[0].CPFUsuario)
}

func TestProfileStockFlow(t *testing.T) {
	s := newTestServer(t, "healthy", nil)
	s.login(t)

	status, env := s.do(t, http.MethodPut, "/api/profile/tents/1/stock/7", map[string]int{"quantity": 5})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, "Stock updated", env.Message)

	status, _ = s.do(t, http.MethodPut, "/api/profile/tents/9/stock/7", map[string]int{"quantity": 5})
	assert.Equal(t, http.StatusNotFound, status)

	status, env = s.do(t, http.MethodGet, "/api/profile/tents/1/stock", nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.JSONEq(t, "[]", string(env.Data), "backend stock is read, not the local edit")

	status, _ = s.do(t, http.MethodGet, "/api/profile/tents/9/stock", nil)
	assert.Equal(t, http.StatusNotFound, status)

	s.backend.StallsErr = errors.New("offline")
	status, env = s.do(t, http.MethodDelete, "/api/profile/tents/1/stock/7", nil)
	require.Equal(t, http.StatusOK, status)
	var result command.StockResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.False(t, result.Synced)
	assert.Empty(t, result.Tent.Stock)

	s.backend.StallsErr = nil
	status, _ = s.do(t, http.MethodPost, "/api/profile/tents", map[string]string{"name": "Barraca nova"})
	assert.Equal(t, http.StatusCreated, status)

	status, env = s.do(t, http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, status)
	var profile query.Profile
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Len(t, profile.Tents, 2)
}

func TestRegisterEndpoint(t *testing.T) {
	s := newTestServer(t, "healthy", nil)

	status, _ := s.do(t, http.MethodPost, "/api/users", map[string]string{"cpf": "9", "nome": "Bia", "email": "bia@uesb.br", "senha": "1234"})
	assert.Equal(t, http.StatusCreated, status)

	status, _ = s.do(t, http.MethodPost, "/api/users", map[string]string{"cpf": "9", "nome": "Bia", "email": "bia@uesb.br", "senha": "1234"})
	assert.Equal(t, http.StatusConflict, status)

	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, "healthy", nil)
	status, env := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	s = newTestServer(t, "unhealthy", nil)
	status, _ = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{usecase.ErrNotLoggedIn, http.StatusUnauthorized},
		{fmt.Errorf("login: %w", backend.ErrInvalidCredentials), http.StatusUnauthorized},
		{usecase.ErrEmptyCart, http.StatusBadRequest},
		{usecase.Invalid("code", "is required"), http.StatusBadRequest},
		{usecase.ErrTentNotFound, http.StatusNotFound},
		{fmt.Errorf("fetch: %w", backend.ErrCircuitOpen), http.StatusServiceUnavailable},
		{fmt.Errorf("fetch: %w", &backend.APIError{Status: 409}), http.StatusConflict},
		{&backend.APIError{Status: 503}, http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _ := errorStatus(tt.err, "failed")
		assert.Equal(t, tt.status, status, tt.err.Error())
	}
}

func TestRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	assert.Nil(t, NewRateLimiter(nil, 10, time.Minute))
	assert.Nil(t, NewRateLimiter(client, 0, time.Minute))

	s := newTestServer(t, "healthy", NewRateLimiter(client, 2, time.Minute))
	status, _ := s.do(t, http.MethodGet, "/api/cart", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodGet, "/api/cart", nil)
	assert.Equal(t, http.StatusOK, status)
	status, env := s.do(t, http.MethodGet, "/api/cart", nil)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Contains(t, env.Error, "Too many requests")

	status, _ = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRateLimiterFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	limiter := NewRateLimiter(client, 1, time.Minute)
	mr.Close()

	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
