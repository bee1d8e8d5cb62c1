package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feirinha-uesb/storefront/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler, cache *CatalogCache) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", Timeout: 2 * time.Second}, nil, cache)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestFetchProductsNormalizes(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "true", r.Header.Get("ngrok-skip-browser-warning"))
		w.Write([]byte(`[{"code":7,"name":"Queijo","price":"12.5","imagem":"abc"},{"code":8,"name":"Mel","price":null}]`))
	}), nil)

	products, err := client.FetchProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 7, products[0].ID)
	assert.Equal(t, 12.5, products[0].Price)
	assert.Equal(t, "data:image/jpeg;base64,abc", *products[0].ImageURL)
	assert.Equal(t, 0.0, products[1].Price)
	assert.Nil(t, products[1].ImageURL)
}

func TestRequestFailureCarriesStatusAndPayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/1":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"erro": "ID inválido"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}), nil)

	_, err := client.FetchProductByID(context.Background(), 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, `{"erro": "ID inválido"}`, apiErr.Error())

	_, err = client.FetchProducts(context.Background())
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "request failed with status 500", apiErr.Error())
}

func TestFetchUserProfileMissingIsNil(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/usuarios/123" {
			writeJSON(w, http.StatusOK, domain.BackendUser{CPF: "123", Nome: "Ana", Senha: "x"})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}), nil)

	profile, err := client.FetchUserProfile(context.Background(), "123")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Ana", profile.Name)

	profile, err = client.FetchUserProfile(context.Background(), "404")
	assert.NoError(t, err)
	assert.Nil(t, profile)
}

func TestLogin(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/usuarios/login", r.URL.Path)

		var body loginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Email == "ana@uesb.br" && body.Senha == "segredo" {
			writeJSON(w, http.StatusOK, domain.BackendUser{CPF: "123", Nome: "Ana", Email: body.Email})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}), nil)

	profile, err := client.Login(context.Background(), "ana@uesb.br", "segredo")
	require.NoError(t, err)
	assert.Equal(t, "123", profile.CPF)

	_, err = client.Login(context.Background(), "ana@uesb.br", "errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestFetchProductCommentsJoinsUsers(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/comentarios/produto/7":
			w.Write([]byte(`[{"id":1,"texto":"Bom","codProd":7,"cpfUsuario":"123","dataPostagem":"2025-11-28T10:00:00"}]`))
		case "/usuarios":
			w.Write([]byte(`[{"cpf":"123","nome":"Ana"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}), nil)

	comments, err := client.FetchProductComments(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Ana", comments[0].UserName)
	require.NotNil(t, comments[0].PostedAt)
	assert.Equal(t, 28, comments[0].PostedAt.Day())
}

func TestFetchProductCommentsFailsWhenUsersFail(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/usuarios" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}), nil)

	_, err := client.FetchProductComments(context.Background(), 7)
	assert.Error(t, err)
}

func TestFetchUserTentsFiltersByOwner(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"code":1,"cpfHolder":"123","name":"A"},{"code":2,"cpfHolder":"456","name":"B"}]`))
	}), nil)

	tents, err := client.FetchUserTents(context.Background(), "123")

	require.NoError(t, err)
	require.Len(t, tents, 1)
	assert.Equal(t, "A", tents[0].Name)
}

func TestCreateSaleSendsWireShape(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []interface{}{2025.0, 11.0, 28.0}, body["saleDate"])
		assert.Equal(t, "123", body["userCode"])
		assert.Equal(t, 1.0, body["tentCode"])
		writeJSON(w, http.StatusCreated, map[string]interface{}{"id": 42})
	}), nil)

	sale := domain.Sale{
		SaleDate: domain.LocalDate{Year: 2025, Month: 11, Day: 28},
		TentCode: 1,
		UserCode: "123",
		Items:    []domain.SaleItem{{ProductCode: 7, SaleQuantity: 2, SalePrice: 12.5}},
	}
	created, err := client.CreateSale(context.Background(), sale)

	require.NoError(t, err)
	assert.Equal(t, 42, created.ID)
	assert.Len(t, created.Items, 1)
}

func TestBreakerIgnoresClientErrorsAndOpensOnServerErrors(t *testing.T) {
	var hits int32
	status := int32(http.StatusNotFound)
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(int(atomic.LoadInt32(&status)))
	}), nil)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_, _ = client.FetchProductByID(ctx, 1)
	}
	assert.Equal(t, StateClosed, client.Breaker().State())

	atomic.StoreInt32(&status, http.StatusInternalServerError)
	for i := 0; i < 5; i++ {
		_, _ = client.FetchProductByID(ctx, 1)
	}
	assert.Equal(t, StateOpen, client.Breaker().State())

	before := atomic.LoadInt32(&hits)
	_, err := client.FetchProductByID(ctx, 1)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, before, atomic.LoadInt32(&hits))
}

func TestCatalogCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	var hits int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`[{"code":7,"name":"Queijo","price":12.5}]`))
	}), NewCatalogCache(rdb, time.Minute))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		products, err := client.FetchProducts(ctx)
		require.NoError(t, err)
		require.Len(t, products, 1)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.True(t, mr.Exists(catalogCachePrefix+"/products"))

	require.NoError(t, client.InvalidateCatalog(ctx))
	assert.False(t, mr.Exists(catalogCachePrefix+"/products"))

	_, err := client.FetchProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestWritesInvalidateCatalogCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	var mu sync.Mutex
	tents := []domain.BackendTent{{Code: 1, CPFHolder: "123", Name: "Barraca da Ana"}}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/tents":
			writeJSON(w, http.StatusOK, tents)
		case r.Method == http.MethodPost && r.URL.Path == "/tents":
			var tent domain.BackendTent
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&tent))
			tent.Code = len(tents) + 1
			tents = append(tents, tent)
			writeJSON(w, http.StatusCreated, tent)
		case r.Method == http.MethodPost && r.URL.Path == "/usuarios/login":
			writeJSON(w, http.StatusOK, domain.BackendUser{CPF: "123"})
		default:
			w.WriteHeader(http.StatusOK)
		}
	}), NewCatalogCache(rdb, time.Minute))
	ctx := context.Background()

	owned, err := client.FetchUserTents(ctx, "123")
	require.NoError(t, err)
	require.Len(t, owned, 1)

	_, err = client.Login(ctx, "ana@uesb.br", "senha")
	require.NoError(t, err)
	assert.True(t, mr.Exists(catalogCachePrefix+"/tents"))

	_, err = client.CreateTent(ctx, domain.BackendTent{CPFHolder: "123", Name: "Barraca 2"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(catalogCachePrefix+"/tents"))

	owned, err = client.FetchUserTents(ctx, "123")
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	require.NoError(t, client.SaveStock(ctx, 1, 7, 3))
	assert.False(t, mr.Exists(catalogCachePrefix+"/tents"))
}

func TestCatalogCacheSkipsUsers(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}), NewCatalogCache(rdb, time.Minute))

	_, err := client.FetchBackendUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, mr.Keys())
}

func TestNewCatalogCacheDisabled(t *testing.T) {
	assert.Nil(t, NewCatalogCache(nil, time.Minute))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	assert.Nil(t, NewCatalogCache(rdb, 0))

	var disabled *CatalogCache
	assert.NoError(t, disabled.Invalidate(context.Background()))
}

func TestCheckHealth(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}), nil)

	health := client.CheckHealth(context.Background())
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, StateClosed, health.Circuit)
}
