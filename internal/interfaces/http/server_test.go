package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/furnishop/furniture-backend/internal/config"
	"github.com/furnishop/furniture-backend/internal/domain/analytics"
	"github.com/furnishop/furniture-backend/internal/domain/cart"
	"github.com/furnishop/furniture-backend/internal/domain/news"
	"github.com/furnishop/furniture-backend/internal/domain/order"
	"github.com/furnishop/furniture-backend/internal/domain/product"
	"github.com/furnishop/furniture-backend/internal/domain/user"
	"github.com/furnishop/furniture-backend/internal/infrastructure/database/memory"
	"github.com/furnishop/furniture-backend/internal/interfaces/http/routes"
	"github.com/furnishop/furniture-backend/internal/pkg/docstore"
	"github.com/furnishop/furniture-backend/internal/pkg/logger"
	"github.com/furnishop/furniture-backend/internal/pkg/pdf"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type revocations struct {
	mu  sync.Mutex
	ids map[string]bool
}

func (r *revocations) Revoke(ctx context.Context, id string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids[id] = true
	return nil
}

func (r *revocations) IsRevoked(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ids[id], nil
}

type testAPI struct {
	t      *testing.T
	store  *memory.Store
	users  *user.Service
	server *Server
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "furniture-backend", Environment: "test", Timezone: "UTC"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-that-is-at-least-32-characters",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{
			BcryptCost:         bcrypt.MinCost,
			CORSAllowedOrigins: []string{"http://localhost:3000"},
			CORSAllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
			CORSAllowedHeaders: []string{"Authorization", "Content-Type"},
		},
		Server:  config.ServerConfig{RequestTimeout: 5 * time.Second, MaxBodyBytes: 1 << 20},
		Cart:    config.CartConfig{MaxRetries: 3},
		Invoice: config.InvoiceConfig{CompanyName: "Furnishop", CurrencySymbol: "$"},
	}
}

func newTestAPI(t *testing.T, checks map[string]HealthCheck) *testAPI {
	t.Helper()
	cfg := testConfig()
	log := logger.Discard()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&user.Credential{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store := memory.NewStore()
	creds := user.NewCredentialStore(db)
	revoked := &revocations{ids: map[string]bool{}}
	users := user.NewService(store, creds, revoked, log, cfg)
	carts := cart.NewService(store, product.NewService(store, log), log, cfg)
	orders := order.NewService(store, carts, nil, log)

	services := &routes.Services{
		Users:       users,
		UserAdmin:   user.NewAdminService(store, creds, log),
		Products:    product.NewService(store, log),
		Categories:  product.NewCategoryService(store, log),
		Carts:       carts,
		Orders:      orders,
		News:        news.NewService(store, log),
		Analytics:   analytics.NewService(store, orders, log, cfg),
		Access:      analytics.NewAccessTracker(store, log),
		Invoices:    pdf.NewService(cfg),
		Revocations: revoked,
	}

	if checks == nil {
		checks = map[string]HealthCheck{"store": store.Ping}
	}

	return &testAPI{
		t:      t,
		store:  store,
		users:  users,
		server: NewServer(cfg, log, services, nil, checks),
	}
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func data(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	d, ok := decode(t, w)["data"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	return d
}

func (a *testAPI) register(name, email string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     name,
		"email":    email,
		"password": "Walnut2024",
		"address":  "221B Baker St",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return data(a.t, w)["access_token"].(string)
}

func (a *testAPI) admin() string {
	a.t.Helper()
	_, err := a.users.EnsureAdmin(context.Background(), "Root", "root@furnishop.test", "Walnut2024")
	require.NoError(a.t, err)
	w := a.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "root@furnishop.test", "password": "Walnut2024"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return data(a.t, w)["access_token"].(string)
}

// createProduct posts price as minor units (int) or a decimal string
func (a *testAPI) createProduct(token, name, category string, price interface{}) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/admin/products", token, gin.H{
		"name":     name,
		"price":    price,
		"quantity": 10,
		"category": category,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return data(a.t, w)["id"].(string)
}

func TestShoppingFlow(t *testing.T) {
	api := newTestAPI(t, nil)
	admin := api.admin()
	ada := api.register("Ada", "ada@example.com")
	bob := api.register("Bob", "bob@example.com")

	chair := api.createProduct(admin, "Oak Chair", "Chair", 100)
	lamp := api.createProduct(admin, "Steel Lamp", "Lighting", "0.50")

	w := api.do(http.MethodGet, "/api/v1/products?category=Chair", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	products := decode(t, w)["data"].([]interface{})
	require.Len(t, products, 1)
	assert.Equal(t, "Oak Chair", products[0].(map[string]interface{})["name"])

	w = api.do(http.MethodGet, "/api/v1/products?category=All&search=lamp", "", nil)
	products = decode(t, w)["data"].([]interface{})
	require.Len(t, products, 1)
	assert.Equal(t, "Steel Lamp", products[0].(map[string]interface{})["name"])

	w = api.do(http.MethodPost, "/api/v1/cart/items", ada, gin.H{"productId": chair, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = api.do(http.MethodPost, "/api/v1/cart/items", ada, gin.H{
		"productId": lamp, "name": "Free Lamp", "price": 1, "quantity": 1,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	totals := data(t, w)["totals"].(map[string]interface{})
	assert.Equal(t, float64(250), totals["total_price"])
	lines := data(t, w)["cart"].(map[string]interface{})["products"].([]interface{})
	require.Len(t, lines, 2)
	assert.Equal(t, "Steel Lamp", lines[1].(map[string]interface{})["name"])
	assert.Equal(t, float64(50), lines[1].(map[string]interface{})["price"])
	assert.Equal(t, float64(3), totals["total_quantity"])

	w = api.do(http.MethodPost, "/api/v1/orders/checkout", ada, gin.H{
		"address": "221B Baker St", "paymentMethod": "Cash on Delivery",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	placed := data(t, w)
	assert.Equal(t, float64(250), placed["total_amount"])
	assert.Equal(t, order.StatusPending, placed["status"])
	assert.Len(t, placed["products"], 2)
	orderID := placed["id"].(string)

	w = api.do(http.MethodGet, "/api/v1/cart", ada, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, data(t, w)["cart"])

	w = api.do(http.MethodGet, "/api/v1/orders", ada, nil)
	assert.Len(t, decode(t, w)["data"], 1)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/v1/orders/"+orderID, bob, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/orders/"+orderID, admin, nil).Code)

	w = api.do(http.MethodGet, "/api/v1/orders/"+orderID+"/invoice/preview", ada, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Oak Chair")
	assert.Contains(t, w.Body.String(), "$2.50")

	w = api.do(http.MethodPost, "/api/v1/orders/checkout", ada, gin.H{
		"address": "221B Baker St", "paymentMethod": "PayPal",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, order.ErrEmptyCart.Error(), decode(t, w)["error"])

	w = api.do(http.MethodGet, "/api/v1/admin/analytics/profit", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	profit := decode(t, w)
	assert.Equal(t, "no profit data", profit["message"])
	assert.Nil(t, profit["data"])

	w = api.do(http.MethodGet, "/api/v1/admin/analytics/chart", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{float64(250)}, data(t, w)["amounts"])

	assert.Equal(t, http.StatusOK, api.do(http.MethodPut, "/api/v1/admin/orders/"+orderID+"/accept", admin, nil).Code)
	w = api.do(http.MethodGet, "/api/v1/admin/orders/recent?limit=1", admin, nil)
	recent := decode(t, w)["data"].([]interface{})
	require.Len(t, recent, 1)
	assert.Equal(t, order.StatusAccepted, recent[0].(map[string]interface{})["status"])
}

func TestCartRemovals(t *testing.T) {
	api := newTestAPI(t, nil)
	ada := api.register("Ada", "ada@example.com")
	require.NoError(t, api.store.Set(context.Background(), product.Collection, "A", docstore.Fields{
		"name": "Oak Chair", "price": int64(100), "category": "Chair",
	}))

	w := api.do(http.MethodPost, "/api/v1/cart/items", ada, gin.H{"productId": "A", "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPost, "/api/v1/cart/items", ada, gin.H{"productId": "ghost", "quantity": 1}).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/v1/cart/items", ada, gin.H{"productId": "A", "quantity": 1001}).Code)

	w = api.do(http.MethodDelete, "/api/v1/cart/items/missing", ada, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), data(t, w)["totals"].(map[string]interface{})["total_quantity"])

	w = api.do(http.MethodDelete, "/api/v1/cart/items/A", ada, nil)
	assert.Equal(t, float64(1), data(t, w)["totals"].(map[string]interface{})["total_quantity"])

	w = api.do(http.MethodDelete, "/api/v1/cart/items/A/all", ada, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, data(t, w)["cart"])

	assert.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/api/v1/cart", ada, nil).Code)

	w = api.do(http.MethodPost, "/api/v1/cart/items", ada, gin.H{"productId": "A", "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w), "details")
}

func TestAccessControl(t *testing.T) {
	api := newTestAPI(t, nil)
	ada := api.register("Ada", "ada@example.com")

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/v1/cart", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/v1/admin/orders", ada, nil).Code)

	w := api.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "ada@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "Ada", "email": "ada@example.com", "password": "Walnut2024"})
	assert.Equal(t, http.StatusConflict, w.Code)

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/users/profile", ada, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/v1/access", ada, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/v1/auth/logout", ada, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/v1/users/profile", ada, nil).Code)
}

func TestNewsComments(t *testing.T) {
	api := newTestAPI(t, nil)
	admin := api.admin()
	ada := api.register("Ada", "ada@example.com")
	bob := api.register("Bob", "bob@example.com")

	w := api.do(http.MethodPost, "/api/v1/admin/news", admin, gin.H{
		"title": "Spring sale", "author": "Furnishop", "detail": "Everything 10% off",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	newsID := data(t, w)["id"].(string)

	w = api.do(http.MethodPost, "/api/v1/news/"+newsID+"/comments", ada, gin.H{"comment": "Lovely"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	comment := data(t, w)
	assert.Equal(t, "Ada", comment["user_name"])
	commentPath := "/api/v1/news/" + newsID + "/comments/" + comment["id"].(string)

	w = api.do(http.MethodGet, "/api/v1/news/"+newsID+"/comments", "", nil)
	assert.Len(t, decode(t, w)["data"], 1)

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, commentPath, bob, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodDelete, commentPath, ada, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, commentPath, ada, nil).Code)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/v1/news/missing", "", nil).Code)
}

func TestCatalogUnavailable(t *testing.T) {
	api := newTestAPI(t, nil)
	api.store.FailOn("query", errors.New("offline"))

	w := api.do(http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, []interface{}{}, body["data"])
	assert.NotEmpty(t, body["warning"])
}

func TestHealthAndReady(t *testing.T) {
	api := newTestAPI(t, map[string]HealthCheck{
		"store": func(ctx context.Context) error { return nil },
		"redis": func(ctx context.Context) error { return errors.New("connection refused") },
	})

	w := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, map[string]interface{}{"store": "healthy", "redis": "unhealthy"}, body["components"])

	w = api.do(http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
