package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/repos"
)

const adminCode = "frango123"

var testConfig = config.Config{
	Store: config.StoreConfig{WriteConcurrency: 4},
	Shop: config.ShopConfig{
		Name:          "Toca do Frango",
		WhatsAppPhone: "5584999397770",
		DeliveryFee:   decimal.NewFromInt(5),
		EstimatedTime: "40-60 min",
	},
	Admin: config.AdminConfig{Code: adminCode, SessionTTL: time.Hour},
}

func testMenu() ([]domain.Product, []domain.Category) {
	return []domain.Product{
			{ID: "frango", Name: "Frango Assado Inteiro", Price: 35, CategoryID: "frangos", Available: true},
			{ID: "meio", Name: "Meio Frango Assado", Price: 20, CategoryID: "frangos", Available: true, HasStockControl: true, Stock: 2},
			{ID: "refri", Name: "Refrigerante Lata", Price: 5, CategoryID: "bebidas", Available: true},
			{ID: "suco", Name: "Suco Natural", Price: 7, CategoryID: "bebidas", Available: false},
		}, []domain.Category{
			{ID: "frangos", Name: "Frangos"},
			{ID: "bebidas", Name: "Bebidas"},
		}
}

func memStore(t *testing.T) *repos.SQLiteStore {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repos.NewSQLiteStore(db)
}

// newApp builds the full app over store, seeded with testMenu and loaded.
func newApp(t *testing.T, store repos.DocumentStore) (*fiber.App, *handlers.Deps) {
	t.Helper()
	ctx := context.Background()
	products, categories := testMenu()
	require.NoError(t, repos.NewMenuRepo(store).Publish(ctx, products, categories, 1))

	deps, err := handlers.NewDeps(store, testConfig, nil, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.NoError(t, deps.Menu.Load(ctx))

	app := handlers.NewApp(deps, handlers.AppOptions{
		Views:             html.New("../../web/templates", ".html"),
		RequestsPerMinute: 1000,
	})
	return app, deps
}

func newTestApp(t *testing.T) (*fiber.App, *handlers.Deps) {
	t.Helper()
	return newApp(t, memStore(t))
}

func do(t *testing.T, app *fiber.App, method, path string, body any, sid string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func sidFrom(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			return c.Value
		}
	}
	return ""
}

// unlock opens an admin session and returns its sid.
func unlock(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp := do(t, app, http.MethodPost, "/admin/unlock", map[string]string{"code": adminCode}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sid := sidFrom(resp)
	require.NotEmpty(t, sid)
	return sid
}

func captureLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	old := applog.SetLogger(zap.New(core))
	t.Cleanup(func() { applog.SetLogger(old) })
	return logs
}

type cartResponse struct {
	Lines []struct {
		Product  domain.Product  `json:"product"`
		Quantity int             `json:"quantity"`
		Total    decimal.Decimal `json:"total"`
	} `json:"lines"`
	ItemCount   int             `json:"itemCount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
}

type errorResponse struct {
	Error string `json:"error"`
}
