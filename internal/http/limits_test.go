package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/repos"
)

func TestBodySizeLimit(t *testing.T) {
	app, _ := newTestApp(t)

	oversize := bytes.Repeat([]byte("A"), (1<<20)+10)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(oversize))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	// fiber may return an error instead of a response when the body is too large
	if err != nil {
		if strings.Contains(err.Error(), "body size exceeds") || strings.Contains(err.Error(), "too large") {
			return
		}
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestCheckoutRateLimit(t *testing.T) {
	app, _ := newTestApp(t)

	var last int
	for i := 0; i < 11; i++ {
		resp := do(t, app, http.MethodPost, "/api/v1/checkout", deliveryOrder, "rate-sid")
		last = resp.StatusCode
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

// metaDown fails reads of the menu version document once down is set.
type metaDown struct {
	repos.DocumentStore
	down *atomic.Bool
}

func (s metaDown) Get(ctx context.Context, collection, id string, out any) error {
	if collection == repos.CollectionMeta && s.down.Load() {
		return errors.New("db timeout: secret trace")
	}
	return s.DocumentStore.Get(ctx, collection, id, out)
}

func TestErrorsDoNotLeakInternals(t *testing.T) {
	store := metaDown{DocumentStore: memStore(t), down: &atomic.Bool{}}
	app, _ := newApp(t, store)
	sid := unlock(t, app)
	logs := captureLogs(t)
	store.down.Store(true)

	resp := do(t, app, http.MethodPost, "/admin/publish?force=true", nil, sid)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(b), "Something went wrong")
	assert.NotContains(t, string(b), "secret")

	errs := logs.FilterMessage("admin.menu.publish.fail").All()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].ContextMap()["error"], "secret trace")
}
