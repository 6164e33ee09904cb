package log_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	applog "storefront/internal/log"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	old := applog.SetLogger(zap.New(core))
	t.Cleanup(func() { applog.SetLogger(old) })
	return logs
}

func TestNew(t *testing.T) {
	l, err := applog.New("production", "warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l, err = applog.New("development", "")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	_, err = applog.New("production", "loud")
	assert.Error(t, err)
}

func TestRequestFields(t *testing.T) {
	logs := observe(t)

	app := fiber.New()
	app.Post("/admin/products", func(c *fiber.Ctx) error {
		c.Locals("requestid", "req-1")
		applog.Audit(c, "admin.product.create", map[string]any{"product": "p1"})
		applog.Security(c, "access.denied.admin", nil)
		applog.Error(c, "admin.menu.publish.fail", errors.New("store down"), nil)
		return c.SendStatus(fiber.StatusNoContent)
	})
	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/admin/products", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	entries := logs.All()
	require.Len(t, entries, 3)

	audit := entries[0]
	assert.Equal(t, "admin.product.create", audit.Message)
	assert.Equal(t, zapcore.InfoLevel, audit.Level)
	ctx := audit.ContextMap()
	assert.Equal(t, "POST", ctx["method"])
	assert.Equal(t, "/admin/products", ctx["path"])
	assert.Equal(t, "req-1", ctx["req_id"])
	assert.Equal(t, map[string]any{"product": "p1", "kind": "audit"}, ctx["fields"])

	sec := entries[1]
	assert.Equal(t, zapcore.WarnLevel, sec.Level)
	assert.Equal(t, map[string]any{"kind": "security"}, sec.ContextMap()["fields"])

	failed := entries[2]
	assert.Equal(t, zapcore.ErrorLevel, failed.Level)
	assert.Equal(t, "store down", failed.ContextMap()["error"])
}

func TestInfo_WithoutRequest(t *testing.T) {
	logs := observe(t)
	applog.Info(nil, "menu.load", nil)

	require.Equal(t, 1, logs.FilterMessage("menu.load").Len())
	_, hasFields := logs.All()[0].ContextMap()["fields"]
	assert.False(t, hasFields)
}
