package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/B1acB1rd/SolSwap/internal/util"
)

func TestWebhookSignatureMiddleware(t *testing.T) {
	const secret = "test-webhook-secret"
	body := `{"orderId":"abc","confirmed":true}`

	echoBody := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		w.Write(got)
	})

	t.Run("bypasses verification when secret is empty", func(t *testing.T) {
		m := NewWebhookSignatureMiddleware("")
		req := httptest.NewRequest(http.MethodPost, "/internal/deposits/confirm", strings.NewReader(body))
		rec := httptest.NewRecorder()

		m.Handler(echoBody).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects missing signature header", func(t *testing.T) {
		m := NewWebhookSignatureMiddleware(secret)
		req := httptest.NewRequest(http.MethodPost, "/internal/deposits/confirm", strings.NewReader(body))
		rec := httptest.NewRecorder()

		m.Handler(echoBody).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects invalid signature", func(t *testing.T) {
		m := NewWebhookSignatureMiddleware(secret)
		req := httptest.NewRequest(http.MethodPost, "/internal/deposits/confirm", strings.NewReader(body))
		req.Header.Set("X-Webhook-Signature", "deadbeef")
		rec := httptest.NewRecorder()

		m.Handler(echoBody).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("accepts valid signature and preserves body", func(t *testing.T) {
		m := NewWebhookSignatureMiddleware(secret)
		req := httptest.NewRequest(http.MethodPost, "/internal/deposits/confirm", strings.NewReader(body))
		req.Header.Set("X-Webhook-Signature", util.HmacSHA256(secret, body))
		rec := httptest.NewRecorder()

		m.Handler(echoBody).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, body, rec.Body.String())
	})
}

func TestAdminAuthMiddleware(t *testing.T) {
	hash, err := util.HashPassword("super-admin-token")
	require.NoError(t, err)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("forbidden when hash not configured", func(t *testing.T) {
		m := NewAdminAuthMiddleware("")
		req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
		rec := httptest.NewRecorder()

		m.Handler(ok).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("rejects missing bearer token", func(t *testing.T) {
		m := NewAdminAuthMiddleware(hash)
		req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
		rec := httptest.NewRecorder()

		m.Handler(ok).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects wrong token", func(t *testing.T) {
		m := NewAdminAuthMiddleware(hash)
		req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()

		m.Handler(ok).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("accepts correct token", func(t *testing.T) {
		m := NewAdminAuthMiddleware(hash)
		req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
		req.Header.Set("Authorization", "Bearer super-admin-token")
		rec := httptest.NewRecorder()

		m.Handler(ok).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestBodyLimitMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("rejects oversized content length", func(t *testing.T) {
		m := NewBodyLimitMiddleware(16)
		req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(strings.Repeat("a", 64)))
		rec := httptest.NewRecorder()

		m.Handler(ok).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("passes small bodies", func(t *testing.T) {
		m := NewBodyLimitMiddleware(16)
		req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader("short"))
		rec := httptest.NewRecorder()

		m.Handler(ok).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
