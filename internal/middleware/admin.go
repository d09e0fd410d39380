package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/B1acB1rd/SolSwap/internal/util"
)

// AdminAuthMiddleware guards operator endpoints with a static bearer token
// checked against a bcrypt hash from configuration.
type AdminAuthMiddleware struct {
	tokenHash string
}

func NewAdminAuthMiddleware(tokenHash string) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{tokenHash: tokenHash}
}

func (m *AdminAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.tokenHash == "" {
			log.Warn().Msg("admin endpoint disabled: ADMIN_TOKEN_HASH is not configured")
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error": "Admin access is not configured",
			})
			return
		}

		token := extractBearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Missing bearer token",
			})
			return
		}

		if !util.CheckPasswordHash(token, m.tokenHash) {
			log.Warn().Str("remoteAddr", r.RemoteAddr).Msg("admin auth: invalid token")
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Invalid token",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
