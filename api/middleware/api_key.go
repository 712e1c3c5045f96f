package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/boutiquenoire/storefront-backend/api/responses"
	pkgerrors "github.com/boutiquenoire/storefront-backend/pkg/errors"
	"github.com/boutiquenoire/storefront-backend/pkg/logger"
)

const apiKeyHeader = "X-API-Key"

// APIKey guards admin routes with a static shared key. An empty configured
// key rejects every request.
func APIKey(expected string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := strings.TrimSpace(r.Header.Get(apiKeyHeader))
			if expected == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or missing API key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
