package mcp

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// APIKeyMiddleware rejects requests that do not carry apiKey in the X-API-Key
// header, a Bearer token or the api_key query parameter, checked in that order.
func APIKeyMiddleware(apiKey string, logger *zap.Logger, next http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if subtle.ConstantTimeCompare([]byte(providedKey(r)), []byte(apiKey)) != 1 {
			logger.Warn("rejected unauthenticated request",
				zap.String("remote", r.RemoteAddr),
				zap.String("path", r.URL.Path))
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func providedKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && token != "" {
		return token
	}
	return r.URL.Query().Get("api_key")
}
