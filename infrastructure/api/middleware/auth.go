package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyHeader is the header carrying the client API key.
const APIKeyHeader = "X-API-KEY"

// APIKeyAuth returns a middleware that rejects requests without a valid API
// key. With no configured keys, authentication is disabled and every request
// passes through.
func APIKeyAuth(keys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(keys) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(APIKeyHeader)
			for _, key := range keys {
				if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}

			WriteJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "invalid or missing API key",
			})
		})
	}
}
