// Package apicors provides CORS middleware for the JSON API.
//
// The API carries no cookies, so any origin may call it unless the
// deployment restricts origins with MiddlewareWithOrigins.
package apicors

import (
	"net/http"
)

const (
	allowMethods  = "GET, POST, OPTIONS"
	allowHeaders  = "Authorization, Content-Type, Accept, X-Request-ID"
	exposeHeaders = "X-Request-ID"
	maxAge        = "86400" // 24 hours
)

// Middleware returns CORS middleware that allows any origin.
//
// Preflight OPTIONS requests are answered with 204 and never reach the
// wrapped handler.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			setCommon(w)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// MiddlewareWithOrigins returns CORS middleware that only allows specific origins.
//
// Usage:
//
//	r.Use(apicors.MiddlewareWithOrigins("https://map.example.com"))
func MiddlewareWithOrigins(allowedOrigins ...string) func(http.Handler) http.Handler {
	originSet := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Origin")
			if origin := r.Header.Get("Origin"); origin != "" {
				// Disallowed origins get no CORS headers and the browser blocks them.
				if _, allowed := originSet[origin]; allowed {
					w.Header().Set("Access-Control-Allow-Origin", origin)
				}
			}
			setCommon(w)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func setCommon(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Methods", allowMethods)
	h.Set("Access-Control-Allow-Headers", allowHeaders)
	h.Set("Access-Control-Expose-Headers", exposeHeaders)
	h.Set("Access-Control-Max-Age", maxAge)
}

// FromOrigins picks Middleware when origins is empty and
// MiddlewareWithOrigins otherwise.
func FromOrigins(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return Middleware()
	}
	return MiddlewareWithOrigins(origins...)
}
