package relay

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// Fixed cross-origin policy. It is not configurable.
var (
	allowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	allowedHeaders = []string{"Content-Type"}
)

// permissiveCORS runs go-chi/cors for preflight negotiation and then stamps
// the fixed allow headers on every response, including requests without an
// Origin header. Preflights pass through to the router, which answers OPTIONS
// with an empty 200.
func permissiveCORS() func(http.Handler) http.Handler {
	c := cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     allowedMethods,
		AllowedHeaders:     allowedHeaders,
		OptionsPassthrough: true,
	})

	methods := strings.Join(allowedMethods, ", ")
	headers := strings.Join(allowedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		stamped := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			next.ServeHTTP(w, r)
		})
		return c(stamped)
	}
}
