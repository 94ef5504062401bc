package records

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the record endpoints, to be mounted at /data.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{uniqueCode}", h.Get)
	r.Post("/{uniqueCode}", h.Create)
	return r
}
