package accounts

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the account endpoints:
//   - POST /signup
//   - POST /signin
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	MountRootEndpoints(r, h)
	return r
}

// MountRootEndpoints adds POST /signup and POST /signin directly on r.
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Post("/signup", h.SignUp)
	r.Post("/signin", h.SignIn)
}
