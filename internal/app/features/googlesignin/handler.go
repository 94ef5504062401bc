// Package googlesignin serves sign-in with a Google OAuth2 access token.
//
// The client obtains the access token itself (e.g. with Google Identity
// Services in the browser) and posts it here. The token is exchanged for the
// account's email at the userinfo endpoint; the first sign-in for an email
// creates a password-less account and a sign-in link.
package googlesignin

import (
	"context"
	"errors"
	"net/http"

	accountstore "github.com/dalemusser/newsgeo/internal/app/store/accounts"
	"github.com/dalemusser/newsgeo/internal/app/system/identity"
	"github.com/dalemusser/newsgeo/internal/app/system/jsonutil"
	"github.com/dalemusser/newsgeo/internal/app/system/metrics"
	"github.com/dalemusser/newsgeo/internal/app/system/normalize"
	"github.com/dalemusser/newsgeo/internal/app/system/timeouts"
	"github.com/dalemusser/newsgeo/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AccountStore is satisfied by *accountstore.Store.
type AccountStore interface {
	Exists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, email, passwordHash string) (models.Account, error)
}

// LinkStore is satisfied by *federatedstore.Store.
type LinkStore interface {
	EnsureLinked(ctx context.Context, email string) (bool, error)
}

// Handler handles Google sign-in requests.
type Handler struct {
	provider identity.Provider
	accounts AccountStore
	links    LinkStore
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewHandler creates a Google sign-in handler. m may be nil.
func NewHandler(provider identity.Provider, accounts AccountStore, links LinkStore, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		provider: provider,
		accounts: accounts,
		links:    links,
		metrics:  m,
		logger:   logger,
	}
}

// Routes returns a router serving POST / (mount at /google-signin).
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.SignIn)
	return r
}

type signinInput struct {
	Token string `json:"token"`
}

// SignIn handles POST /google-signin.
//
// Every failure, including storage errors, answers 400 "Invalid Token".
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var in signinInput
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.Message(w, http.StatusBadRequest, "Invalid Token")
		return
	}

	profile, err := h.provider.UserInfo(r.Context(), in.Token)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			h.logger.Info("google sign-in rejected", zap.Error(err))
		} else {
			h.logger.Warn("google userinfo lookup failed", zap.Error(err))
		}
		jsonutil.Message(w, http.StatusBadRequest, "Invalid Token")
		return
	}
	email := normalize.Email(profile.Email)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Store())
	defer cancel()

	if err := h.ensureAccount(ctx, email); err != nil {
		h.logger.Error("error creating account for google sign-in", zap.String("email", email), zap.Error(err))
		jsonutil.Message(w, http.StatusBadRequest, "Invalid Token")
		return
	}

	linked, err := h.links.EnsureLinked(ctx, email)
	if err != nil {
		h.logger.Error("error linking google sign-in", zap.String("email", email), zap.Error(err))
		jsonutil.Message(w, http.StatusBadRequest, "Invalid Token")
		return
	}

	h.logger.Info("google sign-in succeeded",
		zap.String("email", email),
		zap.Bool("first_link", linked),
	)
	jsonutil.Message(w, http.StatusOK, "Google sign-in successful")
}

// ensureAccount creates a password-less account for email unless one
// exists. A password account with the same email is left untouched.
func (h *Handler) ensureAccount(ctx context.Context, email string) error {
	exists, err := h.accounts.Exists(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if _, err := h.accounts.Create(ctx, email, ""); err != nil {
		if errors.Is(err, accountstore.ErrDuplicateEmail) {
			return nil
		}
		return err
	}
	h.metrics.AccountCreated(metrics.OriginGoogle)
	return nil
}
