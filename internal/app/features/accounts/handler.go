// Package accounts serves password sign-up and sign-in.
//
// Endpoints:
//   - POST /signup - create an account with a bcrypt-hashed password
//   - POST /signin - check an email and password
//
// Sign-in only reports success or failure; no session is issued.
package accounts

import (
	"context"
	"errors"
	"net/http"

	accountstore "github.com/dalemusser/newsgeo/internal/app/store/accounts"
	"github.com/dalemusser/newsgeo/internal/app/system/authutil"
	"github.com/dalemusser/newsgeo/internal/app/system/inputval"
	"github.com/dalemusser/newsgeo/internal/app/system/jsonutil"
	"github.com/dalemusser/newsgeo/internal/app/system/metrics"
	"github.com/dalemusser/newsgeo/internal/app/system/normalize"
	"github.com/dalemusser/newsgeo/internal/app/system/timeouts"
	"github.com/dalemusser/newsgeo/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Store is the persistence the handler needs; *accountstore.Store satisfies it.
type Store interface {
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Exists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, email, passwordHash string) (models.Account, error)
}

// Handler handles account requests.
type Handler struct {
	store      Store
	bcryptCost int
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewHandler creates an accounts handler. m may be nil.
func NewHandler(store Store, bcryptCost int, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		store:      store,
		bcryptCost: bcryptCost,
		metrics:    m,
		logger:     logger,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// signupInput bounds the password to what bcrypt hashes.
type signupInput struct {
	Email    string `json:"email" validate:"required,max=254" label:"Email"`
	Password string `json:"password" validate:"required,max=72" label:"Password"`
}

// SignUp handles POST /signup.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}
	email := normalize.Email(in.Email)
	if res := inputval.Validate(signupInput{Email: email, Password: in.Password}); res.HasErrors() {
		if res.Missing() {
			jsonutil.BadRequest(w, "Email and password are required")
			return
		}
		jsonutil.BadRequest(w, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Store())
	defer cancel()

	exists, err := h.store.Exists(ctx, email)
	if err != nil {
		h.logger.Error("error checking account", zap.String("email", email), zap.Error(err))
		jsonutil.InternalError(w, "Internal Server Error")
		return
	}
	if exists {
		jsonutil.BadRequest(w, "Email already exists")
		return
	}

	hash, err := authutil.HashPasswordWithCost(in.Password, h.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		jsonutil.BadRequest(w, "Password is too long")
		return
	}
	if err != nil {
		h.logger.Error("error hashing password", zap.Error(err))
		jsonutil.InternalError(w, "Internal Server Error")
		return
	}

	if _, err := h.store.Create(ctx, email, hash); err != nil {
		if errors.Is(err, accountstore.ErrDuplicateEmail) {
			jsonutil.BadRequest(w, "Email already exists")
			return
		}
		h.logger.Error("error creating account", zap.String("email", email), zap.Error(err))
		jsonutil.InternalError(w, "Internal Server Error")
		return
	}
	h.metrics.AccountCreated(metrics.OriginSignup)

	h.logger.Info("account created", zap.String("email", email))
	jsonutil.Message(w, http.StatusOK, "User created successfully")
}

// SignIn handles POST /signin.
//
// An account created by Google sign-in has no password and always fails
// the check.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}
	email := normalize.Email(in.Email)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Store())
	defer cancel()

	acct, err := h.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, accountstore.ErrNotFound) {
			jsonutil.Message(w, http.StatusNotFound, "User not registered")
			return
		}
		h.logger.Error("error loading account", zap.String("email", email), zap.Error(err))
		jsonutil.Message(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if !authutil.CheckPassword(in.Password, acct.Password) {
		h.logger.Info("sign-in rejected",
			zap.String("email", email),
			zap.Bool("federated_only", acct.IsFederatedOnly()),
		)
		jsonutil.Message(w, http.StatusUnauthorized, "Password Incorrect")
		return
	}

	h.logger.Info("sign-in succeeded", zap.String("email", email))
	jsonutil.Message(w, http.StatusOK, "Success")
}
