package googlesignin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	accountstore "github.com/dalemusser/newsgeo/internal/app/store/accounts"
	federatedstore "github.com/dalemusser/newsgeo/internal/app/store/federated"
	"github.com/dalemusser/newsgeo/internal/app/system/authutil"
	"github.com/dalemusser/newsgeo/internal/app/system/identity"
	"github.com/dalemusser/newsgeo/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// fakeProvider maps access tokens to emails.
type fakeProvider struct {
	tokens map[string]string
	err    error
}

func (f fakeProvider) UserInfo(ctx context.Context, token string) (*identity.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	email, ok := f.tokens[token]
	if !ok {
		return nil, fmt.Errorf("%w: http 401", identity.ErrInvalidToken)
	}
	return &identity.Profile{Email: email, VerifiedEmail: true}, nil
}

func newTestRouter(t *testing.T, provider identity.Provider) (http.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := NewHandler(provider, accountstore.New(db), federatedstore.New(db), nil, zap.NewNop())
	return Routes(h), db
}

func signIn(router http.Handler, token string) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodPost, "/", map[string]string{"token": token}))
	return rec
}

func count(t *testing.T, db *mongo.Database, coll, email string) int64 {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := db.Collection(coll).CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		t.Fatalf("CountDocuments(%s) error = %v", coll, err)
	}
	return n
}

func TestSignIn_RepeatedIsIdempotent(t *testing.T) {
	router, db := newTestRouter(t, fakeProvider{tokens: map[string]string{
		"tok-1": "Alice@Example.com",
		"tok-2": "alice@example.com",
	}})

	for _, tok := range []string{"tok-1", "tok-2"} {
		rec := signIn(router, tok)
		rec.AssertStatus(t, http.StatusOK)
		rec.AssertJSONString(t, "Google sign-in successful")
	}

	if n := count(t, db, accountstore.CollectionName, "alice@example.com"); n != 1 {
		t.Errorf("accounts = %d, want 1", n)
	}
	if n := count(t, db, federatedstore.CollectionName, "alice@example.com"); n != 1 {
		t.Errorf("google sign-in links = %d, want 1", n)
	}
}

func TestSignIn_CreatesPasswordlessAccount(t *testing.T) {
	router, db := newTestRouter(t, fakeProvider{tokens: map[string]string{"tok": "bob@example.com"}})

	signIn(router, "tok").AssertStatus(t, http.StatusOK)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	acct, err := accountstore.New(db).GetByEmail(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if !acct.IsFederatedOnly() {
		t.Error("account created by google sign-in should have no password")
	}
	if authutil.CheckPassword("", acct.Password) {
		t.Error("password-less account should never pass a password check")
	}
}

func TestSignIn_KeepsExistingPasswordAccount(t *testing.T) {
	router, db := newTestRouter(t, fakeProvider{tokens: map[string]string{"tok": "carol@example.com"}})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := accountstore.New(db)
	hash, err := authutil.HashPassword("pw")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if _, err := store.Create(ctx, "carol@example.com", hash); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	signIn(router, "tok").AssertStatus(t, http.StatusOK)

	acct, err := store.GetByEmail(ctx, "carol@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if acct.Password != hash {
		t.Error("google sign-in should not replace an existing password")
	}
	if n := count(t, db, federatedstore.CollectionName, "carol@example.com"); n != 1 {
		t.Errorf("google sign-in links = %d, want 1", n)
	}
}

func TestSignIn_InvalidToken(t *testing.T) {
	tests := []struct {
		name     string
		provider fakeProvider
		body     any
	}{
		{"unknown token", fakeProvider{}, map[string]string{"token": "bogus"}},
		{"provider unreachable", fakeProvider{err: errors.New("dial tcp: connection refused")}, map[string]string{"token": "tok"}},
		{"malformed body", fakeProvider{}, "{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, db := newTestRouter(t, tt.provider)

			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodPost, "/", tt.body))
			rec.AssertStatus(t, http.StatusBadRequest)
			rec.AssertJSONString(t, "Invalid Token")

			ctx, cancel := testutil.TestContext()
			defer cancel()
			n, _ := db.Collection(accountstore.CollectionName).CountDocuments(ctx, bson.M{})
			if n != 0 {
				t.Errorf("accounts = %d after rejected sign-in, want 0", n)
			}
		})
	}
}

// failingLinks fails every link attempt.
type failingLinks struct{}

func (failingLinks) EnsureLinked(ctx context.Context, email string) (bool, error) {
	return false, errors.New("write failed")
}

func TestSignIn_StorageFailureIsInvalidToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	provider := fakeProvider{tokens: map[string]string{"tok": "dave@example.com"}}
	router := Routes(NewHandler(provider, accountstore.New(db), failingLinks{}, nil, zap.NewNop()))

	rec := signIn(router, "tok")
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertJSONString(t, "Invalid Token")
}
