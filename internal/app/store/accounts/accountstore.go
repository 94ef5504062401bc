// internal/app/store/accounts/accountstore.go
package accountstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/newsgeo/internal/app/system/normalize"
	"github.com/dalemusser/newsgeo/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding accounts.
const CollectionName = "users"

var (
	// ErrNotFound is returned when no account exists for an email.
	ErrNotFound = errors.New("account not found")
	// ErrDuplicateEmail is returned when an account for the email already exists.
	ErrDuplicateEmail = errors.New("an account with this email already exists")
)

// Store provides access to the accounts collection.
type Store struct {
	c *mongo.Collection
}

// New creates an account store bound to db.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// GetByEmail loads the account for email (normalized before matching).
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Exists reports whether an account for email is stored.
func (s *Store) Exists(ctx context.Context, email string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"email": normalize.Email(email)}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts an account. passwordHash may be empty for federated-only
// accounts. A concurrent insert of the same email loses on the unique
// index and yields ErrDuplicateEmail.
func (s *Store) Create(ctx context.Context, email, passwordHash string) (models.Account, error) {
	a := models.Account{
		ID:        primitive.NewObjectID(),
		Email:     normalize.Email(email),
		Password:  passwordHash,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Account{}, ErrDuplicateEmail
		}
		return models.Account{}, err
	}
	return a, nil
}
