// internal/app/store/federated/googlesigninstore.go
package federatedstore

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

// CollectionName is the MongoDB collection recording Google sign-ins.
const CollectionName = "googlesignins"

// ErrDuplicateEmail is returned when a link for the email already exists.
var ErrDuplicateEmail = errors.New("a google sign-in link for this email already exists")

// Store provides access to the google_signins collection.
type Store struct {
	c *mongo.Collection
}

// New creates a federated link store bound to db.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Exists reports whether email has completed a Google sign-in before.
func (s *Store) Exists(ctx context.Context, email string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"email": normalize.Email(email)}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create records a Google sign-in for email.
func (s *Store) Create(ctx context.Context, email string) (models.GoogleSignin, error) {
	link := models.GoogleSignin{
		ID:        primitive.NewObjectID(),
		Email:     normalize.Email(email),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, link); err != nil {
		if wafflemongo.IsDup(err) {
			return models.GoogleSignin{}, ErrDuplicateEmail
		}
		return models.GoogleSignin{}, err
	}
	return link, nil
}

// EnsureLinked creates the link unless one already exists. It reports
// whether a new link was written. Losing a concurrent race counts as
// already linked.
func (s *Store) EnsureLinked(ctx context.Context, email string) (bool, error) {
	exists, err := s.Exists(ctx, email)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if _, err := s.Create(ctx, email); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
