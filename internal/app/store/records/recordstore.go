// internal/app/store/records/recordstore.go
package recordstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/newsgeo/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding news records.
const CollectionName = "datas"

// ErrNotFound is returned when no record matches a lookup.
var ErrNotFound = errors.New("record not found")

// Store provides access to the records collection.
type Store struct {
	c *mongo.Collection
}

// New creates a record store bound to db.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Create inserts rec as a new document and returns it with its assigned ID.
// A zero MetaData.Date is replaced with the current time.
func (s *Store) Create(ctx context.Context, rec models.Record) (models.Record, error) {
	rec.ID = primitive.NewObjectID()
	if rec.MetaData.Date.IsZero() {
		rec.MetaData.Date = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, rec); err != nil {
		return models.Record{}, err
	}
	return rec, nil
}

// GetByCode returns the most recently inserted record carrying code.
// Codes are not unique, so older records with the same code are shadowed.
func (s *Store) GetByCode(ctx context.Context, code string) (*models.Record, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})

	var rec models.Record
	if err := s.c.FindOne(ctx, bson.M{"uniqueCode": code}, opts).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Filter narrows a listing.
//
// Category matches metaData.category exactly unless it is empty or
// models.CategoryAll. The date range applies only when both From and To are
// set; both bounds are inclusive.
type Filter struct {
	Category string
	From     *time.Time
	To       *time.Time
}

// Query returns the MongoDB filter document for f.
func (f Filter) Query() bson.M {
	q := bson.M{}
	if f.Category != "" && f.Category != models.CategoryAll {
		q["metaData.category"] = f.Category
	}
	if f.From != nil && f.To != nil {
		q["metaData.date"] = bson.M{"$gte": *f.From, "$lte": *f.To}
	}
	return q
}

// List returns every record matching f, newest insertion first.
// An empty result is returned as a nil slice with no error.
func (s *Store) List(ctx context.Context, f Filter) ([]models.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})

	cur, err := s.c.Find(ctx, f.Query(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
