// internal/domain/models/record.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Record is a geotagged news entry submitted under a caller-supplied code.
//
// UniqueCode is the lookup key but is not constrained to be unique in
// storage; two submissions with the same code produce two records.
type Record struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UniqueCode string             `bson:"uniqueCode" json:"uniqueCode"`
	MetaData   MetaData           `bson:"metaData" json:"metaData"`
}

// MetaData is the embedded description of a news item.
//
// Latitude, Longitude and MapURL are empty when the geocoder found no
// match for LocationName. Coordinates are kept as the decimal strings the
// geocoder returned.
type MetaData struct {
	NewsURL      string    `bson:"newsUrl" json:"newsUrl"`
	MapURL       string    `bson:"mapUrl,omitempty" json:"mapUrl,omitempty"`
	Latitude     string    `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude    string    `bson:"longitude,omitempty" json:"longitude,omitempty"`
	LocationName string    `bson:"locationName" json:"locationName"`
	Category     string    `bson:"category" json:"category"`
	NewsTag      string    `bson:"newsTag" json:"newsTag"`
	Date         time.Time `bson:"date" json:"date"`
}

// CategoryAll is the listing filter value that disables category matching.
const CategoryAll = "all"
