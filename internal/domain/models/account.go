// internal/domain/models/account.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account holds the credentials of a user.
//
// Password is a bcrypt hash. It is empty for accounts that were created by
// a Google sign-in and never signed up with a password; such accounts can
// never pass a password check.
type Account struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// IsFederatedOnly reports whether the account has no password of its own.
func (a Account) IsFederatedOnly() bool {
	return a.Password == ""
}

// GoogleSignin records that an email completed a Google sign-in at least once.
type GoogleSignin struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
