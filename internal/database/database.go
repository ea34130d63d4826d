// Package database opens the persistence backends: MongoDB (default) and
// PostgreSQL through bun. Repositories live next to their domain packages.
package database

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Collection and table names
const (
	UsersCollection  = "users"
	OffersCollection = "offers"
)

// ErrInvalidID is returned when an identifier does not match the format of
// the active backend
var ErrInvalidID = errors.New("invalid id")

// ParseObjectID converts a hex string into a MongoDB ObjectID
func ParseObjectID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// ParseUUID converts a string into a PostgreSQL row id
func ParseUUID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return uid, nil
}
