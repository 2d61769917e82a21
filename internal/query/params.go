package query

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrInvalidID is returned for identifiers that are not 24 hex characters.
	ErrInvalidID = errors.New("invalid toy id")
	// ErrInvalidSort is returned for sort values outside the accepted set.
	ErrInvalidSort = errors.New("invalid sort direction")
)

// Direction is the order applied to a sort key.
type Direction int

const (
	Unsorted Direction = iota
	Ascending
	Descending
)

// String returns the canonical query value.
func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return ""
	}
}

// Sign returns 1 for ascending and -1 for descending, the form document
// stores expect in a sort specification.
func (d Direction) Sign() int {
	switch d {
	case Ascending:
		return 1
	case Descending:
		return -1
	default:
		return 0
	}
}

// ParseDirection validates a sort query value. Empty means unsorted.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Unsorted, nil
	case "asc", "ascending", "1":
		return Ascending, nil
	case "desc", "descending", "-1":
		return Descending, nil
	default:
		return Unsorted, fmt.Errorf("%w: %q", ErrInvalidSort, s)
	}
}

// ParseID converts a path segment into a store identifier.
func ParseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}
