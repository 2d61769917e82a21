package repository

import (
	"context"
	"errors"

	"incywincy-api/internal/model"
	"incywincy-api/internal/query"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrUnavailable wraps failures caused by an unreachable or unhealthy store.
var ErrUnavailable = errors.New("toy store unavailable")

// ToyRepository defines toy listing data access methods.
type ToyRepository interface {
	// Find returns every listing matching q, projected and capped as q says.
	Find(ctx context.Context, q query.Find) ([]*model.ToyListing, error)

	// FindOne returns the first match, or nil when nothing matches.
	FindOne(ctx context.Context, q query.Find) (*model.ToyListing, error)

	// Insert stores a new listing and assigns its identifier.
	Insert(ctx context.Context, toy *model.ToyListing) (*model.InsertResult, error)

	// Update applies a partial update to one listing.
	Update(ctx context.Context, p query.Patch) (*model.UpdateResult, error)

	// Delete removes one listing.
	Delete(ctx context.Context, id primitive.ObjectID) (*model.DeleteResult, error)

	// Ping checks that the store answers.
	Ping(ctx context.Context) error

	// GetStats returns statistics about the toy store.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the repository connection.
	Close() error
}
