package repository

import (
	"context"
	"fmt"

	"incywincy-api/internal/model"
	"incywincy-api/internal/query"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UnavailableToyRepository stands in for a store that could not be reached
// at startup. The server keeps listening and every store call fails with
// ErrUnavailable.
type UnavailableToyRepository struct {
	cause error
}

// NewUnavailableToyRepository records why the real store is missing.
func NewUnavailableToyRepository(cause error) *UnavailableToyRepository {
	return &UnavailableToyRepository{cause: cause}
}

func (r *UnavailableToyRepository) err() error {
	return fmt.Errorf("%w: %v", ErrUnavailable, r.cause)
}

func (r *UnavailableToyRepository) Find(context.Context, query.Find) ([]*model.ToyListing, error) {
	return nil, r.err()
}

func (r *UnavailableToyRepository) FindOne(context.Context, query.Find) (*model.ToyListing, error) {
	return nil, r.err()
}

func (r *UnavailableToyRepository) Insert(context.Context, *model.ToyListing) (*model.InsertResult, error) {
	return nil, r.err()
}

func (r *UnavailableToyRepository) Update(context.Context, query.Patch) (*model.UpdateResult, error) {
	return nil, r.err()
}

func (r *UnavailableToyRepository) Delete(context.Context, primitive.ObjectID) (*model.DeleteResult, error) {
	return nil, r.err()
}

func (r *UnavailableToyRepository) Ping(context.Context) error {
	return r.err()
}

func (r *UnavailableToyRepository) GetStats(context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{
		"status": "unavailable",
		"error":  r.cause.Error(),
	}, r.err()
}

func (r *UnavailableToyRepository) Close() error {
	return nil
}
