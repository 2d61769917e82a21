package repository

import (
	"context"
	"sync"

	"incywincy-api/internal/model"
	"incywincy-api/internal/query"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryToyRepository keeps listings in process memory in insertion order.
// Use this for development/testing.
type MemoryToyRepository struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	toys  map[primitive.ObjectID]*model.ToyListing
}

// NewMemoryToyRepository creates an empty in-memory toy store.
func NewMemoryToyRepository() *MemoryToyRepository {
	return &MemoryToyRepository{
		toys: make(map[primitive.ObjectID]*model.ToyListing),
	}
}

// Find returns every listing matching q.
func (r *MemoryToyRepository) Find(ctx context.Context, q query.Find) ([]*model.ToyListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	return query.Run(r.snapshot(), q), nil
}

// FindOne returns the first match, or nil.
func (r *MemoryToyRepository) FindOne(ctx context.Context, q query.Find) (*model.ToyListing, error) {
	q.Limit = 1
	toys, err := r.Find(ctx, q)
	if err != nil || len(toys) == 0 {
		return nil, err
	}
	return toys[0], nil
}

// Insert stores a copy of toy.
func (r *MemoryToyRepository) Insert(ctx context.Context, toy *model.ToyListing) (*model.InsertResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if toy.ID.IsZero() {
		toy.ID = primitive.NewObjectID()
	}
	if _, exists := r.toys[toy.ID]; !exists {
		r.order = append(r.order, toy.ID)
	}
	r.toys[toy.ID] = toy.Clone()
	return &model.InsertResult{Acknowledged: true, InsertedID: toy.ID}, nil
}

// Update applies the patch under the write lock.
func (r *MemoryToyRepository) Update(ctx context.Context, p query.Patch) (*model.UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.toys[p.ID]
	if !ok {
		return &model.UpdateResult{Acknowledged: true}, nil
	}
	next := current.Clone()
	changed, err := query.Apply(next, p)
	if err != nil {
		return nil, err
	}
	res := &model.UpdateResult{Acknowledged: true, MatchedCount: 1}
	if changed {
		r.toys[p.ID] = next
		res.ModifiedCount = 1
	}
	return res, nil
}

// Delete removes one listing.
func (r *MemoryToyRepository) Delete(ctx context.Context, id primitive.ObjectID) (*model.DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.toys[id]; !ok {
		return &model.DeleteResult{Acknowledged: true}, nil
	}
	delete(r.toys, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return &model.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

// Ping always succeeds.
func (r *MemoryToyRepository) Ping(ctx context.Context) error {
	return nil
}

// GetStats returns statistics about the stored listings.
func (r *MemoryToyRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make(map[string]struct{})
	for _, t := range r.toys {
		if t.SubCategory != nil {
			categories[*t.SubCategory] = struct{}{}
		}
	}
	return map[string]interface{}{
		"status":         "connected",
		"total_toys":     int64(len(r.toys)),
		"sub_categories": int64(len(categories)),
	}, nil
}

// Close is a no-op.
func (r *MemoryToyRepository) Close() error {
	return nil
}

// snapshot must be called with the lock held.
func (r *MemoryToyRepository) snapshot() []*model.ToyListing {
	docs := make([]*model.ToyListing, 0, len(r.order))
	for _, id := range r.order {
		docs = append(docs, r.toys[id])
	}
	return docs
}
