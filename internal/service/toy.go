package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"incywincy-api/internal/cache"
	"incywincy-api/internal/model"
	"incywincy-api/internal/query"
	"incywincy-api/internal/repository"
	"incywincy-api/internal/validation"

	"github.com/rs/zerolog/log"
)

const (
	allToysCacheKey     = "all_toys"
	subCategoryCacheKey = "sub_category:"
)

// ToyService handles toy catalog business logic.
type ToyService struct {
	repo     repository.ToyRepository
	cache    cache.Cache
	cacheTTL time.Duration

	// generation counts invalidations. A read that started before a write
	// must not repopulate the cache with what it saw.
	generation atomic.Uint64
}

// NewToyService creates a new toy service.
// Returns nil if repo is nil (required dependency). c may be nil to disable caching.
func NewToyService(repo repository.ToyRepository, c cache.Cache, cacheTTL time.Duration) *ToyService {
	if repo == nil {
		return nil
	}
	if cacheTTL <= 0 {
		c = nil
	}
	return &ToyService{
		repo:     repo,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

// AllToys returns the capped catalog summary.
func (s *ToyService) AllToys(ctx context.Context) ([]*model.ToyListing, error) {
	return s.cachedFind(ctx, allToysCacheKey, query.AllToys())
}

// Search returns every listing whose name contains text, ignoring case.
func (s *ToyService) Search(ctx context.Context, text string) ([]*model.ToyListing, error) {
	return s.repo.Find(ctx, query.SearchByName(text))
}

// View returns one full listing, or nil when it does not exist.
func (s *ToyService) View(ctx context.Context, rawID string) (*model.ToyListing, error) {
	id, err := query.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindOne(ctx, query.ToyByID(id))
}

// EditForm returns the mutable fields of one listing, or nil.
func (s *ToyService) EditForm(ctx context.Context, rawID string) (*model.ToyListing, error) {
	id, err := query.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindOne(ctx, query.EditForm(id))
}

// Update changes price, available quantity, and description only.
func (s *ToyService) Update(ctx context.Context, rawID string, u model.ToyUpdate) (*model.UpdateResult, error) {
	id, err := query.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(u); err != nil {
		return nil, err
	}
	patch, err := query.EditPatch(id, u)
	if err != nil {
		return nil, err
	}

	res, err := s.repo.Update(ctx, patch)
	if err != nil {
		return nil, err
	}
	if res.ModifiedCount > 0 {
		s.invalidate(ctx)
	}
	return res, nil
}

// SellerToys lists listings by seller email, optionally sorted by price.
// An empty email lists every listing.
func (s *ToyService) SellerToys(ctx context.Context, email, sort string) ([]*model.ToyListing, error) {
	dir, err := query.ParseDirection(sort)
	if err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, query.SellerToys(email, dir))
}

// Delete removes one listing.
func (s *ToyService) Delete(ctx context.Context, rawID string) (*model.DeleteResult, error) {
	id, err := query.ParseID(rawID)
	if err != nil {
		return nil, err
	}

	res, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.DeletedCount > 0 {
		s.invalidate(ctx)
	}
	return res, nil
}

// SubCategory returns the trending cards for a category tag.
func (s *ToyService) SubCategory(ctx context.Context, tag string) ([]*model.ToyListing, error) {
	return s.cachedFind(ctx, subCategoryCacheKey+tag, query.SubCategory(tag))
}

// Add validates and stores a new listing.
func (s *ToyService) Add(ctx context.Context, req model.NewToy) (*model.InsertResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	res, err := s.repo.Insert(ctx, req.Listing())
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return res, nil
}

// Ping reports whether the store is reachable.
func (s *ToyService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// Stats returns store statistics.
func (s *ToyService) Stats(ctx context.Context) (map[string]interface{}, error) {
	return s.repo.GetStats(ctx)
}

// cachedFind serves q from the cache when possible. Cache failures are
// logged and fall through to the store.
func (s *ToyService) cachedFind(ctx context.Context, key string, q query.Find) ([]*model.ToyListing, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var toys []*model.ToyListing
			if err := json.Unmarshal(data, &toys); err == nil {
				return toys, nil
			}
			log.Warn().Str("component", "toy_service").Str("key", key).Msg("dropping undecodable cache entry")
			_ = s.cache.Delete(ctx, key)
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn().Err(err).Str("component", "toy_service").Str("key", key).Msg("cache read failed")
		}
	}

	gen := s.generation.Load()
	toys, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.generation.Load() == gen {
		s.store(ctx, key, gen, toys)
	}
	return toys, nil
}

// store caches toys read at generation gen. A write that lands between the
// check and the Set is caught by the second check and the entry is dropped.
func (s *ToyService) store(ctx context.Context, key string, gen uint64, toys []*model.ToyListing) {
	data, err := json.Marshal(toys)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		log.Warn().Err(err).Str("component", "toy_service").Str("key", key).Msg("cache write failed")
		return
	}
	if s.generation.Load() != gen {
		_ = s.cache.Delete(ctx, key)
	}
}

func (s *ToyService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.generation.Add(1)
	if err := s.cache.Clear(ctx); err != nil {
		log.Warn().Err(err).Str("component", "toy_service").Msg("cache invalidation failed")
	}
}
