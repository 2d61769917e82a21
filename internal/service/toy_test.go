package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"incywincy-api/internal/cache"
	"incywincy-api/internal/model"
	"incywincy-api/internal/query"
	"incywincy-api/internal/repository"
	"incywincy-api/pkg/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRepo counts Find calls that reach the store.
type countingRepo struct {
	*repository.MemoryToyRepository
	finds int
}

func (r *countingRepo) Find(ctx context.Context, q query.Find) ([]*model.ToyListing, error) {
	r.finds++
	return r.MemoryToyRepository.Find(ctx, q)
}

// gatedRepo holds the first Find after it has read the store until release
// is closed.
type gatedRepo struct {
	*repository.MemoryToyRepository
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (r *gatedRepo) Find(ctx context.Context, q query.Find) ([]*model.ToyListing, error) {
	toys, err := r.MemoryToyRepository.Find(ctx, q)
	r.once.Do(func() {
		close(r.read)
		<-r.release
	})
	return toys, err
}

func strp(s string) *string   { return &s }
func f64p(f float64) *float64 { return &f }
func i64p(i int64) *int64     { return &i }

func newToy(name, email, category string) model.NewToy {
	return model.NewToy{
		ToyName:           strp(name),
		SellerEmail:       strp(email),
		SubCategory:       strp(category),
		Price:             f64p(10),
		AvailableQuantity: i64p(2),
	}
}

func newService(t *testing.T) (*ToyService, *countingRepo) {
	repo := &countingRepo{MemoryToyRepository: repository.NewMemoryToyRepository()}
	c := cache.NewMemoryCache(0)
	t.Cleanup(func() { c.Close() })
	return NewToyService(repo, c, time.Minute), repo
}

func TestNewToyService_NilRepo(t *testing.T) {
	assert.Nil(t, NewToyService(nil, nil, time.Minute))
}

func TestAllToys_CachedUntilWrite(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, newToy("Red Racer", "a@x.com", "Truck"))
	require.NoError(t, err)

	first, err := svc.AllToys(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	second, err := svc.AllToys(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.finds)

	_, err = svc.Add(ctx, newToy("Blue Truck", "a@x.com", "Truck"))
	require.NoError(t, err)

	third, err := svc.AllToys(ctx)
	require.NoError(t, err)
	assert.Len(t, third, 2)
	assert.Equal(t, 2, repo.finds)
}

func TestAllToys_SlowReadDoesNotCacheAcrossWrite(t *testing.T) {
	repo := &gatedRepo{
		MemoryToyRepository: repository.NewMemoryToyRepository(),
		read:                make(chan struct{}),
		release:             make(chan struct{}),
	}
	c := cache.NewMemoryCache(0)
	defer c.Close()
	svc := NewToyService(repo, c, time.Minute)
	ctx := context.Background()

	done := make(chan []*model.ToyListing)
	go func() {
		toys, _ := svc.AllToys(ctx)
		done <- toys
	}()

	<-repo.read
	_, err := svc.Add(ctx, newToy("Red Racer", "a@x.com", "Truck"))
	require.NoError(t, err)
	close(repo.release)
	assert.Empty(t, <-done)

	toys, err := svc.AllToys(ctx)
	require.NoError(t, err)
	assert.Len(t, toys, 1)
}

func TestSubCategory_InvalidatedByDelete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	res, err := svc.Add(ctx, newToy("Red Racer", "a@x.com", "Truck"))
	require.NoError(t, err)

	cards, err := svc.SubCategory(ctx, "Truck")
	require.NoError(t, err)
	require.Len(t, cards, 1)

	del, err := svc.Delete(ctx, res.InsertedID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(1), del.DeletedCount)

	cards, err = svc.SubCategory(ctx, "Truck")
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestUpdate_InvalidatesAndChangesOnlyMutableFields(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	res, err := svc.Add(ctx, newToy("Red Racer", "a@x.com", "Truck"))
	require.NoError(t, err)
	_, err = svc.AllToys(ctx)
	require.NoError(t, err)

	upd, err := svc.Update(ctx, res.InsertedID.Hex(), model.ToyUpdate{Price: f64p(99)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), upd.ModifiedCount)

	all, err := svc.AllToys(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 99.0, *all[0].Price)

	toy, err := svc.View(ctx, res.InsertedID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Red Racer", *toy.ToyName)
	assert.Equal(t, int64(2), *toy.AvailableQuantity)
}

func TestUpdate_Errors(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	res, err := svc.Add(ctx, newToy("Red Racer", "a@x.com", "Truck"))
	require.NoError(t, err)
	id := res.InsertedID.Hex()

	_, err = svc.Update(ctx, "nope", model.ToyUpdate{Price: f64p(1)})
	assert.ErrorIs(t, err, query.ErrInvalidID)

	_, err = svc.Update(ctx, id, model.ToyUpdate{})
	assert.ErrorIs(t, err, query.ErrEmptyPatch)

	_, err = svc.Update(ctx, id, model.ToyUpdate{Price: f64p(-1)})
	var apiErr *apierror.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
}

func TestAdd_Validation(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Add(context.Background(), model.NewToy{ToyName: strp("Car"), SellerEmail: strp("not-an-email")})
	var apiErr *apierror.Error
	require.True(t, errors.As(err, &apiErr))
	require.Len(t, apiErr.Details, 1)
	assert.Equal(t, "sellerEmail", apiErr.Details[0].Field)

	_, err = svc.Add(context.Background(), model.NewToy{})
	require.True(t, errors.As(err, &apiErr))
	assert.Len(t, apiErr.Details, 2)

	_, err = svc.Add(context.Background(), newToy("", "a@x.com", "Truck"))
	require.True(t, errors.As(err, &apiErr))
	require.Len(t, apiErr.Details, 1)
	assert.Equal(t, "toyName", apiErr.Details[0].Field)
	assert.Equal(t, "must not be empty", apiErr.Details[0].Message)
}

func TestSellerToys(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for _, email := range []string{"a@x.com", "a@x.com", "b@x.com"} {
		_, err := svc.Add(ctx, newToy("Car", email, "Truck"))
		require.NoError(t, err)
	}

	mine, err := svc.SellerToys(ctx, "a@x.com", "asc")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = svc.SellerToys(ctx, "a@x.com", "up")
	assert.ErrorIs(t, err, query.ErrInvalidSort)
}

func TestView_MissingIsNil(t *testing.T) {
	svc, _ := newService(t)
	toy, err := svc.View(context.Background(), "507f1f77bcf86cd799439011")
	require.NoError(t, err)
	assert.Nil(t, toy)
}

func TestWithoutCache(t *testing.T) {
	repo := &countingRepo{MemoryToyRepository: repository.NewMemoryToyRepository()}
	svc := NewToyService(repo, nil, time.Minute)
	ctx := context.Background()

	_, err := svc.AllToys(ctx)
	require.NoError(t, err)
	_, err = svc.AllToys(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.finds)
}

func TestUnavailableStore(t *testing.T) {
	svc := NewToyService(repository.NewUnavailableToyRepository(errors.New("dial tcp: refused")), nil, 0)

	_, err := svc.AllToys(context.Background())
	assert.ErrorIs(t, err, repository.ErrUnavailable)
	assert.ErrorIs(t, svc.Ping(context.Background()), repository.ErrUnavailable)
}
