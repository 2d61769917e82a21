package repository

import (
	"context"
	"path/filepath"
	"testing"

	"incywincy-api/internal/model"
	"incywincy-api/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func strp(s string) *string   { return &s }
func f64p(f float64) *float64 { return &f }
func i64p(i int64) *int64     { return &i }

func newListing(name, email, category string, price float64) *model.ToyListing {
	return &model.ToyListing{
		PhotoURL:           strp("https://img.example.com/toy.png"),
		ToyName:            strp(name),
		SellerName:         strp("Spider"),
		SellerEmail:        strp(email),
		SubCategory:        strp(category),
		Price:              f64p(price),
		Ratings:            f64p(4.2),
		AvailableQuantity:  i64p(5),
		DetailsDescription: strp("die-cast"),
	}
}

// runToyRepositoryContract exercises behavior every backend must share.
func runToyRepositoryContract(t *testing.T, newRepo func(t *testing.T) ToyRepository) {
	ctx := context.Background()

	t.Run("InsertAssignsIDAndFindOneReturnsFullDocument", func(t *testing.T) {
		repo := newRepo(t)
		toy := newListing("Red Racer", "a@x.com", "Sports Car", 12.5)

		res, err := repo.Insert(ctx, toy)
		require.NoError(t, err)
		assert.True(t, res.Acknowledged)
		assert.False(t, res.InsertedID.IsZero())

		got, err := repo.FindOne(ctx, query.ToyByID(res.InsertedID))
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, res.InsertedID, got.ID)
		assert.Equal(t, "Red Racer", *got.ToyName)
		assert.Equal(t, 12.5, *got.Price)
		assert.Equal(t, int64(5), *got.AvailableQuantity)
	})

	t.Run("FindOneMissingReturnsNil", func(t *testing.T) {
		repo := newRepo(t)
		got, err := repo.FindOne(ctx, query.ToyByID(primitive.NewObjectID()))
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("SearchIsLiteralAndCaseInsensitive", func(t *testing.T) {
		repo := newRepo(t)
		for _, name := range []string{"Red Racer", "Blue Truck", "100% Fun_Car", "École Bus"} {
			_, err := repo.Insert(ctx, newListing(name, "a@x.com", "Truck", 1))
			require.NoError(t, err)
		}

		for _, text := range []string{"racer", "RACER", "ed rac"} {
			got, err := repo.Find(ctx, query.SearchByName(text))
			require.NoError(t, err)
			require.Len(t, got, 1, text)
			assert.Equal(t, "Red Racer", *got[0].ToyName)
		}

		got, err := repo.Find(ctx, query.SearchByName("edrac"))
		require.NoError(t, err)
		assert.Empty(t, got)

		for _, text := range []string{"école", "ÉCOLE", "École"} {
			got, err := repo.Find(ctx, query.SearchByName(text))
			require.NoError(t, err)
			require.Len(t, got, 1, text)
			assert.Equal(t, "École Bus", *got[0].ToyName)
		}

		got, err = repo.Find(ctx, query.SearchByName("0% fun_"))
		require.NoError(t, err)
		assert.Len(t, got, 1)

		got, err = repo.Find(ctx, query.SearchByName("_"))
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("ProjectionAndLimit", func(t *testing.T) {
		repo := newRepo(t)
		for i := 0; i < 3; i++ {
			_, err := repo.Insert(ctx, newListing("Car", "a@x.com", "Sports Car", float64(i)))
			require.NoError(t, err)
		}
		_, err := repo.Insert(ctx, newListing("Truck", "a@x.com", "Truck", 1))
		require.NoError(t, err)

		cards, err := repo.Find(ctx, query.SubCategory("Sports Car"))
		require.NoError(t, err)
		require.Len(t, cards, 2)
		for _, c := range cards {
			assert.False(t, c.ID.IsZero())
			assert.NotNil(t, c.PhotoURL)
			assert.NotNil(t, c.Ratings)
			assert.Nil(t, c.SellerEmail)
			assert.Nil(t, c.DetailsDescription)
		}
	})

	t.Run("SellerToysFiltersAndSorts", func(t *testing.T) {
		repo := newRepo(t)
		for _, p := range []float64{30, 10, 20} {
			_, err := repo.Insert(ctx, newListing("Car", "me@x.com", "Truck", p))
			require.NoError(t, err)
		}
		_, err := repo.Insert(ctx, newListing("Car", "you@x.com", "Truck", 5))
		require.NoError(t, err)

		asc, err := repo.Find(ctx, query.SellerToys("me@x.com", query.Ascending))
		require.NoError(t, err)
		require.Len(t, asc, 3)
		assert.Equal(t, []float64{10, 20, 30}, prices(asc))

		desc, err := repo.Find(ctx, query.SellerToys("me@x.com", query.Descending))
		require.NoError(t, err)
		assert.Equal(t, []float64{30, 20, 10}, prices(desc))

		other, err := repo.Find(ctx, query.SellerToys("ME@x.com", query.Unsorted))
		require.NoError(t, err)
		assert.Empty(t, other)

		all, err := repo.Find(ctx, query.SellerToys("", query.Unsorted))
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})

	t.Run("UpdateTouchesOnlyPatchedFields", func(t *testing.T) {
		repo := newRepo(t)
		res, err := repo.Insert(ctx, newListing("Red Racer", "a@x.com", "Sports Car", 10))
		require.NoError(t, err)

		patch, err := query.EditPatch(res.InsertedID, model.ToyUpdate{
			Price:              f64p(15),
			AvailableQuantity:  i64p(1),
			DetailsDescription: strp("repainted"),
		})
		require.NoError(t, err)

		upd, err := repo.Update(ctx, patch)
		require.NoError(t, err)
		assert.True(t, upd.Acknowledged)
		assert.Equal(t, int64(1), upd.MatchedCount)
		assert.Equal(t, int64(1), upd.ModifiedCount)

		got, err := repo.FindOne(ctx, query.ToyByID(res.InsertedID))
		require.NoError(t, err)
		assert.Equal(t, 15.0, *got.Price)
		assert.Equal(t, int64(1), *got.AvailableQuantity)
		assert.Equal(t, "repainted", *got.DetailsDescription)
		assert.Equal(t, "Red Racer", *got.ToyName)
		assert.Equal(t, "a@x.com", *got.SellerEmail)

		again, err := repo.Update(ctx, patch)
		require.NoError(t, err)
		assert.Equal(t, int64(1), again.MatchedCount)
		assert.Equal(t, int64(0), again.ModifiedCount)

		missing, err := repo.Update(ctx, query.Patch{ID: primitive.NewObjectID(), Set: patch.Set})
		require.NoError(t, err)
		assert.Equal(t, int64(0), missing.MatchedCount)
	})

	t.Run("DeleteRemovesOnce", func(t *testing.T) {
		repo := newRepo(t)
		res, err := repo.Insert(ctx, newListing("Red Racer", "a@x.com", "Sports Car", 10))
		require.NoError(t, err)

		del, err := repo.Delete(ctx, res.InsertedID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), del.DeletedCount)

		del, err = repo.Delete(ctx, res.InsertedID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), del.DeletedCount)

		got, err := repo.FindOne(ctx, query.ToyByID(res.InsertedID))
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("PingAndStats", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Ping(ctx))

		_, err := repo.Insert(ctx, newListing("A", "a@x.com", "Truck", 1))
		require.NoError(t, err)
		_, err = repo.Insert(ctx, newListing("B", "a@x.com", "Sports Car", 1))
		require.NoError(t, err)

		stats, err := repo.GetStats(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, stats["total_toys"])
		assert.EqualValues(t, 2, stats["sub_categories"])
	})
}

func prices(toys []*model.ToyListing) []float64 {
	out := make([]float64, 0, len(toys))
	for _, t := range toys {
		out = append(out, *t.Price)
	}
	return out
}

func TestMemoryToyRepository(t *testing.T) {
	runToyRepositoryContract(t, func(t *testing.T) ToyRepository {
		return NewMemoryToyRepository()
	})
}

func TestSQLiteToyRepository(t *testing.T) {
	runToyRepositoryContract(t, func(t *testing.T) ToyRepository {
		repo, err := NewSQLiteToyRepository(filepath.Join(t.TempDir(), "toys.db"))
		require.NoError(t, err)
		t.Cleanup(func() { repo.Close() })
		return repo
	})
}

func TestMemoryToyRepository_InsertStoresCopy(t *testing.T) {
	repo := NewMemoryToyRepository()
	toy := newListing("Red Racer", "a@x.com", "Truck", 1)
	res, err := repo.Insert(context.Background(), toy)
	require.NoError(t, err)

	*toy.ToyName = "mutated"
	got, err := repo.FindOne(context.Background(), query.ToyByID(res.InsertedID))
	require.NoError(t, err)
	assert.Equal(t, "Red Racer", *got.ToyName)
}

func TestMemoryToyRepository_CanceledContext(t *testing.T) {
	repo := NewMemoryToyRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Find(ctx, query.AllToys())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnavailableToyRepository(t *testing.T) {
	repo := NewUnavailableToyRepository(assert.AnError)
	ctx := context.Background()

	_, err := repo.Find(ctx, query.AllToys())
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = repo.Insert(ctx, newListing("A", "a@x.com", "Truck", 1))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, repo.Ping(ctx), ErrUnavailable)

	stats, err := repo.GetStats(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, "unavailable", stats["status"])
	assert.NoError(t, repo.Close())
}

func TestSQLError(t *testing.T) {
	assert.ErrorIs(t, sqlError("find toys", assert.AnError), assert.AnError)
	assert.NotErrorIs(t, sqlError("find toys", assert.AnError), ErrUnavailable)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "100!% fun!_car!!", escapeLike("100% fun_car!"))
}
