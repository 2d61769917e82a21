package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"incywincy-api/internal/model"
	"incywincy-api/internal/query"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

// MongoDBToyRepository implements ToyRepository using MongoDB.
type MongoDBToyRepository struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoDBToyRepository connects to MongoDB and verifies the deployment answers.
func NewMongoDBToyRepository(uri, database, collection string) (*MongoDBToyRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	clientOpts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(serverAPI).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	coll := db.Collection(collection)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: string(query.FieldSubCategory), Value: 1}}},
		{Keys: bson.D{{Key: string(query.FieldSellerEmail), Value: 1}, {Key: string(query.FieldPrice), Value: 1}}},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warn().Err(err).Str("component", "mongodb").Msg("failed to create indexes")
	}

	log.Info().Str("component", "mongodb").Msgf("connected to %s/%s", database, collection)
	return &MongoDBToyRepository{
		client:     client,
		db:         db,
		collection: coll,
	}, nil
}

// Find returns every listing matching q.
func (r *MongoDBToyRepository) Find(ctx context.Context, q query.Find) ([]*model.ToyListing, error) {
	opts := options.Find()
	if q.Projection != nil {
		opts.SetProjection(mongoProjection(q.Projection))
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	if q.Sort.Direction != query.Unsorted {
		opts.SetSort(bson.D{{Key: string(q.Sort.Field), Value: q.Sort.Direction.Sign()}})
	}

	cursor, err := r.collection.Find(ctx, mongoFilter(q.Filter), opts)
	if err != nil {
		return nil, mongoError("find toys", err)
	}
	defer cursor.Close(ctx)

	toys := make([]*model.ToyListing, 0)
	if err := cursor.All(ctx, &toys); err != nil {
		return nil, mongoError("decode toys", err)
	}
	return toys, nil
}

// FindOne returns the first match, or nil.
func (r *MongoDBToyRepository) FindOne(ctx context.Context, q query.Find) (*model.ToyListing, error) {
	opts := options.FindOne()
	if q.Projection != nil {
		opts.SetProjection(mongoProjection(q.Projection))
	}
	if q.Sort.Direction != query.Unsorted {
		opts.SetSort(bson.D{{Key: string(q.Sort.Field), Value: q.Sort.Direction.Sign()}})
	}

	var toy model.ToyListing
	err := r.collection.FindOne(ctx, mongoFilter(q.Filter), opts).Decode(&toy)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, mongoError("find toy", err)
	}
	return &toy, nil
}

// Insert stores a new listing.
func (r *MongoDBToyRepository) Insert(ctx context.Context, toy *model.ToyListing) (*model.InsertResult, error) {
	if toy.ID.IsZero() {
		toy.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, toy); err != nil {
		return nil, mongoError("insert toy", err)
	}
	return &model.InsertResult{Acknowledged: true, InsertedID: toy.ID}, nil
}

// Update applies a $set of the patch fields.
func (r *MongoDBToyRepository) Update(ctx context.Context, p query.Patch) (*model.UpdateResult, error) {
	set := bson.D{}
	for _, a := range p.Set {
		set = append(set, bson.E{Key: string(a.Field), Value: a.Value})
	}

	res, err := r.collection.UpdateOne(ctx, bson.D{{Key: "_id", Value: p.ID}}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return nil, mongoError("update toy", err)
	}
	return &model.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}, nil
}

// Delete removes one listing.
func (r *MongoDBToyRepository) Delete(ctx context.Context, id primitive.ObjectID) (*model.DeleteResult, error) {
	res, err := r.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return nil, mongoError("delete toy", err)
	}
	return &model.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

// Ping checks that the deployment answers.
func (r *MongoDBToyRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// GetStats returns statistics about the toy collection.
func (r *MongoDBToyRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})
	stats["status"] = "connected"
	stats["database"] = r.db.Name()
	stats["collection"] = r.collection.Name()

	count, err := r.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return stats, mongoError("count toys", err)
	}
	stats["total_toys"] = count

	// distinct is outside Stable API v1, so count categories through aggregate.
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$" + string(query.FieldSubCategory)}}}},
		{{Key: "$count", Value: "n"}},
	}
	if cursor, err := r.collection.Aggregate(ctx, pipeline); err == nil {
		var out []struct {
			N int64 `bson:"n"`
		}
		if err := cursor.All(ctx, &out); err == nil && len(out) == 1 {
			stats["sub_categories"] = out[0].N
		}
	}

	return stats, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBToyRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

func mongoFilter(conds []query.Condition) bson.D {
	filter := bson.D{}
	for _, c := range conds {
		switch c.Op {
		case query.ContainsFold:
			filter = append(filter, bson.E{
				Key:   string(c.Field),
				Value: primitive.Regex{Pattern: regexp.QuoteMeta(fmt.Sprint(c.Value)), Options: "i"},
			})
		default:
			filter = append(filter, bson.E{Key: string(c.Field), Value: c.Value})
		}
	}
	return filter
}

func mongoProjection(fields []query.Field) bson.D {
	proj := bson.D{}
	for _, f := range fields {
		proj = append(proj, bson.E{Key: string(f), Value: 1})
	}
	return proj
}

// mongoError marks connectivity failures as ErrUnavailable so callers can
// answer 503 instead of 500.
func mongoError(op string, err error) error {
	var selErr topology.ServerSelectionError
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) ||
		errors.As(err, &selErr) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: failed to %s: %v", ErrUnavailable, op, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
