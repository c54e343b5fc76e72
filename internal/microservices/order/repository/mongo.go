package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dineflow/internal/microservices/order/domain/dao"
	"dineflow/internal/microservices/order/domain/errs"
)

const maxUpdateAttempts = 5

type counterDoc struct {
	Value int64 `bson:"value"`
}

// MongoRepository stores each order as one document. Transitions use a
// compare-and-swap on the current status instead of locks.
type MongoRepository struct {
	orders   *mongo.Collection
	counters *mongo.Collection
	seed     int64
}

func NewMongoRepository(db *mongo.Database, seed int64) *MongoRepository {
	return &MongoRepository{
		orders:   db.Collection("orders"),
		counters: db.Collection("counters"),
		seed:     seed,
	}
}

// Init creates the indexes and the order counter when they do not exist yet.
func (r *MongoRepository) Init(ctx context.Context) error {
	_, err := r.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create order indexes: %w", err)
	}
	_, err = r.counters.UpdateOne(ctx,
		bson.M{"_id": counterName},
		bson.M{"$setOnInsert": bson.M{"value": r.seed - 1}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("ensure order counter: %w", err)
	}
	return nil
}

func (r *MongoRepository) AllocateOrderNumber(ctx context.Context) (int64, error) {
	var c counterDoc
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": counterName},
		bson.M{"$inc": bson.M{"value": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, errs.Store("allocate order number", errors.New("order counter missing, run Init"))
	}
	if err != nil {
		return 0, errs.Store("allocate order number", err)
	}
	return c.Value, nil
}

func (r *MongoRepository) Insert(ctx context.Context, order dao.Order) error {
	if _, err := r.orders.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.Store("insert order", fmt.Errorf("order %s already exists: %w", order.ID, err))
		}
		return errs.Store("insert order", err)
	}
	return nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (dao.Order, error) {
	var o dao.Order
	err := r.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return dao.Order{}, errs.NotFound(id)
	}
	if err != nil {
		return dao.Order{}, errs.Store("get order", err)
	}
	return o, nil
}

func (r *MongoRepository) List(ctx context.Context, status dao.Status) ([]dao.Order, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = string(status)
	}
	cur, err := r.orders.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "orderNumber", Value: -1}}))
	if err != nil {
		return nil, errs.Store("list orders", err)
	}
	out := make([]dao.Order, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Store("list orders", err)
	}
	return out, nil
}

func (r *MongoRepository) Update(ctx context.Context, id string, mutate Mutator) (dao.Order, error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		cur, err := r.Get(ctx, id)
		if err != nil {
			return dao.Order{}, err
		}
		next := cur.Clone()
		if err := mutate(&next); err != nil {
			return dao.Order{}, err
		}
		res, err := r.orders.UpdateOne(ctx,
			bson.M{"_id": id, "status": string(cur.Status)},
			bson.M{"$set": bson.M{"status": string(next.Status), "updatedAt": next.UpdatedAt}},
		)
		if err != nil {
			return dao.Order{}, errs.Store("update order", err)
		}
		if res.MatchedCount == 1 {
			return next, nil
		}
	}
	return dao.Order{}, errs.Store("update order", fmt.Errorf("order %s kept changing after %d attempts", id, maxUpdateAttempts))
}
