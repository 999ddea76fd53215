package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jcmexdev/storefront/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

type OrderRepository struct {
	coll *mongo.Collection
}

var _ ports.OrderRepository = (*OrderRepository)(nil)

func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	doc := toOrderDoc(o)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo: insert order: %w", err)
	}
	o.ID = doc.ID.Hex()
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*entity.Order, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	var doc orderDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: find order %s: %w", id, err)
	}
	o := doc.toEntity()
	return &o, nil
}

func (r *OrderRepository) Update(ctx context.Context, o *entity.Order) error {
	oid, ok := objectID(o.ID)
	if !ok {
		return apperr.ErrNotFound
	}
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, toOrderDoc(o))
	if err != nil {
		return fmt.Errorf("mongo: replace order %s: %w", o.ID, err)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	uid, ok := objectID(userID)
	if !ok {
		return []entity.Order{}, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"user": uid}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo: find orders of %s: %w", userID, err)
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode orders: %w", err)
	}
	out := make([]entity.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}
