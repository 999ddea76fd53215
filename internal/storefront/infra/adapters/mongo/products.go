package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jcmexdev/storefront/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

type ProductRepository struct {
	coll *mongo.Collection
}

var _ ports.ProductRepository = (*ProductRepository)(nil)

// productFilter translates a catalog filter into a query document. The name
// query is matched literally, case-insensitively.
func productFilter(f entity.ProductFilter) bson.M {
	f = f.Normalize()
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Query != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
	}
	return filter
}

func (r *ProductRepository) List(ctx context.Context, f entity.ProductFilter) ([]entity.Product, error) {
	cur, err := r.coll.Find(ctx, productFilter(f), options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo: find products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode products: %w", err)
	}
	out := make([]entity.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]entity.Product, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, ok := objectID(id); ok {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []entity.Product{}, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("mongo: find products by id: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode products: %w", err)
	}
	out := make([]entity.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*entity.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	var doc productDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: find product %s: %w", id, err)
	}
	p := doc.toEntity()
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	doc := toProductDoc(p)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo: insert product: %w", err)
	}
	p.ID = doc.ID.Hex()
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	oid, ok := objectID(p.ID)
	if !ok {
		return apperr.ErrNotFound
	}
	doc := toProductDoc(p)
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return fmt.Errorf("mongo: replace product %s: %w", p.ID, err)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return apperr.ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo: delete product %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// AdjustStock applies $inc without bounds checks; a missing product is a
// no-op.
func (r *ProductRepository) AdjustStock(ctx context.Context, id string, delta int) error {
	oid, ok := objectID(id)
	if !ok {
		return nil
	}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"stock": delta}}); err != nil {
		return fmt.Errorf("mongo: adjust stock of %s: %w", id, err)
	}
	return nil
}
