package offer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/redmonkez12/marketplace-api/internal/database"
	"github.com/redmonkez12/marketplace-api/internal/imagestore"
)

// offerDocument is the shape of an offer in the offers collection
type offerDocument struct {
	ID          bson.ObjectID        `bson:"_id"`
	Name        string               `bson:"product_name"`
	Description string               `bson:"product_description"`
	Price       float64              `bson:"product_price"`
	Details     Details              `bson:"product_details"`
	Image       *imagestore.ImageRef `bson:"product_image"`
	Owner       bson.ObjectID        `bson:"owner,omitempty"`
	CreatedAt   time.Time            `bson:"created_at,omitempty"`
	UpdatedAt   time.Time            `bson:"updated_at,omitempty"`
}

// MongoRepository stores offers in MongoDB
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(database.OffersCollection)}
}

func (r *MongoRepository) NewID() string {
	return bson.NewObjectID().Hex()
}

func (r *MongoRepository) Create(ctx context.Context, o *Offer) error {
	oid, err := database.ParseObjectID(o.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	doc := offerDocument{
		ID:          oid,
		Name:        o.Name,
		Description: o.Description,
		Price:       o.Price,
		Details:     o.Details,
		Image:       o.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if o.OwnerID != "" {
		if doc.Owner, err = database.ParseObjectID(o.OwnerID); err != nil {
			return err
		}
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}

	o.CreatedAt, o.UpdatedAt = now, now
	return nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*Offer, error) {
	oid, err := database.ParseObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc offerDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	return doc.toModel(), nil
}

func (r *MongoRepository) Update(ctx context.Context, o *Offer) error {
	oid, err := database.ParseObjectID(o.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "product_name", Value: o.Name},
			{Key: "product_description", Value: o.Description},
			{Key: "product_price", Value: o.Price},
			{Key: "product_details", Value: o.Details},
			{Key: "product_image", Value: o.Image},
			{Key: "updated_at", Value: now},
		}}},
	)
	if err != nil {
		return fmt.Errorf("failed to update offer: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	o.UpdatedAt = now
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := database.ParseObjectID(id)
	if err != nil {
		return err
	}

	result, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Search(ctx context.Context, p SearchParams) ([]*Offer, int64, error) {
	filter := searchFilter(p)

	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count offers: %w", err)
	}

	opts := options.Find().
		SetSkip(int64(p.Skip())).
		SetLimit(int64(p.Limit))
	if s := searchSort(p.Sort); s != nil {
		opts.SetSort(s)
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search offers: %w", err)
	}

	var docs []offerDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode offers: %w", err)
	}

	offers := make([]*Offer, 0, len(docs))
	for i := range docs {
		offers = append(offers, docs[i].toModel())
	}
	return offers, count, nil
}

// searchFilter translates the search parameters into a query document.
// The title is matched literally, case-insensitively.
func searchFilter(p SearchParams) bson.D {
	filter := bson.D{}

	if p.Title != "" {
		filter = append(filter, bson.E{Key: "product_name", Value: bson.Regex{
			Pattern: regexp.QuoteMeta(p.Title),
			Options: "i",
		}})
	}

	price := bson.D{}
	if p.PriceMin != nil {
		price = append(price, bson.E{Key: "$gte", Value: *p.PriceMin})
	}
	if p.PriceMax != nil {
		price = append(price, bson.E{Key: "$lte", Value: *p.PriceMax})
	}
	if len(price) > 0 {
		filter = append(filter, bson.E{Key: "product_price", Value: price})
	}

	return filter
}

// searchSort returns nil for natural order
func searchSort(order SortOrder) bson.D {
	switch order {
	case SortPriceAsc:
		return bson.D{{Key: "product_price", Value: 1}}
	case SortPriceDesc:
		return bson.D{{Key: "product_price", Value: -1}}
	}
	return nil
}

func (d *offerDocument) toModel() *Offer {
	o := &Offer{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Details:     d.Details,
		Image:       d.Image,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if !d.Owner.IsZero() {
		o.OwnerID = d.Owner.Hex()
	}
	return o
}
