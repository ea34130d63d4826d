package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/redmonkez12/marketplace-api/internal/database"
)

// userDocument is the shape of a user in the users collection
type userDocument struct {
	ID        bson.ObjectID `bson:"_id"`
	Email     string        `bson:"email"`
	Account   Account       `bson:"account"`
	Token     string        `bson:"token"`
	Hash      string        `bson:"hash"`
	Salt      string        `bson:"salt"`
	CreatedAt time.Time     `bson:"created_at,omitempty"`
	UpdatedAt time.Time     `bson:"updated_at,omitempty"`
}

// MongoRepository stores users in MongoDB
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(database.UsersCollection)}
}

func (r *MongoRepository) NewID() string {
	return bson.NewObjectID().Hex()
}

// Create inserts a new user
func (r *MongoRepository) Create(ctx context.Context, u *User) error {
	doc, err := toUserDocument(u)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	doc.CreatedAt, doc.UpdatedAt = now, now

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

// GetByID retrieves a user by ID
func (r *MongoRepository) GetByID(ctx context.Context, id string) (*User, error) {
	oid, err := database.ParseObjectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}}, "id")
}

// GetByEmail retrieves a user by email
func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}}, "email")
}

// GetByToken retrieves the owner of a bearer token
func (r *MongoRepository) GetByToken(ctx context.Context, token string) (*User, error) {
	return r.findOne(ctx, bson.D{{Key: "token", Value: token}}, "token")
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.D, by string) (*User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", by, err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*User, error) {
	oids := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := database.ParseObjectID(id); err == nil {
			oids = append(oids, oid)
		}
	}

	users := make(map[string]*User, len(oids))
	if len(oids) == 0 {
		return users, nil
	}

	cursor, err := r.coll.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}})
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	for i := range docs {
		u := docs[i].toModel()
		users[u.ID] = u
	}
	return users, nil
}

// Update writes the mutable fields of the user
func (r *MongoRepository) Update(ctx context.Context, u *User) error {
	oid, err := database.ParseObjectID(u.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "email", Value: u.Email},
			{Key: "account", Value: u.Account},
			{Key: "updated_at", Value: now},
		}}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	u.UpdatedAt = now
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := database.ParseObjectID(id)
	if err != nil {
		return err
	}

	result, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func toUserDocument(u *User) (*userDocument, error) {
	oid, err := database.ParseObjectID(u.ID)
	if err != nil {
		return nil, err
	}
	return &userDocument{
		ID:        oid,
		Email:     u.Email,
		Account:   u.Account,
		Token:     u.Token,
		Hash:      u.Hash,
		Salt:      u.Salt,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}, nil
}

func (d *userDocument) toModel() *User {
	return &User{
		ID:        d.ID.Hex(),
		Email:     d.Email,
		Account:   d.Account,
		Token:     d.Token,
		Hash:      d.Hash,
		Salt:      d.Salt,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
