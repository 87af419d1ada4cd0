package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	customErrors "github.com/aryan091/playtube/internal/domain/user/errors"
	"github.com/aryan091/playtube/internal/domain/user/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Hasher is the subset of the credential hasher the repo needs. Hashing lives
// here so a plaintext password never crosses the persistence boundary: Create
// and UpdatePassword are the only two paths that touch the password field.
type Hasher interface {
	Hash(plain string) (string, error)
}

type MongoUserRepo struct {
	coll   *mongo.Collection
	hasher Hasher
}

func NewMongoUserRepo(db *mongo.Database, hasher Hasher) *MongoUserRepo {
	return &MongoUserRepo{coll: db.Collection("users"), hasher: hasher}
}

// EnsureIndexes creates the unique indexes backing the username/email
// global-uniqueness invariant. Safe to call on every startup.
func (r *MongoUserRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return customErrors.WrapInternal(err, "EnsureIndexes")
	}
	return nil
}

func (r *MongoUserRepo) Create(ctx context.Context, user model.User, plainPassword string) (model.User, error) {
	hashed, err := r.hasher.Hash(plainPassword)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "hash password")
	}

	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.Username = normalize(user.Username)
	user.Email = normalize(user.Email)
	user.Password = hashed
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.User{}, customErrors.ErrAlreadyExists
		}
		return model.User{}, customErrors.WrapInternal(err, "Create")
	}
	return user, nil
}

func (r *MongoUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (model.User, error) {
	var u model.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "GetByID")
	}
	return u, nil
}

func (r *MongoUserRepo) GetByUsernameOrEmail(ctx context.Context, username, email string) (model.User, error) {
	var or []bson.M
	if username != "" {
		or = append(or, bson.M{"username": normalize(username)})
	}
	if email != "" {
		or = append(or, bson.M{"email": normalize(email)})
	}
	if len(or) == 0 {
		return model.User{}, customErrors.ErrNotFound
	}

	var u model.User
	err := r.coll.FindOne(ctx, bson.M{"$or": or}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "GetByUsernameOrEmail")
	}
	return u, nil
}

func (r *MongoUserRepo) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"refreshToken": token, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return customErrors.WrapInternal(err, "SetRefreshToken")
	}
	if res.MatchedCount == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

// RotateRefreshToken is a compare-and-swap: the update matches only while old
// is still the stored token, so two racing rotations cannot both win.
func (r *MongoUserRepo) RotateRefreshToken(ctx context.Context, id primitive.ObjectID, old, next string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "refreshToken": old},
		bson.M{"$set": bson.M{"refreshToken": next, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return customErrors.WrapInternal(err, "RotateRefreshToken")
	}
	if res.MatchedCount == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

func (r *MongoUserRepo) ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.UpdateByID(ctx, id, bson.M{
		"$unset": bson.M{"refreshToken": 1},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return customErrors.WrapInternal(err, "ClearRefreshToken")
	}
	return nil
}

func (r *MongoUserRepo) UpdatePassword(ctx context.Context, id primitive.ObjectID, plainPassword string) error {
	hashed, err := r.hasher.Hash(plainPassword)
	if err != nil {
		return customErrors.WrapInternal(err, "hash password")
	}
	res, err := r.coll.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"password": hashed, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return customErrors.WrapInternal(err, "UpdatePassword")
	}
	if res.MatchedCount == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
