package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"Chatwebserver/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UsersStore struct {
	users *mongo.Collection
	now   func() time.Time
}

func NewUsersStore(db *mongo.Database) *UsersStore {
	return &UsersStore{users: db.Collection(usersCollection), now: time.Now}
}

func (s *UsersStore) CreateUser(ctx context.Context, email, fullName, passwordHash string) (domain.User, error) {
	now := s.now().UTC()
	doc := userDoc{
		ID:                     primitive.NewObjectID(),
		Email:                  email,
		FullName:               fullName,
		PasswordHash:           passwordHash,
		Friends:                []primitive.ObjectID{},
		FriendRequestsSent:     []primitive.ObjectID{},
		FriendRequestsReceived: []primitive.ObjectID{},
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *UsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return domain.User{}, err
	}

	doc, err := findUser(ctx, s.users, bson.M{"_id": oid})
	if err != nil {
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *UsersStore) GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error) {
	doc, err := findUser(ctx, s.users, bson.M{"email": email})
	if err != nil {
		return domain.UserWithPassword{}, fmt.Errorf("get user by email: %w", err)
	}
	return domain.UserWithPassword{User: doc.toDomain(), PasswordHash: doc.PasswordHash}, nil
}

func (s *UsersStore) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (domain.User, error) {
	oid, err := objectID(userID)
	if err != nil {
		return domain.User{}, err
	}

	set := bson.M{"updatedAt": s.now().UTC()}
	if update.FullName != nil {
		set["fullName"] = *update.FullName
	}
	if update.ProfilePic != nil {
		set["profilePic"] = *update.ProfilePic
	}

	var doc userDoc
	err = s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *UsersStore) SearchUsers(ctx context.Context, q string, limit int, excludeUserID string) ([]domain.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	filter := searchFilter(q, excludeUserID)
	opts := options.Find().
		SetSort(bson.D{{Key: "fullName", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	out, err := findUsers(ctx, s.users, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return out, nil
}

func (s *UsersStore) ListUsersExcept(ctx context.Context, userID string) ([]domain.User, error) {
	filter := bson.M{}
	if oid, err := objectID(userID); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}
	opts := options.Find().SetSort(bson.D{{Key: "fullName", Value: 1}, {Key: "_id", Value: 1}})

	out, err := findUsers(ctx, s.users, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// searchFilter matches q as a case-insensitive substring of full name or email.
func searchFilter(q, excludeUserID string) bson.M {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	filter := bson.M{
		"$or": bson.A{
			bson.M{"fullName": pattern},
			bson.M{"email": pattern},
		},
	}
	if oid, err := objectID(excludeUserID); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}
	return filter
}

func findUser(ctx context.Context, coll *mongo.Collection, filter any) (userDoc, error) {
	var doc userDoc
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return userDoc{}, domain.ErrNotFound
		}
		return userDoc{}, err
	}
	return doc, nil
}

func findUsers(ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]domain.User, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
