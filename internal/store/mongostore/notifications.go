package mongostore

import (
	"context"
	"fmt"

	"Chatwebserver/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationsStore struct {
	notifications *mongo.Collection
	users         *mongo.Collection
}

func NewNotificationsStore(db *mongo.Database) *NotificationsStore {
	return &NotificationsStore{
		notifications: db.Collection(notificationsCollection),
		users:         db.Collection(usersCollection),
	}
}

func (s *NotificationsStore) ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	oid, err := objectID(userID)
	if err != nil {
		return []domain.Notification{}, nil
	}

	cur, err := s.notifications.Find(ctx, bson.M{"recipient": oid},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer cur.Close(ctx)

	var docs []notificationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	senders, err := s.loadSenders(ctx, docs)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Notification, 0, len(docs))
	for _, d := range docs {
		var ref *userDoc
		if u, ok := senders[d.Sender]; ok {
			ref = &u
		}
		out = append(out, d.toDomain(ref))
	}
	return out, nil
}

func (s *NotificationsStore) loadSenders(ctx context.Context, docs []notificationDoc) (map[primitive.ObjectID]userDoc, error) {
	seen := make(map[primitive.ObjectID]bool, len(docs))
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		if !seen[d.Sender] {
			seen[d.Sender] = true
			ids = append(ids, d.Sender)
		}
	}

	out := make(map[primitive.ObjectID]userDoc, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"fullName": 1, "profilePic": 1}))
	if err != nil {
		return nil, fmt.Errorf("load notification senders: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u userDoc
		if err := cur.Decode(&u); err != nil {
			return nil, fmt.Errorf("decode notification sender: %w", err)
		}
		out[u.ID] = u
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("load notification senders: %w", err)
	}
	return out, nil
}

func (s *NotificationsStore) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	oid, err := objectID(userID)
	if err != nil {
		return 0, nil
	}

	res, err := s.notifications.UpdateMany(ctx,
		bson.M{"recipient": oid, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}
