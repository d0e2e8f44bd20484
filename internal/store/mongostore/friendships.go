package mongostore

import (
	"context"
	"fmt"
	"time"

	"Chatwebserver/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FriendshipsStore struct {
	client        *mongo.Client
	users         *mongo.Collection
	notifications *mongo.Collection
	now           func() time.Time
}

func NewFriendshipsStore(client *mongo.Client, db *mongo.Database) *FriendshipsStore {
	return &FriendshipsStore{
		client:        client,
		users:         db.Collection(usersCollection),
		notifications: db.Collection(notificationsCollection),
		now:           time.Now,
	}
}

func (s *FriendshipsStore) inTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (s *FriendshipsStore) CreateRequest(ctx context.Context, req domain.FriendRequest) (domain.Notification, error) {
	senderID, err := objectID(req.SenderID)
	if err != nil {
		return domain.Notification{}, err
	}
	recipientID, err := objectID(req.RecipientID)
	if err != nil {
		return domain.Notification{}, err
	}

	n := req.Notification
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}
	doc := notificationDoc{
		ID:        primitive.NewObjectID(),
		Recipient: recipientID,
		Sender:    senderID,
		Type:      string(domain.NotificationFriendRequest),
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
	}

	err = s.inTransaction(ctx, func(sc mongo.SessionContext) error {
		recipient, err := findUser(sc, s.users, bson.M{"_id": recipientID})
		if err != nil {
			return err
		}
		if containsID(recipient.Friends, senderID) ||
			containsID(recipient.FriendRequestsReceived, senderID) ||
			containsID(recipient.FriendRequestsSent, senderID) {
			return domain.ErrFriendRequestExists
		}

		if _, err := s.users.UpdateByID(sc, recipientID, bson.M{"$addToSet": bson.M{"friendRequestsReceived": senderID}}); err != nil {
			return fmt.Errorf("add received request: %w", err)
		}
		if _, err := s.users.UpdateByID(sc, senderID, bson.M{"$addToSet": bson.M{"friendRequestsSent": recipientID}}); err != nil {
			return fmt.Errorf("add sent request: %w", err)
		}
		if _, err := s.notifications.InsertOne(sc, doc); err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Notification{}, err
	}

	n.ID = doc.ID.Hex()
	n.RecipientID = req.RecipientID
	n.Read = false
	return n, nil
}

func (s *FriendshipsStore) Respond(ctx context.Context, recipientID, senderID string, status domain.FriendRequestStatus) error {
	rid, err := objectID(recipientID)
	if err != nil {
		return err
	}
	sid, err := objectID(senderID)
	if err != nil {
		return err
	}
	if !status.Valid() {
		return domain.NewValidationError(map[string]string{"status": "must be accepted or declined"})
	}

	return s.inTransaction(ctx, func(sc mongo.SessionContext) error {
		recipient, err := findUser(sc, s.users, bson.M{"_id": rid})
		if err != nil {
			return err
		}
		if !containsID(recipient.FriendRequestsReceived, sid) {
			return domain.ErrNotFound
		}

		now := s.now().UTC()
		recipientUpdate := bson.M{
			"$pull": bson.M{"friendRequestsReceived": sid},
			"$set":  bson.M{"updatedAt": now},
		}
		senderUpdate := bson.M{
			"$pull": bson.M{"friendRequestsSent": rid},
			"$set":  bson.M{"updatedAt": now},
		}
		if status == domain.FriendRequestAccepted {
			recipientUpdate["$addToSet"] = bson.M{"friends": sid}
			senderUpdate["$addToSet"] = bson.M{"friends": rid}
		}

		if _, err := s.users.UpdateByID(sc, rid, recipientUpdate); err != nil {
			return fmt.Errorf("update recipient: %w", err)
		}
		if _, err := s.users.UpdateByID(sc, sid, senderUpdate); err != nil {
			return fmt.Errorf("update sender: %w", err)
		}

		filter := bson.M{"recipient": rid, "sender": sid, "type": string(domain.NotificationFriendRequest)}
		if _, err := s.notifications.DeleteMany(sc, filter); err != nil {
			return fmt.Errorf("delete friend request notification: %w", err)
		}
		return nil
	})
}

func (s *FriendshipsStore) ListFriends(ctx context.Context, userID string) ([]domain.User, error) {
	return s.listRelated(ctx, userID, "friends", func(d userDoc) []primitive.ObjectID { return d.Friends })
}

func (s *FriendshipsStore) ListIncoming(ctx context.Context, userID string) ([]domain.User, error) {
	return s.listRelated(ctx, userID, "incoming requests", func(d userDoc) []primitive.ObjectID { return d.FriendRequestsReceived })
}

func (s *FriendshipsStore) listRelated(ctx context.Context, userID, what string, pick func(userDoc) []primitive.ObjectID) ([]domain.User, error) {
	oid, err := objectID(userID)
	if err != nil {
		return []domain.User{}, nil
	}

	me, err := findUser(ctx, s.users, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", what, err)
	}
	ids := pick(me)
	if len(ids) == 0 {
		return []domain.User{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "fullName", Value: 1}, {Key: "_id", Value: 1}})
	out, err := findUsers(ctx, s.users, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", what, err)
	}
	return out, nil
}
