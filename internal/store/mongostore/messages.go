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

type MessagesStore struct {
	messages *mongo.Collection
}

func NewMessagesStore(db *mongo.Database) *MessagesStore {
	return &MessagesStore{messages: db.Collection(messagesCollection)}
}

func (s *MessagesStore) CreateMessage(ctx context.Context, msg domain.NewMessage) (domain.Message, error) {
	from, err := objectID(msg.SenderID)
	if err != nil {
		return domain.Message{}, err
	}
	to, err := objectID(msg.RecipientID)
	if err != nil {
		return domain.Message{}, err
	}

	doc := messageDoc{
		ID:          primitive.NewObjectID(),
		SenderID:    from,
		RecipientID: to,
		Text:        msg.Text,
		Image:       msg.Image,
		CreatedAt:   msg.CreatedAt.UTC(),
	}
	if _, err := s.messages.InsertOne(ctx, doc); err != nil {
		return domain.Message{}, fmt.Errorf("create message: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *MessagesStore) ListConversation(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	a, errA := objectID(userA)
	b, errB := objectID(userB)
	if errA != nil || errB != nil {
		return []domain.Message{}, nil
	}

	cur, err := s.messages.Find(ctx, conversationFilter(a, b),
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	defer cur.Close(ctx)

	var docs []messageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}

	out := make([]domain.Message, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func conversationFilter(a, b primitive.ObjectID) bson.M {
	return bson.M{
		"$or": bson.A{
			bson.M{"senderId": a, "recipientId": b},
			bson.M{"senderId": b, "recipientId": a},
		},
	}
}
