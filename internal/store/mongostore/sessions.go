package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Chatwebserver/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type SessionsStore struct {
	sessions *mongo.Collection
	now      func() time.Time
}

func NewSessionsStore(db *mongo.Database) *SessionsStore {
	return &SessionsStore{sessions: db.Collection(sessionsCollection), now: time.Now}
}

func (s *SessionsStore) CreateSession(ctx context.Context, userID string, expiresAt time.Time, ip, userAgent string) (string, error) {
	uid, err := objectID(userID)
	if err != nil {
		return "", err
	}

	doc := sessionDoc{
		ID:        primitive.NewObjectID(),
		UserID:    uid,
		CreatedAt: s.now().UTC(),
		ExpiresAt: expiresAt.UTC(),
		IP:        ip,
		UserAgent: userAgent,
	}
	if _, err := s.sessions.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return doc.ID.Hex(), nil
}

func (s *SessionsStore) GetSession(ctx context.Context, sessionID string) (domain.Session, error) {
	oid, err := objectID(sessionID)
	if err != nil {
		return domain.Session{}, err
	}

	filter := bson.M{
		"_id":       oid,
		"revokedAt": bson.M{"$exists": false},
		"expiresAt": bson.M{"$gt": s.now().UTC()},
	}
	var doc sessionDoc
	if err := s.sessions.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Session{}, domain.ErrNotFound
		}
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}

	return domain.Session{
		ID:        doc.ID.Hex(),
		UserID:    doc.UserID.Hex(),
		CreatedAt: doc.CreatedAt,
		ExpiresAt: doc.ExpiresAt,
		RevokedAt: doc.RevokedAt,
	}, nil
}

func (s *SessionsStore) RevokeSession(ctx context.Context, sessionID string, when time.Time) error {
	oid, err := objectID(sessionID)
	if err != nil {
		return nil
	}

	filter := bson.M{"_id": oid, "revokedAt": bson.M{"$exists": false}}
	if _, err := s.sessions.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"revokedAt": when.UTC()}}); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
