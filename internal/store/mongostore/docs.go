package mongostore

import (
	"time"

	"Chatwebserver/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userDoc struct {
	ID                     primitive.ObjectID   `bson:"_id"`
	Email                  string               `bson:"email"`
	FullName               string               `bson:"fullName"`
	PasswordHash           string               `bson:"password"`
	ProfilePic             string               `bson:"profilePic"`
	Friends                []primitive.ObjectID `bson:"friends"`
	FriendRequestsSent     []primitive.ObjectID `bson:"friendRequestsSent"`
	FriendRequestsReceived []primitive.ObjectID `bson:"friendRequestsReceived"`
	CreatedAt              time.Time            `bson:"createdAt"`
	UpdatedAt              time.Time            `bson:"updatedAt"`
}

func (d userDoc) toDomain() domain.User {
	return domain.User{
		ID:                     d.ID.Hex(),
		Email:                  d.Email,
		FullName:               d.FullName,
		ProfilePic:             d.ProfilePic,
		Friends:                hexList(d.Friends),
		FriendRequestsSent:     hexList(d.FriendRequestsSent),
		FriendRequestsReceived: hexList(d.FriendRequestsReceived),
		CreatedAt:              d.CreatedAt,
		UpdatedAt:              d.UpdatedAt,
	}
}

type sessionDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    primitive.ObjectID `bson:"userId"`
	CreatedAt time.Time          `bson:"createdAt"`
	ExpiresAt time.Time          `bson:"expiresAt"`
	RevokedAt *time.Time         `bson:"revokedAt,omitempty"`
	IP        string             `bson:"ip,omitempty"`
	UserAgent string             `bson:"userAgent,omitempty"`
}

type messageDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	SenderID    primitive.ObjectID `bson:"senderId"`
	RecipientID primitive.ObjectID `bson:"recipientId"`
	Text        string             `bson:"text,omitempty"`
	Image       string             `bson:"image,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d messageDoc) toDomain() domain.Message {
	return domain.Message{
		ID:          d.ID.Hex(),
		SenderID:    d.SenderID.Hex(),
		RecipientID: d.RecipientID.Hex(),
		Text:        d.Text,
		Image:       d.Image,
		CreatedAt:   d.CreatedAt,
	}
}

type notificationDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Recipient primitive.ObjectID `bson:"recipient"`
	Sender    primitive.ObjectID `bson:"sender"`
	Type      string             `bson:"type"`
	Message   string             `bson:"message"`
	Read      bool               `bson:"read"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// toDomain fills the sender from ref when the sender document was found.
func (d notificationDoc) toDomain(ref *userDoc) domain.Notification {
	n := domain.Notification{
		ID:          d.ID.Hex(),
		RecipientID: d.Recipient.Hex(),
		Sender:      domain.UserRef{ID: d.Sender.Hex()},
		Type:        domain.NotificationType(d.Type),
		Message:     d.Message,
		Read:        d.Read,
		CreatedAt:   d.CreatedAt,
	}
	if ref != nil {
		n.Sender.FullName = ref.FullName
		n.Sender.ProfilePic = ref.ProfilePic
	}
	return n
}

func hexList(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// objectID parses a hex id. Malformed ids cannot name a stored document.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrNotFound
	}
	return oid, nil
}
