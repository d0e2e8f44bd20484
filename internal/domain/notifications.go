package domain

import "time"

type NotificationType string

const (
	NotificationFriendRequest NotificationType = "friend_request"
	NotificationNewMessage    NotificationType = "new_message"
)

// UserRef is the populated sender of a notification.
type UserRef struct {
	ID         string `json:"_id"`
	FullName   string `json:"fullName"`
	ProfilePic string `json:"profilePic"`
}

type Notification struct {
	ID          string           `json:"_id"`
	RecipientID string           `json:"recipient"`
	Sender      UserRef          `json:"sender"`
	Type        NotificationType `json:"type"`
	Message     string           `json:"message"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"createdAt"`
}
