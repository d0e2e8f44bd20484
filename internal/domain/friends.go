package domain

type FriendRequestStatus string

const (
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestDeclined FriendRequestStatus = "declined"
)

func (s FriendRequestStatus) Valid() bool {
	return s == FriendRequestAccepted || s == FriendRequestDeclined
}

// FriendRequest is the input to a friend-request send. Notification is
// persisted in the same transaction as the list updates.
type FriendRequest struct {
	SenderID     string
	RecipientID  string
	Notification Notification
}
