package domain

import "time"

// User is the public view of an account. The relationship lists hold user ids.
type User struct {
	ID                     string    `json:"_id"`
	Email                  string    `json:"email"`
	FullName               string    `json:"fullName"`
	ProfilePic             string    `json:"profilePic"`
	Friends                []string  `json:"friends"`
	FriendRequestsSent     []string  `json:"friendRequestsSent"`
	FriendRequestsReceived []string  `json:"friendRequestsReceived"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

type UserWithPassword struct {
	User
	PasswordHash string
}

// ProfileUpdate carries the optional fields of an update-profile call.
// A nil field is left untouched.
type ProfileUpdate struct {
	FullName   *string
	ProfilePic *string
}

type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}
