package domain

import "time"

type Message struct {
	ID          string    `json:"_id"`
	SenderID    string    `json:"senderId"`
	RecipientID string    `json:"recipientId"`
	Text        string    `json:"text,omitempty"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewMessage is the input to a message send after validation.
type NewMessage struct {
	SenderID    string
	RecipientID string
	Text        string
	Image       string
	CreatedAt   time.Time
}
