package httpapi

import (
	"errors"
	"net/http"

	"Chatwebserver/internal/domain"
)

func (a *api) handleMessagesConversation(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	msgs, err := a.messagesSvc.Conversation(r.Context(), u.ID, r.PathValue("userId"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, msgs)
}

type sendMessageRequest struct {
	Text  string `json:"text,omitempty" validate:"required_without=Image,max=5000"`
	Image string `json:"image,omitempty"`
}

type sendMessageResponse struct {
	Message    string         `json:"message"`
	NewMessage domain.Message `json:"newMessage"`
}

func (a *api) handleMessagesSend(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req sendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if err := validateRequest(req); err != nil {
		a.writeError(w, r, err)
		return
	}

	msg, err := a.messagesSvc.Send(r.Context(), u.ID, r.PathValue("userId"), req.Text, req.Image)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		a.writeError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, sendMessageResponse{Message: "Message sent successfully", NewMessage: msg})
}
