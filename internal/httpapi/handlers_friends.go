package httpapi

import (
	"errors"
	"net/http"

	"Chatwebserver/internal/domain"
)

func (a *api) handleFriendsList(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	friends, err := a.friendsSvc.ListFriends(r.Context(), u.ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if friends == nil {
		friends = []domain.User{}
	}
	WriteJSON(w, http.StatusOK, friends)
}

func (a *api) handleFriendsRequests(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	incoming, err := a.friendsSvc.ListIncoming(r.Context(), u.ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if incoming == nil {
		incoming = []domain.User{}
	}
	WriteJSON(w, http.StatusOK, incoming)
}

func (a *api) handleFriendsSendRequest(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	_, err := a.friendsSvc.SendRequest(r.Context(), u, r.PathValue("recipientId"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		a.writeError(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Friend request sent successfully")
}

type respondRequest struct {
	SenderID string `json:"senderId" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=accepted declined"`
}

func (a *api) handleFriendsRespond(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req respondRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if err := validateRequest(req); err != nil {
		a.writeError(w, r, err)
		return
	}

	if err := a.friendsSvc.Respond(r.Context(), u.ID, req.SenderID, domain.FriendRequestStatus(req.Status)); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Friend request not found")
			return
		}
		a.writeError(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Request "+req.Status)
}
