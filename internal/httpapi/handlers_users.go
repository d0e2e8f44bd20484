package httpapi

import (
	"net/http"

	"Chatwebserver/internal/domain"
)

func (a *api) handleUsersFind(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	users, err := a.usersSvc.Search(r.Context(), r.URL.Query().Get("query"), u.ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, users)
}

type contactsResponse struct {
	Message string        `json:"message"`
	Users   []domain.User `json:"users"`
}

func (a *api) handleMessagesUsers(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	users, err := a.usersSvc.Contacts(r.Context(), u.ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, contactsResponse{Message: "List of all connected users", Users: users})
}
