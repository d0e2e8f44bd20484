package httpapi

import (
	"net/http"

	"Chatwebserver/internal/domain"
)

func (a *api) handleNotificationsList(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	out, err := a.notificationsSvc.List(r.Context(), u.ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

func (a *api) handleNotificationsMarkRead(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	if err := a.notificationsSvc.MarkAllRead(r.Context(), u.ID); err != nil {
		a.writeError(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Notifications marked as read")
}
