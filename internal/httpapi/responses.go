package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"Chatwebserver/internal/domain"
)

type errorBody struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type messageBody struct {
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, errorBody{Message: message})
}

func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, messageBody{Message: message})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteDomainError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		WriteJSON(w, http.StatusBadRequest, errorBody{Message: validationMessage(ve.Fields), Fields: ve.Fields})
	case errors.Is(err, domain.ErrValidation):
		WriteError(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, domain.ErrEmailTaken):
		WriteError(w, http.StatusBadRequest, "email already registered")
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteError(w, http.StatusBadRequest, "invalid credentials")
	case errors.Is(err, domain.ErrFriendRequestExists):
		WriteError(w, http.StatusBadRequest, "Friend request already sent or already friends")
	case errors.Is(err, domain.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not found")
	default:
		WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeError is WriteDomainError plus a log line for errors that map to 500.
func (a *api) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if !isClientError(err) {
		fields := []any{"method", r.Method, "path", r.URL.Path, "err", err}
		if rid, ok := GetRequestID(r.Context()); ok {
			fields = append(fields, "request_id", rid)
		}
		a.log().Error("request failed", fields...)
	}
	WriteDomainError(w, err)
}

func isClientError(err error) bool {
	for _, target := range []error{
		domain.ErrValidation,
		domain.ErrEmailTaken,
		domain.ErrInvalidCredentials,
		domain.ErrFriendRequestExists,
		domain.ErrUnauthorized,
		domain.ErrNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func validationMessage(fields map[string]string) string {
	if len(fields) == 0 {
		return "invalid request"
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return strings.Join(parts, "; ")
}
