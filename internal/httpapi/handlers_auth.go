package httpapi

import (
	"net/http"
	"strings"
	"time"

	"Chatwebserver/internal/auth"
	"Chatwebserver/internal/domain"
	"Chatwebserver/internal/service"
)

type registerRequest struct {
	FullName string `json:"fullName" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (a *api) handleAuthRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateRequest(req); err != nil {
		a.writeError(w, r, err)
		return
	}

	u, sessID, err := a.authSvc.Register(r.Context(), req.FullName, req.Email, req.Password, clientIP(r), r.UserAgent())
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	if err := a.issueSessionCookie(w, sessID); err != nil {
		a.writeError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, u)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (a *api) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if err := validateRequest(req); err != nil {
		a.writeError(w, r, err)
		return
	}

	now := time.Now()
	ip := clientIP(r)
	if !a.loginLimiter.Allow("ip:"+ip, now) || !a.loginLimiter.Allow("email:"+service.NormalizeEmail(req.Email), now) {
		WriteError(w, http.StatusTooManyRequests, "too many attempts")
		return
	}

	u, sessID, err := a.authSvc.Login(r.Context(), req.Email, req.Password, ip, r.UserAgent())
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	if err := a.issueSessionCookie(w, sessID); err != nil {
		a.writeError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, u)
}

// handleAuthLogout is public so a client holding an expired or revoked
// cookie can still clear it. The session is revoked only when the cookie
// decodes.
func (a *api) handleAuthLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(auth.SessionCookieName); err == nil && c.Value != "" {
		if sessID, ok := a.tokens.DecodeSessionID(c.Value); ok {
			if err := a.authSvc.Logout(r.Context(), sessID); err != nil {
				a.log().Warn("logout: revoke session failed", "err", err)
			}
		}
	}
	auth.ClearSessionCookie(w, a.cookieSecure)
	WriteMessage(w, http.StatusOK, "Logged out successfully")
}

func (a *api) handleAuthMe(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	WriteJSON(w, http.StatusOK, u)
}

type updateProfileRequest struct {
	FullName   *string `json:"fullName,omitempty" validate:"omitempty,max=64"`
	ProfilePic *string `json:"profilePic,omitempty"`
}

func (a *api) handleAuthUpdateProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if err := validateRequest(req); err != nil {
		a.writeError(w, r, err)
		return
	}

	updated, err := a.profileSvc.Update(r.Context(), u.ID, req.FullName, req.ProfilePic)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

func (a *api) issueSessionCookie(w http.ResponseWriter, sessID string) error {
	token, err := a.tokens.EncodeSessionID(sessID, time.Now().Add(a.sessionTTL))
	if err != nil {
		return err
	}
	auth.SetSessionCookie(w, token, a.sessionTTL, a.cookieSecure)
	return nil
}
