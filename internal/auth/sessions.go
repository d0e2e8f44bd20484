package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const SessionCookieName = "jwt-token"

const tokenIssuer = "chatwebserver"

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenCodec signs session ids into HS256 tokens carried by the session cookie.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// NewTokenCodec copies secret. An empty secret is replaced by a random
// per-process key, so tokens do not survive a restart.
func NewTokenCodec(secret []byte) (TokenCodec, error) {
	secretCopy := make([]byte, len(secret))
	copy(secretCopy, secret)
	if len(secretCopy) == 0 {
		secretCopy = make([]byte, 32)
		if _, err := rand.Read(secretCopy); err != nil {
			return TokenCodec{}, fmt.Errorf("generate token secret: %w", err)
		}
	}
	return TokenCodec{secret: secretCopy, now: time.Now}, nil
}

func (c TokenCodec) EncodeSessionID(sessionID string, expiresAt time.Time) (string, error) {
	if sessionID == "" {
		return "", errors.New("empty session id")
	}
	now := c.now()
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// DecodeSessionID verifies signature, issuer and expiry.
func (c TokenCodec) DecodeSessionID(tokenString string) (string, bool) {
	if tokenString == "" || len(c.secret) == 0 {
		return "", false
	}

	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid || claims.SessionID == "" {
		return "", false
	}
	return claims.SessionID, true
}

func SetSessionCookie(w http.ResponseWriter, cookieValue string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    cookieValue,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
	})
}

func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}
