package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Chatwebserver/internal/domain"
)

func TestValidateRequestUsesJSONFieldNames(t *testing.T) {
	err := validateRequest(respondRequest{SenderID: "", Status: "maybe"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Fields["senderId"] != "required" {
		t.Fatalf("senderId = %q", ve.Fields["senderId"])
	}
	if ve.Fields["status"] != "must be one of accepted, declined" {
		t.Fatalf("status = %q", ve.Fields["status"])
	}

	if err := validateRequest(sendMessageRequest{Image: "data:image/png;base64,AAAA"}); err != nil {
		t.Fatalf("image-only message: %v", err)
	}
	err = validateRequest(sendMessageRequest{})
	if !errors.As(err, &ve) || ve.Fields["text"] != "required when image is empty" {
		t.Fatalf("empty message: %v", err)
	}
}

func TestWriteDomainErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.NewValidationError(map[string]string{"x": "bad"}), http.StatusBadRequest},
		{domain.ErrEmailTaken, http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusBadRequest},
		{domain.ErrFriendRequestExists, http.StatusBadRequest},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrNotFound, http.StatusNotFound},
		{errors.New("db exploded"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		WriteDomainError(rr, tc.err)
		if rr.Code != tc.status {
			t.Fatalf("%v: status %d, want %d", tc.err, rr.Code, tc.status)
		}
	}

	rr := httptest.NewRecorder()
	WriteDomainError(rr, errors.New("secret detail"))
	if got := rr.Body.String(); got != "{\"message\":\"internal server error\"}\n" {
		t.Fatalf("500 body = %q", got)
	}
}

func TestLoginLimiter(t *testing.T) {
	l := newLoginLimiter()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < l.max; i++ {
		if !l.Allow("ip:1", now) {
			t.Fatalf("attempt %d rejected", i)
		}
	}
	if l.Allow("ip:1", now) {
		t.Fatalf("expected limit")
	}
	if !l.Allow("ip:2", now) {
		t.Fatalf("other keys are independent")
	}
	if !l.Allow("ip:1", now.Add(l.window+time.Second)) {
		t.Fatalf("window should expire")
	}
}

func TestLoginLimiterDropsStaleKeys(t *testing.T) {
	l := newLoginLimiter()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10000; i++ {
		l.Allow(fmt.Sprintf("email:user%d@x.com", i), now)
	}
	if len(l.attempts) != 10000 {
		t.Fatalf("attempts = %d, want 10000", len(l.attempts))
	}

	l.Allow("ip:1", now.Add(time.Hour))
	if len(l.attempts) != 1 {
		t.Fatalf("attempts after window = %d, want 1", len(l.attempts))
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://localhost:5173/"})
	req := httptest.NewRequest(http.MethodGet, "http://api.example.com/api/ws", nil)

	if !check(req) {
		t.Fatalf("missing origin should pass")
	}
	req.Header.Set("Origin", "http://localhost:5173")
	if !check(req) {
		t.Fatalf("configured origin should pass")
	}
	req.Header.Set("Origin", "http://api.example.com")
	if !check(req) {
		t.Fatalf("same host should pass")
	}
	req.Header.Set("Origin", "http://evil.example.com")
	if check(req) {
		t.Fatalf("foreign origin should fail")
	}
}
