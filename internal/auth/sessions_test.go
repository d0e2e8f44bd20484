package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTokenCodec_SignAndVerify(t *testing.T) {
	codec, err := NewTokenCodec([]byte(strings.Repeat("x", 32)))
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}

	encoded, err := codec.EncodeSessionID("abc", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("EncodeSessionID: %v", err)
	}
	if encoded == "abc" || strings.Count(encoded, ".") != 2 {
		t.Fatalf("expected signed token, got %q", encoded)
	}

	id, ok := codec.DecodeSessionID(encoded)
	if !ok || id != "abc" {
		t.Fatalf("expected decode ok for signed token")
	}

	if _, ok := codec.DecodeSessionID(encoded + "x"); ok {
		t.Fatalf("expected tampered token to fail verification")
	}

	other, err := NewTokenCodec([]byte(strings.Repeat("y", 32)))
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	if _, ok := other.DecodeSessionID(encoded); ok {
		t.Fatalf("expected token signed with another secret to fail")
	}
}

func TestTokenCodec_Expired(t *testing.T) {
	codec, err := NewTokenCodec([]byte(strings.Repeat("x", 32)))
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	encoded, err := codec.EncodeSessionID("abc", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("EncodeSessionID: %v", err)
	}
	if _, ok := codec.DecodeSessionID(encoded); ok {
		t.Fatalf("expected expired token to fail")
	}
}

func TestTokenCodec_EmptySecretGeneratesKey(t *testing.T) {
	a, err := NewTokenCodec(nil)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	b, err := NewTokenCodec(nil)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}

	encoded, err := a.EncodeSessionID("abc", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("EncodeSessionID: %v", err)
	}
	if id, ok := a.DecodeSessionID(encoded); !ok || id != "abc" {
		t.Fatalf("expected same codec to verify its token")
	}
	if _, ok := b.DecodeSessionID(encoded); ok {
		t.Fatalf("expected independent random secrets")
	}
	if _, ok := a.DecodeSessionID(""); ok {
		t.Fatalf("expected empty token to fail")
	}
}

func TestSessionCookieHelpers(t *testing.T) {
	rr := httptest.NewRecorder()
	SetSessionCookie(rr, "v", 10*time.Minute, false)

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	if cookies[0].Name != SessionCookieName {
		t.Fatalf("unexpected cookie name: %s", cookies[0].Name)
	}
	if cookies[0].HttpOnly != true || cookies[0].SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie attributes")
	}

	rr = httptest.NewRecorder()
	ClearSessionCookie(rr, false)
	cookies = rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	if cookies[0].MaxAge != -1 {
		t.Fatalf("expected MaxAge=-1 on clear")
	}
}
