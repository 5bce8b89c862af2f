package security

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestRateLimiterWindow(t *testing.T) {
	current := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2, time.Minute, func() time.Time { return current })

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should be allowed")
	}
	if rl.Allow("a") {
		t.Error("third request in the window should be rejected")
	}
	if !rl.Allow("b") {
		t.Error("other clients have their own budget")
	}

	current = current.Add(time.Minute)
	if !rl.Allow("a") {
		t.Error("budget should refill after the window")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := newRateLimiter(0, time.Minute, time.Now)
	for i := 0; i < 100; i++ {
		if !rl.Allow("a") {
			t.Fatal("rate 0 should disable limiting")
		}
	}
}

func TestRateLimiterPrune(t *testing.T) {
	current := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	rl := newRateLimiter(1, time.Minute, func() time.Time { return current })
	rl.Allow("a")

	current = current.Add(3 * time.Minute)
	rl.prune()

	if len(rl.visitors) != 0 {
		t.Errorf("idle visitor not pruned: %v", rl.visitors)
	}
	rl.Stop()
	rl.Stop()
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remote     string
		trustProxy bool
		want       string
	}{
		{name: "forwarded chain", headers: map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, remote: "1.2.3.4:80", trustProxy: true, want: "10.0.0.1"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "10.0.0.9"}, remote: "1.2.3.4:80", trustProxy: true, want: "10.0.0.9"},
		{name: "remote addr", remote: "1.2.3.4:5678", want: "1.2.3.4"},
		{name: "forwarded ignored without proxy", headers: map[string]string{"X-Forwarded-For": "10.0.0.1"}, remote: "1.2.3.4:80", want: "1.2.3.4"},
		{name: "real ip ignored without proxy", headers: map[string]string{"X-Real-IP": "10.0.0.9"}, remote: "1.2.3.4:80", want: "1.2.3.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	generated := RequestID(r)
	if _, err := uuid.Parse(generated); err != nil {
		t.Errorf("RequestID() = %q, want a UUID", generated)
	}

	incoming := uuid.New().String()
	r.Header.Set(RequestIDHeader, incoming)
	if got := RequestID(r); got != incoming {
		t.Errorf("RequestID() = %q, want incoming %q", got, incoming)
	}

	r.Header.Set(RequestIDHeader, "not-a-uuid")
	if got := RequestID(r); got == "not-a-uuid" {
		t.Error("RequestID() accepted a malformed header")
	}

	ctx := WithRequestID(context.Background(), incoming)
	if got := RequestIDFromContext(ctx); got != incoming {
		t.Errorf("RequestIDFromContext() = %q", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("RequestIDFromContext(empty) = %q", got)
	}
}

func TestEditorTokens(t *testing.T) {
	now := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	tokens := NewEditorTokens("secret")
	tokens.now = func() time.Time { return now }

	signed, err := tokens.Issue("office", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := tokens.Validate(signed)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.Editor != "office" || claims.Subject != "office" {
		t.Errorf("claims = %+v", claims)
	}

	now = now.Add(2 * time.Hour)
	if _, err := tokens.Validate(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: err = %v, want ErrInvalidToken", err)
	}
}

func TestEditorTokensRejects(t *testing.T) {
	tokens := NewEditorTokens("secret")
	other := NewEditorTokens("other-secret")

	foreign, err := other.Issue("office", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, EditorClaims{
		Editor: "office",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	for name, token := range map[string]string{
		"wrong secret": foreign,
		"alg none":     unsigned,
		"garbage":      "abc.def.ghi",
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := tokens.Validate(token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate() err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestEditorTokensDisabled(t *testing.T) {
	tokens := NewEditorTokens("")
	if tokens.Enabled() {
		t.Fatal("empty secret should disable tokens")
	}
	if _, err := tokens.Issue("office", time.Hour); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("Issue() err = %v, want ErrMissingSecret", err)
	}
	if _, err := tokens.Validate("x"); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("Validate() err = %v, want ErrMissingSecret", err)
	}
}
