package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "schooltimetable"

var (
	ErrMissingSecret = errors.New("editor token secret not configured")
	ErrInvalidToken  = errors.New("invalid editor token")
)

// EditorClaims identify who may change the timetable
type EditorClaims struct {
	Editor string `json:"editor"`
	jwt.RegisteredClaims
}

// EditorTokens issues and checks HS256 bearer tokens for timetable editors
type EditorTokens struct {
	secret []byte
	now    func() time.Time
}

// NewEditorTokens creates a token issuer. An empty secret disables it.
func NewEditorTokens(secret string) *EditorTokens {
	return &EditorTokens{secret: []byte(secret), now: time.Now}
}

// Enabled reports whether a secret is configured
func (t *EditorTokens) Enabled() bool {
	return len(t.secret) > 0
}

// Issue signs a token for the editor valid for ttl
func (t *EditorTokens) Issue(editor string, ttl time.Duration) (string, error) {
	if !t.Enabled() {
		return "", ErrMissingSecret
	}

	now := t.now()
	claims := EditorClaims{
		Editor: editor,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   editor,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign editor token: %w", err)
	}
	return signed, nil
}

// Validate parses a token and returns its claims
func (t *EditorTokens) Validate(tokenString string) (*EditorClaims, error) {
	if !t.Enabled() {
		return nil, ErrMissingSecret
	}

	claims := &EditorClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Editor == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
