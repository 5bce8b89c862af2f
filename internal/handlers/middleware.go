package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"schooltimetable/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const EditorContextKey ContextKey = "editor"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens  *security.EditorTokens
	limiter *security.RateLimiter
	debug   bool
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(tokens *security.EditorTokens, limiter *security.RateLimiter, debug bool) *Middleware {
	return &Middleware{
		tokens:  tokens,
		limiter: limiter,
		debug:   debug,
	}
}

// RequireEditor requires a valid editor bearer token. It lets every request
// through when no token secret is configured.
func (m *Middleware) RequireEditor(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.tokens == nil || !m.tokens.Enabled() {
			next(w, r)
			return
		}

		raw, ok := bearerToken(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="timetable"`)
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		claims, err := m.tokens.Validate(raw)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="timetable", error="invalid_token"`)
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "Rejected editor token", err)
			return
		}

		if m.debug {
			log.Printf("[DEBUG] Editor %s: %s %s", claims.Editor, r.Method, r.URL.Path)
		}

		ctx := context.WithValue(r.Context(), EditorContextKey, claims.Editor)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit rejects clients that exceed the configured request rate
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter != nil && !m.limiter.Allow(m.limiter.ClientKey(r)) {
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

// Editor wraps a mutating handler with the rate limit and editor check
func (m *Middleware) Editor(next http.HandlerFunc) http.HandlerFunc {
	return m.RateLimit(m.RequireEditor(next))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging middleware logs HTTP requests with their status and request id
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := security.RequestID(r)
		w.Header().Set(security.RequestIDHeader, requestID)
		r = r.WithContext(security.WithRequestID(r.Context(), requestID))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Printf("%s %s %d %s id=%s", r.Method, r.URL.Path, rec.status, time.Since(start), requestID)
	})
}

// GetEditorFromContext returns the editor set by RequireEditor, or ""
func GetEditorFromContext(ctx context.Context) string {
	editor, _ := ctx.Value(EditorContextKey).(string)
	return editor
}

// editorOf names the editor behind a request in change logs
func editorOf(r *http.Request) string {
	if editor := GetEditorFromContext(r.Context()); editor != "" {
		return editor
	}
	return "anonymous"
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
