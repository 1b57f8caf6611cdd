package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	sessionIDKey contextKey = "session_id"
	userIDKey    contextKey = "user_id"
	userEmailKey contextKey = "user_email"
)

// SessionMiddleware resolves the browsing session from the X-Session-ID
// header, minting a fresh one when absent. The session id keys all client
// state: cart snapshot, draft slot, processed-reference marker.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get("X-Session-ID")
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		w.Header().Set("X-Session-ID", sessionID)
		ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityMiddleware lifts the authenticated identity from headers. Real
// token validation lives upstream; this subsystem only needs the identity to
// be present at checkout time.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if userID := r.Header.Get("X-User-ID"); userID != "" {
			ctx = context.WithValue(ctx, userIDKey, userID)
		}
		if email := r.Header.Get("X-User-Email"); email != "" {
			ctx = context.WithValue(ctx, userEmailKey, email)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getSessionID(ctx context.Context) string {
	if sessionID, ok := ctx.Value(sessionIDKey).(string); ok {
		return sessionID
	}
	return ""
}

func getUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}

func getUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(userEmailKey).(string); ok {
		return email
	}
	return ""
}
