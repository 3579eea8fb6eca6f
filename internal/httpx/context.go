package httpx

import (
	"context"
	"net/http"
)

type contextKey string

const (
	profileIDKey contextKey = "profileID"
	requestIDKey contextKey = "requestID"
)

// ProfileIDFrom retrieves the browser profile ID from the request context.
func ProfileIDFrom(r *http.Request) string {
	return ProfileIDFromContext(r.Context())
}

func ProfileIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(profileIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithProfile returns a new context carrying the browser profile ID.
func ContextWithProfile(ctx context.Context, profileID string) context.Context {
	return context.WithValue(ctx, profileIDKey, profileID)
}

// RequestIDFrom retrieves the request ID from the request context.
func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}
