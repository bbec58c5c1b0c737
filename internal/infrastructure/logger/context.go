package logger

import "context"

type contextKey string

const requestIDKey contextKey = "request_id"

// ContextWithRequestID stores a request ID in the context for downstream
// logging (e.g. the gorm adapter tagging slow queries)
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the request ID from the context, or empty
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
