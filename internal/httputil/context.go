package httputil

import (
	"context"
	"net/http"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID stores the request id in the request context
func WithRequestID(r *http.Request, requestID string) *http.Request {
	ctx := context.WithValue(r.Context(), requestIDKey, requestID)
	return r.WithContext(ctx)
}

// GetRequestID returns the request id, or "" outside the RequestID middleware
func GetRequestID(r *http.Request) string {
	requestID, _ := r.Context().Value(requestIDKey).(string)
	return requestID
}
