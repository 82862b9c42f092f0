package testutil

import (
	"net/http"
	"time"

	"trichluc/pkg/requestcontext"
)

// WithOperator adds an operator identity to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithOperator(req *http.Request, operator string) *http.Request {
	ctx := requestcontext.WithOperator(req.Context(), operator)
	return req.WithContext(ctx)
}

// WithTime pins the request time so issuedAt is deterministic in tests.
func WithTime(req *http.Request, t time.Time) *http.Request {
	ctx := requestcontext.WithTime(req.Context(), t)
	return req.WithContext(ctx)
}

// WithStation adds a station descriptor to the request context.
func WithStation(req *http.Request, station string) *http.Request {
	ctx := requestcontext.WithStation(req.Context(), station)
	return req.WithContext(ctx)
}
