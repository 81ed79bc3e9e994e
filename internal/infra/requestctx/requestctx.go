// Package requestctx carries the per-request facts that audit entries are
// stamped with. Values are immutable once attached.
package requestctx

import (
	"context"
	"time"
)

type Request struct {
	ID        string
	Start     time.Time
	IP        string
	UserAgent string
	Endpoint  string
	Method    string
	Path      string
}

// Session is the authenticated session bound to a request. UserID is zero
// for an anonymous request.
type Session struct {
	ID     string
	UserID uint
}

type requestKey struct{}
type sessionKey struct{}

func WithRequest(ctx context.Context, req Request) context.Context {
	return context.WithValue(ctx, requestKey{}, req)
}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func RequestFrom(ctx context.Context) (Request, bool) {
	if ctx == nil {
		return Request{}, false
	}
	req, ok := ctx.Value(requestKey{}).(Request)
	return req, ok
}

func SessionFrom(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// InRequest reports whether ctx belongs to an HTTP request.
func InRequest(ctx context.Context) bool {
	_, ok := RequestFrom(ctx)
	return ok
}
