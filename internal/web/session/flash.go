package session

import (
	"context"
)

// Flash kinds
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashError   = "error"
)

// AddFlash queues a flash message on the session of ctx
func AddFlash(ctx context.Context, kind, message string) error {
	sess := FromContext(ctx)
	if sess == nil {
		return ErrSessionNotFound
	}
	sess.AddFlash(kind, message)
	return nil
}

// TakeFlashes returns and clears the flash messages of the session of ctx.
// It returns nil when the request has no session.
func TakeFlashes(ctx context.Context) []Flash {
	sess := FromContext(ctx)
	if sess == nil {
		return nil
	}
	return sess.TakeFlashes()
}
