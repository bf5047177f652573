package session

import (
	"context"
	"net/http"
)

// Manager is an interface that abstracts the session management
// implementation (scs in production). Handlers depend on it so tests
// can substitute a lightweight fake.
type Manager interface {
	LoadAndSave(next http.Handler) http.Handler
	Put(ctx context.Context, key string, val interface{})
	GetString(ctx context.Context, key string) string
	PopString(ctx context.Context, key string) string
	Destroy(ctx context.Context) error
	Remove(ctx context.Context, key string)
}
