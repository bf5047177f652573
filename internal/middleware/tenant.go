package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-parish-platform/internal/data"
)

const parishContextKey = contextKey("parish")

// ParishResolver looks up a parish by its URL slug. Satisfied by
// data.ParishRepository.
type ParishResolver interface {
	GetParishBySlug(ctx context.Context, slug string) (*data.Parish, error)
}

// ResolveParish loads the tenant named by the {parish} URL parameter and
// stores it in the request context. Every route under /p/{parish} and
// the admin/builder APIs run behind it; an unknown slug is a plain 404.
func ResolveParish(resolver ParishResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug := chi.URLParam(r, "parish")
			if slug == "" {
				http.NotFound(w, r)
				return
			}
			parish, err := resolver.GetParishBySlug(r.Context(), slug)
			if err != nil {
				if errors.Is(err, data.ErrNotFound) {
					http.NotFound(w, r)
					return
				}
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			ctx := context.WithValue(r.Context(), parishContextKey, parish)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetParish retrieves the resolved parish from the request context, or
// nil outside a tenant-scoped route.
func GetParish(ctx context.Context) *data.Parish {
	if p, ok := ctx.Value(parishContextKey).(*data.Parish); ok {
		return p
	}
	return nil
}
