package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"dymm/internal/http/respond"

	"github.com/go-chi/chi/v5"
)

type ctxKey string

const avatarIDKey ctxKey = "avatar_id"

func AvatarIDFromContext(ctx context.Context) (uint64, bool) {
	v := ctx.Value(avatarIDKey)
	id, ok := v.(uint64)
	return id, ok
}

// WithAvatarID stores an authenticated avatar id; used by RequireAuth and tests.
func WithAvatarID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, avatarIDKey, id)
}

// RequireAuth accepts a bearer token of the given kind.
func RequireAuth(jwtSvc *JWT, kind Kind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(h, "Bearer ") {
				respond.Unauthorized(w, "Unauthorized, missing token", 0)
				return
			}
			token := strings.TrimPrefix(h, "Bearer ")

			claims, err := jwtSvc.Verify(token, kind)
			if errors.Is(err, ErrTokenExpired) {
				respond.Forbidden(w, "Forbidden, token expired", respond.TokenExpired)
				return
			}
			if err != nil {
				respond.Forbidden(w, "Forbidden, invalid token", respond.TokenInvalid)
				return
			}

			id, _ := claims.AvatarID()
			next.ServeHTTP(w, r.WithContext(WithAvatarID(r.Context(), id)))
		})
	}
}

// RequireOwner rejects requests whose URL avatar id differs from the
// authenticated one. Must run after RequireAuth.
func RequireOwner(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := AvatarIDFromContext(r.Context())
			if !ok {
				respond.Unauthorized(w, "Unauthorized, missing token", 0)
				return
			}
			want, err := strconv.ParseUint(chi.URLParam(r, param), 10, 64)
			if err != nil {
				respond.BadRequest(w, "Bad request, invalid avatar id")
				return
			}
			if want != id {
				respond.Forbidden(w, "Forbidden, avatar mismatch", 0)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
