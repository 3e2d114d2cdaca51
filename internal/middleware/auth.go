package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/maisonlux/ateliergo/internal/utils"
)

type contextKey string

const ActorContextKey contextKey = "actor"

// Auth verifies bearer tokens and puts the actor identity in the request
// context. Every stage transition and technical note records this actor.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			actor, err := utils.ValidateToken(parts[1], secret)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ActorContextKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the authenticated actor, or nil outside the
// auth middleware.
func ActorFromContext(ctx context.Context) *utils.ActorClaims {
	actor, _ := ctx.Value(ActorContextKey).(*utils.ActorClaims)
	return actor
}
