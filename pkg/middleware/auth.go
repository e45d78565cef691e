package middleware

import (
	"context"
	"net/http"
	"strings"

	"assetbook/pkg/logger"
	"assetbook/pkg/model"
	"assetbook/pkg/token"
)

const ActorKey contextKey = "actor"

// Authentication verifies the bearer token and stores the reconstructed
// actor in the request context. Requests without a valid token are rejected;
// the actor context is rebuilt from claims on every request, never cached.
func Authentication(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				reject(w, log, r, "missing credentials")
				return
			}

			actor, err := token.ParseActor(secret, raw)
			if err != nil {
				reject(w, log, r, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), ActorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the authenticated actor stored by Authentication.
func ActorFromContext(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(model.Actor)
	return actor, ok
}

// bearerToken accepts the Authorization header or, for websocket clients
// that cannot set headers, a "token" query parameter.
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if strings.HasPrefix(header, "Bearer ") {
			return strings.TrimPrefix(header, "Bearer ")
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func reject(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.Warn("Unauthenticated request",
		"request_id", RequestID(r.Context()),
		"path", r.URL.Path,
		"reason", reason,
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Authentication required"}`))
}
