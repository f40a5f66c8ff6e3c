package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const userIDKey contextKey = "user_id"

// OwnerHeader carries the caller's identity, injected by the authentication
// gateway in front of this service.
const OwnerHeader = "X-User-ID"

// RequireOwner extracts the owner identity from the request header and makes
// it available to handlers. Requests without a valid identity are rejected.
func RequireOwner() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(OwnerHeader)
			if raw == "" {
				writeUnauthorized(w, "missing "+OwnerHeader+" header")
				return
			}

			userID, err := uuid.Parse(raw)
			if err != nil {
				writeUnauthorized(w, "invalid "+OwnerHeader+" header")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFrom returns the owner identity set by RequireOwner
func UserIDFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
