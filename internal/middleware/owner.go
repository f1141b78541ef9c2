package middleware

import (
	"context"
	"net/http"
	"strings"

	"mockinterview/ai/internal/models"
	"mockinterview/ai/internal/utils"
)

const (
	OwnerHeader = "X-User-ID"

	ownerKey contextKey = "owner_id"
)

// RequireOwner takes the caller identity from X-User-ID, set by the gateway
// after authentication. Requests without it are rejected with 401.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := strings.TrimSpace(r.Header.Get(OwnerHeader))
		if owner == "" {
			utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
				Code:    "missing_user",
				Message: OwnerHeader + " header is required",
			})
			return
		}
		ctx := context.WithValue(r.Context(), ownerKey, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OwnerID returns the identity stored by RequireOwner.
func OwnerID(r *http.Request) string {
	owner, _ := r.Context().Value(ownerKey).(string)
	return owner
}
