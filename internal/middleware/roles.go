package middleware

import (
	"net/http"
	"slices"

	"github.com/baharkarakas/points-backend/internal/api/httpx"
)

const (
	RightTransferPoints = "transferPoints"
	RightViewTransfers  = "viewTransfers"
)

var roleRights = map[string][]string{
	"user":  {RightTransferPoints, RightViewTransfers},
	"admin": {RightTransferPoints, RightViewTransfers},
}

// RequireRight allows the request only when the authenticated role grants need.
func RequireRight(need string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := Role(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "please authenticate", nil)
				return
			}
			if !slices.Contains(roleRights[role], need) {
				httpx.WriteError(w, http.StatusForbidden, "forbidden", "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
