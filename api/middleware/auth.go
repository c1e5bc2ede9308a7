package middleware

import (
	"net/http"

	"github.com/casspea/casspea-backend/api/responses"
	pkgerrors "github.com/casspea/casspea-backend/pkg/errors"
	"github.com/casspea/casspea-backend/pkg/logger"
)

// RequireUser rejects requests whose caller is not an authenticated user.
func RequireUser(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			resolved, ok := IdentityFromContext(ctx)
			if !ok || !resolved.Owner.IsUser() {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
