package middleware

import (
	"net/http"
	"strings"

	"github.com/casspea/casspea-backend/api/responses"
	"github.com/casspea/casspea-backend/internal/identity"
	"github.com/casspea/casspea-backend/pkg/config"
	"github.com/casspea/casspea-backend/pkg/logger"
)

const sessionIDHeader = "X-Session-Id"

// Session resolves the caller on every request: a bearer token maps to a
// user, a known session cookie to a guest, and anything else mints a fresh
// guest session whose id is handed back via cookie and response header.
func Session(resolver *identity.Resolver, cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			bearer := bearerToken(r)
			sessionID := requestSessionID(r, cfg.CookieName)

			resolved, err := resolver.Resolve(ctx, bearer, sessionID)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			if resolved.NewSession {
				id := *resolved.Owner.SessionID
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(cfg.TTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
				w.Header().Set(sessionIDHeader, id)
			}

			if logg != nil {
				if resolved.Owner.IsUser() {
					ctx = logg.WithUserID(ctx, resolved.Owner.UserID.String())
				} else if resolved.Owner.SessionID != nil {
					ctx = logg.WithField(ctx, "session_id", *resolved.Owner.SessionID)
				}
			}

			ctx = WithIdentity(ctx, resolved)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func requestSessionID(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return strings.TrimSpace(r.Header.Get(sessionIDHeader))
}
