package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/casspea/casspea-backend/pkg/auth"
	"github.com/casspea/casspea-backend/pkg/config"
	pkgerrors "github.com/casspea/casspea-backend/pkg/errors"
	"github.com/casspea/casspea-backend/pkg/redis"
	"github.com/casspea/casspea-backend/pkg/types"
)

// Identity is the resolved caller: either an authenticated user or an
// anonymous browser session.
type Identity struct {
	Owner  types.OwnerKey
	Claims *auth.AccessTokenClaims
	// NewSession is set when a guest session was minted during resolution
	// and the caller must hand the id back to the browser.
	NewSession bool
}

// Resolver turns request credentials into an owner key. A valid bearer token
// wins over a session cookie; without either, a fresh guest session is minted
// and registered in Redis.
type Resolver struct {
	jwtCfg     config.JWTConfig
	sessionCfg config.SessionConfig
	sessions   redis.SessionStore
	newID      func() string
}

func NewResolver(jwtCfg config.JWTConfig, sessionCfg config.SessionConfig, sessions redis.SessionStore) (*Resolver, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	return &Resolver{
		jwtCfg:     jwtCfg,
		sessionCfg: sessionCfg,
		sessions:   sessions,
		newID:      newSessionID,
	}, nil
}

func newSessionID() string {
	return "sess_" + randomToken(16)
}

func randomToken(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// Resolve authenticates the caller. bearerToken and sessionID may both be
// empty; an invalid token is an error rather than a silent guest downgrade.
func (r *Resolver) Resolve(ctx context.Context, bearerToken, sessionID string) (Identity, error) {
	if token := strings.TrimSpace(bearerToken); token != "" {
		claims, err := auth.ParseAccessToken(r.jwtCfg, token)
		if err != nil {
			return Identity{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
		}
		return Identity{
			Owner:  types.UserOwner(claims.UserID),
			Claims: claims,
		}, nil
	}

	if sessionID = strings.TrimSpace(sessionID); sessionID != "" {
		known, err := r.sessionExists(ctx, sessionID)
		if err != nil {
			return Identity{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up session")
		}
		if known {
			// Sliding expiry: each request pushes the TTL out again.
			if err := r.register(ctx, sessionID); err != nil {
				return Identity{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh session")
			}
			return Identity{Owner: types.SessionOwner(sessionID)}, nil
		}
	}

	minted, err := r.MintGuestSession(ctx)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Owner: types.SessionOwner(minted), NewSession: true}, nil
}

// MintGuestSession creates and registers a new anonymous session id.
func (r *Resolver) MintGuestSession(ctx context.Context) (string, error) {
	id := r.newID()
	if err := r.register(ctx, id); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register session")
	}
	return id, nil
}

func (r *Resolver) register(ctx context.Context, id string) error {
	return r.sessions.Set(ctx, r.sessions.SessionKey(id), time.Now().UTC().Format(time.RFC3339), r.sessionCfg.TTL)
}

func (r *Resolver) sessionExists(ctx context.Context, id string) (bool, error) {
	_, err := r.sessions.Get(ctx, r.sessions.SessionKey(id))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
