package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/casspea/casspea-backend/api/responses"
	"github.com/casspea/casspea-backend/pkg/config"
	"github.com/casspea/casspea-backend/pkg/db"
	pkgerrors "github.com/casspea/casspea-backend/pkg/errors"
	"github.com/casspea/casspea-backend/pkg/logger"
	"github.com/casspea/casspea-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CassPea-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when the backing stores answer a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CassPea-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"postgres": "ok", "redis": "ok"}
		healthy := true
		if err := dbP.Ping(ctx); err != nil {
			checks["postgres"] = "unreachable"
			healthy = false
			logg.Error(logg.WithField(ctx, "dependency", "postgres"), "health.ready", err)
		}
		if err := redisP.Ping(ctx); err != nil {
			checks["redis"] = "unreachable"
			healthy = false
			logg.Error(logg.WithField(ctx, "dependency", "redis"), "health.ready", err)
		}

		if !healthy {
			err := pkgerrors.New(pkgerrors.CodeDependency, "service not ready").
				WithDetails(map[string]any{"checks": checks})
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
