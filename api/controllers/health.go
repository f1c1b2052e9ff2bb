package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/engagehq/engage-backend/api/responses"
	"github.com/engagehq/engage-backend/pkg/config"
	"github.com/engagehq/engage-backend/pkg/db"
	pkgerrors "github.com/engagehq/engage-backend/pkg/errors"
	"github.com/engagehq/engage-backend/pkg/logger"
	"github.com/engagehq/engage-backend/pkg/redis"
)

const readyProbeTimeout = 3 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Engage-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the backing stores so orchestrators only route traffic
// once the instance can actually serve it.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Engage-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyProbeTimeout)
		defer cancel()

		components := map[string]string{}
		healthy := true

		if dbP != nil {
			components["database"] = "ok"
			if err := dbP.Ping(ctx); err != nil {
				components["database"] = "unavailable"
				healthy = false
			}
		}
		if redisP != nil {
			components["redis"] = "ok"
			if err := redisP.Ping(ctx); err != nil {
				components["redis"] = "unavailable"
				healthy = false
			}
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependencies not ready").WithDetails(components))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "components": components})
	}
}
