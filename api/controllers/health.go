package controllers

import (
	"context"
	"net/http"

	"github.com/siamcode/standupstrip-backend/api/responses"
	"github.com/siamcode/standupstrip-backend/pkg/config"
	pkgerrors "github.com/siamcode/standupstrip-backend/pkg/errors"
	"github.com/siamcode/standupstrip-backend/pkg/logger"
)

// Pinger is the health-check surface of a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-StandUpStrip-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness by pinging the database and, when wired,
// redis. A nil pinger is treated as an intentionally absent dependency.
func HealthReady(cfg *config.Config, logg *logger.Logger, database Pinger, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-StandUpStrip-Env", cfg.App.Env)

		checks := map[string]Pinger{
			"database": database,
			"redis":    cache,
		}
		status := make(map[string]string, len(checks))
		healthy := true

		for name, dep := range checks {
			if dep == nil {
				status[name] = "disabled"
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				logg.Error(r.Context(), "health.dependency_unreachable", err)
				status[name] = "unreachable"
				healthy = false
				continue
			}
			status[name] = "ok"
		}

		if !healthy {
			err := pkgerrors.New(pkgerrors.CodeDependency, "service not ready").WithDetails(status)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, status)
	}
}
