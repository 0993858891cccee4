package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/maisonvelaire/storefront-backend/api/responses"
	"github.com/maisonvelaire/storefront-backend/pkg/config"
	pkgerrors "github.com/maisonvelaire/storefront-backend/pkg/errors"
	"github.com/maisonvelaire/storefront-backend/pkg/logger"
)

const envHeader = "X-Maison-Env"

// Pinger is any dependency that can answer a liveness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes redis and the commerce backend. Any failed probe turns
// the whole response into a 503 so load balancers pull the instance.
func HealthReady(cfg *config.Config, logg *logger.Logger, redisP, backendP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]string{}
		healthy := true
		for name, p := range map[string]Pinger{"redis": redisP, "backend": backendP} {
			if p == nil {
				checks[name] = "skipped"
				continue
			}
			if err := p.Ping(ctx); err != nil {
				checks[name] = "down"
				healthy = false
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", name), "health.dependency_down", err)
				}
				continue
			}
			checks[name] = "up"
		}

		if !healthy {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "service dependencies unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
