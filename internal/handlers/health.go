package handlers

import (
	"context"
	"net/http"
	"time"

	"webshop/internal/database"

	"golang.org/x/sync/errgroup"
)

// Version is reported by the health endpoints; set by the binary at startup.
var Version = "dev"

// componentHealth is the state of one backing service.
type componentHealth struct {
	Status  string                 `json:"status"`
	Latency string                 `json:"latency,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Stats   map[string]interface{} `json:"stats,omitempty"`
}

func (c componentHealth) up() bool { return c.Status == "healthy" }

// probe runs check and records how long it took.
func probe(ctx context.Context, check func(context.Context) error) componentHealth {
	start := time.Now()
	if err := check(ctx); err != nil {
		return componentHealth{Status: "unhealthy", Error: err.Error()}
	}
	return componentHealth{Status: "healthy", Latency: time.Since(start).String()}
}

// healthReport is the payload of both health endpoints.
type healthReport struct {
	Status      string                     `json:"status"`
	Timestamp   time.Time                  `json:"timestamp"`
	Uptime      string                     `json:"uptime"`
	Version     string                     `json:"version"`
	Environment string                     `json:"environment"`
	RequestID   string                     `json:"request_id"`
	Services    map[string]componentHealth `json:"services"`
	Features    map[string]bool            `json:"features,omitempty"`
}

func newHealthReport(env, requestID string, services map[string]componentHealth) *healthReport {
	report := &healthReport{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(startTime).String(),
		Version:     Version,
		Environment: env,
		RequestID:   requestID,
		Services:    services,
	}
	for _, svc := range services {
		if !svc.up() {
			report.Status = "degraded"
		}
	}
	return report
}

// checkServices probes the database and Redis concurrently. deep adds the
// transaction round trip and pool statistics.
func (h *Handlers) checkServices(ctx context.Context, deep bool) map[string]componentHealth {
	var db, cache componentHealth

	var g errgroup.Group
	g.Go(func() error {
		if deep {
			db = probe(ctx, func(ctx context.Context) error { return database.HealthCheck(ctx, h.app.DB) })
			if db.up() {
				db.Stats = database.GetConnectionStats(h.app.DB)
			}
		} else {
			db = probe(ctx, h.app.DB.Ping)
		}
		return nil
	})
	g.Go(func() error {
		cache = probe(ctx, func(ctx context.Context) error { return h.app.Redis.Ping(ctx).Err() })
		return nil
	})
	_ = g.Wait()

	return map[string]componentHealth{"database": db, "redis": cache}
}

// Health handles health check requests
// @Summary      Health
// @Tags         platform
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())
	healthCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	report := newHealthReport(h.app.Config.App_Env, requestID, h.checkServices(healthCtx, false))
	h.writeHealth(w, requestID, report, "Service is healthy")
}

// HealthDetailed adds pool statistics, a transaction round trip and the
// optional features that are switched on.
func (h *Handlers) HealthDetailed(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())
	healthCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	report := newHealthReport(h.app.Config.App_Env, requestID, h.checkServices(healthCtx, true))
	report.Features = map[string]bool{
		"image_storage": h.app.Config.MinioEnabled(),
		"order_mail":    h.app.Config.SMTPEnabled(),
	}
	h.writeHealth(w, requestID, report, "Detailed health check complete")
}

func (h *Handlers) writeHealth(w http.ResponseWriter, requestID string, report *healthReport, message string) {
	if report.Status != "healthy" {
		for name, svc := range report.Services {
			if !svc.up() {
				h.app.Logger.Error().
					Str("request_id", requestID).
					Str("service", name).
					Str("error", svc.Error).
					Msg("Health check failed")
			}
		}
		writeResponse(w, h.app, http.StatusServiceUnavailable, false, report, "Service is degraded")
		return
	}
	writeSuccess(w, h.app, report, message)
}

// GetDatabaseStats retrieves DB connection info
// @Summary      Database Statistics
// @Description  Get internal database connection pool stats
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/admin/db-stats [get]
func (h *Handlers) GetDatabaseStats(w http.ResponseWriter, r *http.Request) {
	stats := database.GetConnectionStats(h.app.DB)
	writeSuccess(w, h.app, stats, "Database statistics retrieved")
}
