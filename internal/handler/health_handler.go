package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/evalio/evalio-go-api/internal/config"
	"github.com/evalio/evalio-go-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	Database    string    `json:"database"`
	Cache       string    `json:"cache"`
	AIAvailable bool      `json:"ai_available"`
}

// AIProbe reports whether the text generation service is usable.
type AIProbe interface {
	Available() bool
}

// HealthCheck returns a handler that reports application health information.
// A failing database ping degrades the overall status; the cache and AI
// service are optional and only reported.
func HealthCheck(cfg config.Config, db *gorm.DB, cache *redis.Client, probe AIProbe) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Database:    "ok",
			Cache:       "disabled",
		}

		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Context()) != nil {
				payload.Status = "degraded"
				payload.Database = "unreachable"
			}
		} else {
			payload.Status = "degraded"
			payload.Database = "not configured"
		}

		if cache != nil {
			payload.Cache = "ok"
			if err := cache.Ping(c.Context()).Err(); err != nil {
				payload.Cache = "unreachable"
			}
		}

		if probe != nil {
			payload.AIAvailable = probe.Available()
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
