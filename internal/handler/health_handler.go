package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mesaview-usd/extrapay-api/internal/config"
	"github.com/mesaview-usd/extrapay-api/internal/utils"
)

// HealthResponse is the liveness payload district monitoring probes read.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
}

// HealthCheck reports service identity and liveness. It deliberately skips
// backing stores so a cache outage does not flap the load balancer.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
