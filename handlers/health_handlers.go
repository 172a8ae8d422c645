package handlers

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HandleHealth pings the database.
// GET /health
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	if h.Ping != nil {
		if err := h.Ping(c.UserContext()); err != nil {
			h.Log.Error("database ping failed", zap.Error(err))
			return errorResponse(c, fiber.StatusServiceUnavailable, "Database unavailable")
		}
	}
	return success(c, fiber.StatusOK, fiber.Map{"database": "ok"})
}

// HandleVersion reports the build information embedded in the binary.
// GET /version
func (h *Handler) HandleVersion(c *fiber.Ctx) error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return errorResponse(c, fiber.StatusInternalServerError, "No build information available")
	}
	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	return success(c, fiber.StatusOK, fiber.Map{
		"go_version": info.GoVersion,
		"module":     info.Main.Path,
		"version":    info.Main.Version,
		"settings":   settings,
	})
}
