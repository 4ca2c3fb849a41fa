package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/mesaview-usd/extrapay-api/internal/utils"
)

// DistrictScoped pins a route subtree to the caller's own district. The
// :districtID path parameter must match the district claim on the token;
// a mismatch reads as not found, so callers cannot probe other tenants.
func DistrictScoped() fiber.Handler {
	return func(c *fiber.Ctx) error {
		param := c.Params("districtID")
		requested, err := strconv.ParseUint(param, 10, 64)
		if err != nil || requested == 0 {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid district identifier")
		}

		claimed, ok := c.Locals("district_id").(uint)
		if !ok || claimed == 0 {
			return utils.SendError(c, fiber.StatusUnauthorized, "district claim missing")
		}

		if uint(requested) != claimed {
			return utils.SendError(c, fiber.StatusNotFound, "not found")
		}

		return c.Next()
	}
}
