package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mesaview-usd/extrapay-api/internal/utils"
)

// JWTProtected returns a middleware that validates JWT bearer tokens and
// binds the user id, role and district claims to the request.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		if userID := claimUint(claims, "sub", "user_id", "id"); userID != nil {
			c.Locals("user_id", *userID)
		}
		if role := claimRole(claims); role != "" {
			c.Locals("user_role", role)
		}
		if districtID := claimUint(claims, "district_id"); districtID != nil {
			c.Locals("district_id", *districtID)
		}

		return c.Next()
	}
}

func claimUint(claims jwt.MapClaims, keys ...string) *uint {
	for _, key := range keys {
		value, ok := claims[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case float64:
			if v >= 0 {
				normalized := uint(v)
				return &normalized
			}
		case string:
			if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
				normalized := uint(parsed)
				return &normalized
			}
		case int:
			if v >= 0 {
				normalized := uint(v)
				return &normalized
			}
		}
	}
	return nil
}

func claimRole(claims jwt.MapClaims) string {
	for _, key := range []string{"role", "roles"} {
		value, ok := claims[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			return strings.ToLower(strings.TrimSpace(v))
		case []interface{}:
			for _, item := range v {
				if str, ok := item.(string); ok {
					role := strings.ToLower(strings.TrimSpace(str))
					if role != "" {
						return role
					}
				}
			}
		}
	}
	return ""
}
