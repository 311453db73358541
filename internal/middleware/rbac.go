package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-assignments/internal/utils"
)

// RoleStudent is the role carried by student tokens.
const RoleStudent = "student"

// RequireRole admits authenticated requests whose token carries role.
func RequireRole(role string) fiber.Handler {
	want := normalizeLocalRole(role)

	return func(c *fiber.Ctx) error {
		if _, ok := c.Locals("user_id").(uint); !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		if normalizeLocalRole(c.Locals("user_role")) != want {
			return utils.SendError(c, fiber.StatusForbidden, fmt.Sprintf("only %s accounts can access assignments", want))
		}
		return c.Next()
	}
}

func normalizeLocalRole(value interface{}) string {
	role, _ := value.(string)
	return strings.ToLower(strings.TrimSpace(role))
}
