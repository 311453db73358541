package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/gema-assignments/internal/utils"
)

// StudentRateLimit caps how often one student may perform action. Requests
// without a student id share a bucket per client IP.
func StudentRateLimit(action string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 5
	}
	if window <= 0 {
		window = time.Minute
	}

	return limiter.New(limiter.Config{
		Max:          max,
		Expiration:   window,
		KeyGenerator: func(c *fiber.Ctx) string { return studentLimitKey(c, action) },
		LimitReached: func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusTooManyRequests, fmt.Sprintf("too many %s requests, please try again later", action))
		},
	})
}

func studentLimitKey(c *fiber.Ctx, action string) string {
	if studentID, ok := c.Locals("user_id").(uint); ok && studentID != 0 {
		return fmt.Sprintf("%s:student:%d", action, studentID)
	}
	return fmt.Sprintf("%s:ip:%s", action, c.IP())
}
