package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sandiara-digital/ged-api/internal/models"
	"github.com/sandiara-digital/ged-api/internal/repository"
	"github.com/sandiara-digital/ged-api/internal/utils"
)

// AgentHeader names the header carrying the self-selected agent identity.
// Identity is not verified; role selection is a session convenience, not
// authentication.
const AgentHeader = "X-Agent-ID"

// Session resolves the active agent from the request header and binds it
// to the request context.
func Session(users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		agentID := strings.TrimSpace(c.Get(AgentHeader))
		if agentID == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "agent identification required")
		}

		user, err := users.GetByID(c.UserContext(), agentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return utils.SendError(c, fiber.StatusUnauthorized, "unknown agent")
			}
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve agent")
		}

		c.Locals("current_user", user)
		c.Locals("user_role", string(user.Role))

		return c.Next()
	}
}

// CurrentUser returns the agent bound to the request, if any.
func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals("current_user").(models.User)
	return user, ok
}
