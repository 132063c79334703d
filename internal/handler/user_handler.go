package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sandiara-digital/ged-api/internal/policy"
	"github.com/sandiara-digital/ged-api/internal/repository"
	"github.com/sandiara-digital/ged-api/internal/utils"
)

// UserHandler exposes the agent roster. Switching user is done
// client-side by changing the X-Agent-ID header; this endpoint lists the
// available identities and the filter levels each may select.
type UserHandler struct {
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(users repository.UserRepository, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register wires user routes.
func (h *UserHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

type userView struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Role             string   `json:"role"`
	Avatar           string   `json:"avatar,omitempty"`
	SelectableLevels []string `json:"selectable_levels"`
}

func (h *UserHandler) list(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list agents")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list agents")
	}

	views := make([]userView, 0, len(users))
	for _, user := range users {
		levels := policy.SelectableLevels(user.Role)
		names := make([]string, 0, len(levels))
		for _, level := range levels {
			names = append(names, string(level))
		}
		views = append(views, userView{
			ID:               user.ID,
			Name:             user.Name,
			Role:             string(user.Role),
			Avatar:           user.Avatar,
			SelectableLevels: names,
		})
	}

	return utils.SendSuccess(c, "agents retrieved", views)
}
