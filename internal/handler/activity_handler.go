package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sandiara-digital/ged-api/internal/dto"
	"github.com/sandiara-digital/ged-api/internal/service"
	"github.com/sandiara-digital/ged-api/internal/utils"
)

// ActivityHandler exposes the audit ledger, newest-first.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register wires ledger routes.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	if page <= 0 {
		page = 1
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	req := dto.ActivityListRequest{
		Page:     page,
		PageSize: pageSize,
		ActorID:  c.Query("actor_id"),
		Action:   c.Query("action"),
		DocID:    c.Query("doc_id"),
	}

	result, err := h.service.List(c.UserContext(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list ledger entries")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list ledger entries")
	}

	return utils.SendSuccess(c, "ledger retrieved", result)
}
