package handler

import (
	"errors"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sandiara-digital/ged-api/internal/dto"
	"github.com/sandiara-digital/ged-api/internal/middleware"
	"github.com/sandiara-digital/ged-api/internal/policy"
	"github.com/sandiara-digital/ged-api/internal/repository"
	"github.com/sandiara-digital/ged-api/internal/service"
	"github.com/sandiara-digital/ged-api/internal/utils"
)

// maxScanSize bounds the accepted scan payload at 10 MiB.
const maxScanSize = 10 << 20

// DocumentHandler exposes the document register endpoints.
type DocumentHandler struct {
	service service.DocumentService
	logger  zerolog.Logger
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(service service.DocumentService, logger zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		logger:  logger.With().Str("component", "document_handler").Logger(),
	}
}

// Register wires document routes. Registration and signature routes are
// further role-gated by the router.
func (h *DocumentHandler) Register(router fiber.Router, register fiber.Handler, sign fiber.Handler) {
	router.Get("", h.list)
	router.Post("", register, h.register)
	router.Post("/:id/consult", h.consult)
	router.Post("/:id/sign", sign, h.sign)
}

func (h *DocumentHandler) list(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "agent identification required")
	}

	dateStart, err := parseQueryDate(c, "date_start")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid date_start")
	}
	dateEnd, err := parseQueryDate(c, "date_end")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid date_end")
	}

	criteria := policy.Criteria{
		Query:           c.Query("q"),
		Category:        c.Query("category"),
		Confidentiality: c.Query("confidentiality"),
		SenderOrService: c.Query("sender"),
		DateStart:       dateStart,
		DateEnd:         dateEnd,
	}

	result, err := h.service.List(c.UserContext(), actor, criteria)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list documents")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list documents")
	}

	return utils.SendSuccess(c, "documents retrieved", result)
}

func (h *DocumentHandler) consult(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "agent identification required")
	}

	result, err := h.service.Consult(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, service.ErrNotVisible) {
			return utils.SendError(c, fiber.StatusNotFound, "document not found")
		}
		h.logger.Error().Err(err).Str("doc_id", c.Params("id")).Msg("consultation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "consultation failed")
	}

	return utils.SendSuccess(c, "document consulted", result)
}

func (h *DocumentHandler) register(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "agent identification required")
	}

	req := dto.RegisterDocumentRequest{
		Title:           c.FormValue("title"),
		Description:     c.FormValue("description"),
		Confidentiality: c.FormValue("confidentiality"),
	}

	image, err := readScan(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid scan payload")
	}

	result, err := h.service.Register(c.UserContext(), actor, req, image)
	if err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return utils.SendError(c, fiber.StatusUnprocessableEntity, "confidentiality level is required (PUBLIC or CONFIDENTIEL)")
		}
		if errors.Is(err, service.ErrUnsupportedImage) {
			return utils.SendError(c, fiber.StatusUnprocessableEntity, "scan payload must be an image")
		}
		h.logger.Error().Err(err).Msg("registration failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "registration failed")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "document registered", result)
}

func (h *DocumentHandler) sign(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "agent identification required")
	}

	result, err := h.service.Sign(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, service.ErrNotVisible) {
			return utils.SendError(c, fiber.StatusNotFound, "document not found")
		}
		if errors.Is(err, service.ErrInvalidTransition) {
			return utils.SendError(c, fiber.StatusConflict, "document already signed or archived")
		}
		h.logger.Error().Err(err).Str("doc_id", c.Params("id")).Msg("signature failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "signature failed")
	}

	return utils.SendSuccess(c, "document signed", result)
}

// readScan extracts the optional scan image from the multipart form.
func readScan(c *fiber.Ctx) ([]byte, error) {
	fileHeader, err := c.FormFile("scan")
	if err != nil {
		// No file part is a valid text-only registration.
		return nil, nil
	}
	if fileHeader.Size > maxScanSize {
		return nil, errors.New("scan payload too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(io.LimitReader(file, maxScanSize))
}
