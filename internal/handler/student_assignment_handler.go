package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assignments/internal/dto"
	"github.com/noah-isme/gema-assignments/internal/service"
	"github.com/noah-isme/gema-assignments/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StudentAssignmentHandler exposes the student assignment list and unsubmit endpoints.
type StudentAssignmentHandler struct {
	service  service.StudentAssignmentService
	exporter service.AssignmentExporter
	logger   zerolog.Logger
}

// NewStudentAssignmentHandler creates a new handler instance.
func NewStudentAssignmentHandler(svc service.StudentAssignmentService, exporter service.AssignmentExporter, logger zerolog.Logger) *StudentAssignmentHandler {
	return &StudentAssignmentHandler{
		service:  svc,
		exporter: exporter,
		logger:   logger.With().Str("component", "student_assignment_handler").Logger(),
	}
}

// Register attaches the endpoints to the /students group. Extra handlers
// (rate limiting) are applied to the unsubmit route only.
func (h *StudentAssignmentHandler) Register(router fiber.Router, unsubmitGuards ...fiber.Handler) {
	router.Get("/assignments/:listType", h.list)
	if h.exporter != nil {
		router.Get("/assignments/:listType/export", h.export)
	}

	handlers := append(append([]fiber.Handler{}, unsubmitGuards...), h.unsubmit)
	router.Put("/assignment/unsubmit/:id", handlers...)
}

func (h *StudentAssignmentHandler) list(c *fiber.Ctx) error {
	studentID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	listType := dto.NormalizeListType(c.Params("listType"))
	assignments, err := h.service.List(c.UserContext(), studentID, listType)
	if err != nil {
		return h.fail(c, err, "failed to load assignments")
	}

	return utils.SendSuccess(c, fmt.Sprintf("%s assignments retrieved", listType), assignments)
}

func (h *StudentAssignmentHandler) export(c *fiber.Ctx) error {
	studentID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	listType := dto.NormalizeListType(c.Params("listType"))
	payload, err := h.exporter.Export(c.UserContext(), studentID, listType)
	if err != nil {
		return h.fail(c, err, "failed to export assignments")
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s-assignments.xlsx"`, listType))
	return c.Send(payload)
}

func (h *StudentAssignmentHandler) unsubmit(c *fiber.Ctx) error {
	studentID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	assignmentID := strings.TrimSpace(c.Params("id"))
	if err := h.service.Unsubmit(c.UserContext(), studentID, assignmentID); err != nil {
		return h.fail(c, err, "failed to unsubmit assignment")
	}

	return utils.SendSuccess(c, "Assignment unsubmitted successfully", nil)
}

func (h *StudentAssignmentHandler) fail(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrInvalidListType):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAssignmentNotFound), errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotSubmitted), errors.Is(err, service.ErrPastDue), errors.Is(err, service.ErrAlreadyGraded):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Str("path", c.Path()).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
