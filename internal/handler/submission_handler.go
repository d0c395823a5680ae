package handler

import (
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-submit-api/internal/dto"
	"github.com/noah-isme/gema-submit-api/internal/service"
	"github.com/noah-isme/gema-submit-api/internal/utils"
)

// SubmissionHandler manages submission endpoints.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/student/:email", h.listForStudent)
	router.Post("/:id/grade", h.grade)
	router.Delete("/:id", h.remove)
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	payload := dto.SubmissionCreateRequest{
		Student: c.FormValue("student"),
		Title:   c.FormValue("title"),
	}

	var file *multipart.FileHeader
	if header, err := c.FormFile("file"); err == nil {
		file = header
	}

	submission, err := h.service.Create(c.UserContext(), payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendMessage(c, "Submission saved", fiber.Map{"submission": submission})
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	submissions, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendData(c, submissions)
}

func (h *SubmissionHandler) listForStudent(c *fiber.Ctx) error {
	submissions, err := h.service.ListForStudent(c.UserContext(), pathParam(c, "email"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendData(c, submissions)
}

func (h *SubmissionHandler) grade(c *fiber.Ctx) error {
	var payload dto.GradeSubmissionRequest
	if c.Is("json") || len(c.Body()) == 0 {
		if err := parseBody(c, &payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	} else {
		if score := c.FormValue("score"); score != "" {
			payload.Score = score
		}
		if feedback := c.FormValue("feedback"); feedback != "" {
			payload.Feedback = feedback
		}
	}

	submission, err := h.service.Grade(c.UserContext(), c.Params("id"), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendMessage(c, "Graded", fiber.Map{"submission": submission})
}

func (h *SubmissionHandler) remove(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendMessage(c, "Submission deleted", nil)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrSubmissionNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	}
	return respondCommonError(c, h.logger, err)
}
