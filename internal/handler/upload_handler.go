package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-submit-api/internal/service"
	"github.com/noah-isme/gema-submit-api/internal/storage"
	"github.com/noah-isme/gema-submit-api/internal/utils"
)

// UploadHandler serves stored submission files.
type UploadHandler struct {
	service service.UploadService
	logger  zerolog.Logger
}

// NewUploadHandler constructs an upload handler.
func NewUploadHandler(service service.UploadService, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		service: service,
		logger:  logger.With().Str("component", "upload_handler").Logger(),
	}
}

// Register wires file routes.
func (h *UploadHandler) Register(router fiber.Router) {
	router.Get("/:file", h.serve)
}

func (h *UploadHandler) serve(c *fiber.Ctx) error {
	reader, info, err := h.service.Open(c.UserContext(), pathParam(c, "file"))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "file not found")
		}
		return respondCommonError(c, h.logger, err)
	}

	if info.ContentType != "" {
		c.Set(fiber.HeaderContentType, info.ContentType)
	} else {
		c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	}

	size := -1
	if info.Size >= 0 {
		size = int(info.Size)
	}
	return c.SendStream(reader, size)
}
