package handler

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-submit-api/internal/auth"
	"github.com/noah-isme/gema-submit-api/internal/middleware"
	"github.com/noah-isme/gema-submit-api/internal/service"
	"github.com/noah-isme/gema-submit-api/internal/utils"
)

// badRequestErrors are reported to the client verbatim with status 400.
var badRequestErrors = []error{
	service.ErrLoginFieldsRequired,
	service.ErrRegisterFieldsRequired,
	service.ErrUserFieldsRequired,
	service.ErrInvalidRole,
	service.ErrSubmissionFieldsRequired,
	service.ErrFileRequired,
	service.ErrGradeFieldsRequired,
	service.ErrInvalidScore,
}

// parseBody decodes the request body into out. An empty body leaves out untouched
// so the service reports the missing fields.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(out)
}

// pathParam returns the unescaped route parameter.
func pathParam(c *fiber.Ctx, key string) string {
	raw := c.Params(key)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// respondCommonError maps errors shared by every handler. Unknown errors are
// logged and hidden behind a generic 500.
func respondCommonError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
	}

	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
		return utils.SendError(c, fiberErr.Code, strings.ToLower(fiberErr.Message))
	}

	requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
