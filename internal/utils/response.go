package utils

import "github.com/gofiber/fiber/v2"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	if message == "" {
		message = "error"
	}
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(ErrorResponse{Error: message})
}

// SendMessage sends {"message": message} merged with fields, e.g. {"message":"Graded","submission":{...}}.
func SendMessage(c *fiber.Ctx, message string, fields fiber.Map) error {
	body := fiber.Map{"message": message}
	for key, value := range fields {
		if key == "message" {
			continue
		}
		body[key] = value
	}
	return c.Status(fiber.StatusOK).JSON(body)
}

// SendData sends data as the bare response body.
func SendData(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(data)
}
