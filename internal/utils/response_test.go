package utils_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-submit-api/internal/utils"
)

func TestSendMessageMergesFields(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.SendMessage(c, "Graded", fiber.Map{"submission": map[string]string{"id": "s1"}, "message": "ignored"})
	})

	resp := performRequest(t, app, http.MethodGet, "/")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Message    string            `json:"message"`
		Submission map[string]string `json:"submission"`
	}
	decode(t, resp, &payload)

	require.Equal(t, "Graded", payload.Message)
	require.Equal(t, "s1", payload.Submission["id"])
}

func TestSendErrorUsesErrorKey(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	})

	resp := performRequest(t, app, http.MethodGet, "/")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var payload map[string]interface{}
	decode(t, resp, &payload)
	require.Equal(t, map[string]interface{}{"error": "submission not found"}, payload)
}

func TestSendDataWritesBareArray(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.SendData(c, []string{})
	})

	resp := performRequest(t, app, http.MethodGet, "/")
	var payload []string
	decode(t, resp, &payload)
	require.NotNil(t, payload)
	require.Empty(t, payload)
}

func performRequest(t *testing.T, app *fiber.App, method, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}
