package router_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-submit-api/internal/config"
)

func compileContract(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("testdata", "contracts", name))
	require.NoError(t, err)

	schema, err := jsonschema.NewCompiler().Compile("file://" + filepath.ToSlash(schemaPath))
	require.NoError(t, err)
	return schema
}

func requireContract(t *testing.T, schemaName string, body []byte) {
	t.Helper()
	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, compileContract(t, schemaName).Validate(payload), string(body))
}

func TestContractHealthAndErrors(t *testing.T) {
	srv := newTestServer(t, config.AuthModeTrust)

	_, body := srv.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	requireContract(t, "health.schema.json", body)

	resp, body := srv.do(t, httptest.NewRequest(http.MethodDelete, "/api/submissions/missing", nil))
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	requireContract(t, "error.schema.json", body)

	resp, body = srv.do(t, jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{}, ""))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	requireContract(t, "error.schema.json", body)
}

func TestContractUsers(t *testing.T) {
	for _, mode := range []string{config.AuthModeTrust, config.AuthModeJWT} {
		t.Run(mode, func(t *testing.T) {
			srv := newTestServer(t, mode)

			resp, body := srv.do(t, jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{
				"email": "adminnsuk001@gmail.com", "password": "admin001", "role": "Admin",
			}, ""))
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			requireContract(t, "login.schema.json", body)

			var login struct {
				Token string `json:"token"`
			}
			require.NoError(t, json.Unmarshal(body, &login))

			resp, body = srv.do(t, jsonRequest(http.MethodGet, "/api/users", nil, login.Token))
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			requireContract(t, "user_list.schema.json", body)
		})
	}
}

func TestContractSubmissions(t *testing.T) {
	srv := newTestServer(t, config.AuthModeTrust)

	resp, body := srv.do(t, uploadRequest(t, map[string]string{"student": "ann@x.com", "title": "Essay"}, "essay.txt", []byte("words"), ""))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	requireContract(t, "submission_envelope.schema.json", body)

	var saved struct {
		Submission struct {
			ID string `json:"id"`
		} `json:"submission"`
	}
	require.NoError(t, json.Unmarshal(body, &saved))

	resp, body = srv.do(t, jsonRequest(http.MethodPost, "/api/submissions/"+saved.Submission.ID+"/grade", map[string]interface{}{
		"score": 91.5, "feedback": "Clear structure",
	}, ""))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	requireContract(t, "submission_envelope.schema.json", body)

	_, body = srv.do(t, httptest.NewRequest(http.MethodGet, "/api/submissions", nil))
	requireContract(t, "submission_list.schema.json", body)

	_, body = srv.do(t, httptest.NewRequest(http.MethodGet, "/api/submissions/student/ann@x.com", nil))
	requireContract(t, "submission_list.schema.json", body)
}
