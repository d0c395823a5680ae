package handler_test

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-submit-api/internal/handler"
	"github.com/noah-isme/gema-submit-api/internal/service"
	"github.com/noah-isme/gema-submit-api/internal/storage"
)

type mockUploadService struct {
	files map[string]string
}

func (m *mockUploadService) Store(context.Context, *multipart.FileHeader) (service.StoredFile, error) {
	return service.StoredFile{}, nil
}

func (m *mockUploadService) Open(_ context.Context, name string) (io.ReadCloser, storage.ObjectInfo, error) {
	content, ok := m.files[name]
	if !ok {
		return nil, storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return io.NopCloser(strings.NewReader(content)), storage.ObjectInfo{Name: name, Size: int64(len(content))}, nil
}

func (m *mockUploadService) Discard(context.Context, string) error {
	return nil
}

func TestUploadHandlerServesFile(t *testing.T) {
	svc := &mockUploadService{files: map[string]string{"1-notes.bin": "payload"}}
	app := fiber.New()
	handler.NewUploadHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/uploads"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/uploads/1-notes.bin", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, fiber.MIMEOctetStream, resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "payload", string(body))
}

func TestUploadHandlerMissingFile(t *testing.T) {
	app := fiber.New()
	handler.NewUploadHandler(&mockUploadService{}, zerolog.New(io.Discard)).Register(app.Group("/uploads"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/uploads/nope.pdf", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
