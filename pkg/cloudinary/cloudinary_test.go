package cloudinary

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-submit-api/internal/storage"
)

func newTestService(t *testing.T, folder string) *Service {
	t.Helper()
	svc, err := New(Config{CloudName: "demo", APIKey: "key", APISecret: "secret", Folder: folder}, zerolog.Nop())
	require.NoError(t, err)
	return svc
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.Nop())
	require.ErrorContains(t, err, "credentials")
}

func TestPublicIDKeepsStampAndFolder(t *testing.T) {
	svc := newTestService(t, "/gema/submissions/")
	require.Equal(t, "gema/submissions/1700000000000-my_essay.pdf", svc.publicID("1700000000000-my_essay.pdf"))
	require.Equal(t, "gema/submissions/1700000000001-r-sum-.txt", svc.publicID("1700000000001-résumé.txt"))

	bare := newTestService(t, "")
	require.Equal(t, "1-a.txt", bare.publicID("1-a.txt"))
}

func TestDeliveryURLUsesRawSecureDelivery(t *testing.T) {
	svc := newTestService(t, "subs")
	url, err := svc.deliveryURL(svc.publicID("1-a.txt"))
	require.NoError(t, err)
	require.Contains(t, url, "https://")
	require.Contains(t, url, "/demo/raw/upload/")
	require.Contains(t, url, "subs/1-a.txt")
}

func TestOpenStreamsDeliveredAsset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/subs/1-a.txt" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("hello"))
	}))
	defer server.Close()

	svc := newTestService(t, "subs")
	svc.httpClient = server.Client()
	svc.resolve = func(publicID string) (string, error) {
		return server.URL + "/" + publicID, nil
	}

	reader, info, err := svc.Open(context.Background(), "1-a.txt")
	require.NoError(t, err)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, "hello", string(body))
	require.Equal(t, "text/plain", info.ContentType)
	require.Equal(t, int64(5), info.Size)

	_, _, err = svc.Open(context.Background(), "2-missing.txt")
	require.ErrorIs(t, err, storage.ErrObjectNotFound)
}
