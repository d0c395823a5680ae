package cloudinary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-submit-api/internal/storage"
)

const rawResource = "raw"

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Service keeps submission files as raw Cloudinary assets. The public ID of an
// asset is derived from the stored file name so it can be found again.
type Service struct {
	client     *cloudinary.Cloudinary
	folder     string
	httpClient *http.Client
	resolve    func(publicID string) (string, error)
	logger     zerolog.Logger
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	s := &Service{
		client:     cld,
		folder:     strings.Trim(cfg.Folder, "/"),
		httpClient: http.DefaultClient,
		logger:     logger.With().Str("component", "cloudinary").Logger(),
	}
	s.resolve = s.deliveryURL
	return s, nil
}

// Save uploads the file under its stored name.
func (s *Service) Save(ctx context.Context, name string, reader io.Reader, _ int64, _ string) error {
	params := uploader.UploadParams{
		PublicID:     s.publicID(name),
		ResourceType: rawResource,
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return fmt.Errorf("failed to upload asset: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("failed to upload asset: %s", result.Error.Message)
	}

	s.logger.Info().Str("public_id", result.PublicID).Msg("file uploaded to cloudinary")
	return nil
}

// Open downloads the asset from its delivery URL.
func (s *Service) Open(ctx context.Context, name string) (io.ReadCloser, storage.ObjectInfo, error) {
	url, err := s.resolve(s.publicID(name))
	if err != nil {
		return nil, storage.ObjectInfo{}, fmt.Errorf("build delivery url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, storage.ObjectInfo{}, fmt.Errorf("fetch asset: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, storage.ObjectInfo{}, storage.ErrObjectNotFound
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, storage.ObjectInfo{}, fmt.Errorf("fetch asset: unexpected status %d", resp.StatusCode)
	}

	return resp.Body, storage.ObjectInfo{
		Name:        name,
		Size:        resp.ContentLength,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// Remove destroys the asset. A missing asset is not an error.
func (s *Service) Remove(ctx context.Context, name string) error {
	result, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     s.publicID(name),
		ResourceType: rawResource,
	})
	if err != nil {
		return fmt.Errorf("failed to destroy asset: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("failed to destroy asset: %s", result.Error.Message)
	}
	return nil
}

func (s *Service) deliveryURL(publicID string) (string, error) {
	file, err := s.client.File(publicID)
	if err != nil {
		return "", err
	}
	return file.String()
}

// publicID maps a stored name onto the characters Cloudinary accepts in raw
// public IDs. Stored names carry a unique stamp, so the mapping stays unique.
func (s *Service) publicID(name string) string {
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		}
		return '-'
	}, name)

	if s.folder == "" {
		return id
	}
	return s.folder + "/" + id
}
