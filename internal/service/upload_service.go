package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-submit-api/internal/observability"
	"github.com/noah-isme/gema-submit-api/internal/storage"
)

// PublicPrefix is the URL path under which stored files are served.
const PublicPrefix = "/uploads/"

const sniffLength = 3072

var whitespaceRun = regexp.MustCompile(`\s+`)

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Save(ctx context.Context, name string, reader io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, storage.ObjectInfo, error)
	Remove(ctx context.Context, name string) error
}

// StoredFile describes a file written by UploadService.Store.
type StoredFile struct {
	FileName     string
	OriginalName string
	FilePath     string
	ContentType  string
	Size         int64
}

// UploadService names, writes, serves and discards submission files.
type UploadService interface {
	Store(ctx context.Context, file *multipart.FileHeader) (StoredFile, error)
	Open(ctx context.Context, fileName string) (io.ReadCloser, storage.ObjectInfo, error)
	// Discard removes a stored file. Missing files are not an error.
	Discard(ctx context.Context, fileName string) error
}

type uploadService struct {
	storage FileStorage
	logger  zerolog.Logger
	tracer  trace.Tracer
	clock   *stampClock
}

// NewUploadService constructs an upload service.
func NewUploadService(storage FileStorage, logger zerolog.Logger) UploadService {
	return &uploadService{
		storage: storage,
		logger:  logger.With().Str("component", "upload_service").Logger(),
		tracer:  otel.Tracer("github.com/noah-isme/gema-submit-api/internal/service/upload"),
		clock:   newStampClock(time.Now),
	}
}

func (s *uploadService) Store(ctx context.Context, file *multipart.FileHeader) (StoredFile, error) {
	ctx, span := s.tracer.Start(ctx, "upload.store")
	defer span.End()

	if file == nil {
		span.SetAttributes(attribute.Bool("upload.file_present", false))
		span.SetStatus(codes.Error, "validation failed")
		return StoredFile{}, ErrFileRequired
	}

	originalName := cleanOriginalName(file.Filename)
	fileName := storedFileName(s.clock.next(), originalName)
	span.SetAttributes(
		attribute.String("upload.original_name", originalName),
		attribute.String("upload.stored_name", fileName),
		attribute.Int64("upload.request_size", file.Size),
	)

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	handle, err := file.Open()
	if err != nil {
		observability.UploadFailures().WithLabelValues("open").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return StoredFile{}, fmt.Errorf("open upload: %w", err)
	}
	defer handle.Close()

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(handle, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		observability.UploadFailures().WithLabelValues("read").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return StoredFile{}, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	contentType := detectContentType(head, file.Header.Get("Content-Type"))
	span.SetAttributes(attribute.String("upload.detected_mime", contentType))

	body := io.MultiReader(bytes.NewReader(head), handle)
	if err := s.storage.Save(ctx, fileName, body, file.Size, contentType); err != nil {
		observability.UploadFailures().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return StoredFile{}, fmt.Errorf("store upload: %w", err)
	}

	observability.UploadBytes().Add(float64(file.Size))
	span.SetStatus(codes.Ok, "stored")
	s.logger.Debug().Str("file_name", fileName).Int64("size", file.Size).Msg("upload stored")

	return StoredFile{
		FileName:     fileName,
		OriginalName: originalName,
		FilePath:     PublicPrefix + fileName,
		ContentType:  contentType,
		Size:         file.Size,
	}, nil
}

func (s *uploadService) Open(ctx context.Context, fileName string) (io.ReadCloser, storage.ObjectInfo, error) {
	reader, info, err := s.storage.Open(ctx, fileName)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	if info.ContentType == "" {
		info.ContentType = extensionType(fileName)
	}
	return reader, info, nil
}

func (s *uploadService) Discard(ctx context.Context, fileName string) error {
	if strings.TrimSpace(fileName) == "" {
		return nil
	}
	if err := s.storage.Remove(ctx, fileName); err != nil {
		observability.UploadFailures().WithLabelValues("discard").Inc()
		return fmt.Errorf("discard upload: %w", err)
	}
	return nil
}

// stampClock hands out strictly increasing millisecond timestamps so two
// uploads in the same millisecond never share a stored name.
type stampClock struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func newStampClock(now func() time.Time) *stampClock {
	return &stampClock{now: now}
}

func (c *stampClock) next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	stamp := c.now().UnixMilli()
	if stamp <= c.last {
		stamp = c.last + 1
	}
	c.last = stamp
	return stamp
}

// cleanOriginalName keeps only the final path element of a client-supplied name.
func cleanOriginalName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	base := path.Base(name)
	if base == "." || base == "/" || base == ".." {
		return "file"
	}
	return base
}

func storedFileName(stamp int64, originalName string) string {
	return strconv.FormatInt(stamp, 10) + "-" + whitespaceRun.ReplaceAllString(originalName, "_")
}

func detectContentType(head []byte, declared string) string {
	detected := mimetype.Detect(head)
	if detected.Is("application/octet-stream") && strings.TrimSpace(declared) != "" {
		return strings.TrimSpace(declared)
	}
	return detected.String()
}

// extensionType maps well-known extensions for files stored without a content type.
func extensionType(fileName string) string {
	switch strings.ToLower(path.Ext(fileName)) {
	case ".pdf":
		return "application/pdf"
	case ".zip":
		return "application/zip"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return ""
	}
}
