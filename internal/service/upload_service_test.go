package service

import (
	"context"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-submit-api/internal/storage"
)

func TestStoredFileName(t *testing.T) {
	require.Equal(t, "1700000000000-my_essay_final.pdf", storedFileName(1700000000000, "my essay \t final.pdf"))
	require.Equal(t, "report.pdf", cleanOriginalName(`C:\Users\ann\report.pdf`))
	require.Equal(t, "passwd", cleanOriginalName("../../etc/passwd"))
	require.Equal(t, "file", cleanOriginalName(""))
}

func TestStampClockIsStrictlyIncreasing(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	clock := newStampClock(func() time.Time { return fixed })

	require.Equal(t, int64(1700000000000), clock.next())
	require.Equal(t, int64(1700000000001), clock.next())
	require.Equal(t, int64(1700000000002), clock.next())
}

func TestUploadServiceStoreOpenDiscard(t *testing.T) {
	local := newLocalStorage(t)
	svc := NewUploadService(local, testLogger())
	ctx := context.Background()

	pdf := append([]byte("%PDF-1.4\n"), []byte("body")...)
	stored, err := svc.Store(ctx, buildFileHeader(t, "lab report.pdf", pdf))
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^\d+-lab_report\.pdf$`), stored.FileName)
	require.Equal(t, "lab report.pdf", stored.OriginalName)
	require.Equal(t, "/uploads/"+stored.FileName, stored.FilePath)
	require.Equal(t, "application/pdf", stored.ContentType)

	reader, info, err := svc.Open(ctx, stored.FileName)
	require.NoError(t, err)
	content, err := io.ReadAll(reader)
	require.NoError(t, reader.Close())
	require.NoError(t, err)
	require.Equal(t, pdf, content)
	require.Equal(t, "application/pdf", info.ContentType)

	require.NoError(t, svc.Discard(ctx, stored.FileName))
	require.NoError(t, svc.Discard(ctx, stored.FileName))

	_, _, err = svc.Open(ctx, stored.FileName)
	require.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestUploadServiceSameNameTwice(t *testing.T) {
	svc := NewUploadService(newLocalStorage(t), testLogger())
	ctx := context.Background()

	first, err := svc.Store(ctx, buildFileHeader(t, "a.txt", []byte("one")))
	require.NoError(t, err)
	second, err := svc.Store(ctx, buildFileHeader(t, "a.txt", []byte("two")))
	require.NoError(t, err)
	require.NotEqual(t, first.FileName, second.FileName)
}

func TestUploadServiceRequiresFile(t *testing.T) {
	svc := NewUploadService(newLocalStorage(t), testLogger())
	_, err := svc.Store(context.Background(), nil)
	require.ErrorIs(t, err, ErrFileRequired)
}
