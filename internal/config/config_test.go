package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "5000", cfg.AppPort)
	require.Equal(t, ":5000", cfg.HTTPAddress())
	require.Equal(t, StorageFile, cfg.StorageDriver)
	require.Equal(t, UploadLocal, cfg.UploadDriver)
	require.Equal(t, AuthModeTrust, cfg.AuthMode)
	require.Equal(t, "plaintext", cfg.PasswordScheme)
	require.Equal(t, "adminnsuk001@gmail.com", cfg.AdminEmail)
	require.Equal(t, 2*time.Minute, cfg.CacheTTL)
	require.Empty(t, cfg.MongoURI)
	require.Equal(t, 20, cfg.LoginRateLimit)
	require.Equal(t, "*", cfg.AllowOrigins)
	require.False(t, cfg.SanitizeText)
	require.Equal(t, DefaultUploadMaxBytes, cfg.BodyLimit())
}

func TestLoadReadsPlainEnvironment(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("STORAGE_DRIVER", "MONGO")
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("CACHE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.HTTPAddress())
	require.Equal(t, StorageMongo, cfg.StorageDriver)
	require.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	require.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestLoadReadsUploadMaxBytes(t *testing.T) {
	t.Setenv("UPLOAD_MAX_BYTES", "209715200")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, int64(209715200), cfg.UploadMaxBytes)
	require.Equal(t, 209715200, cfg.BodyLimit())

	require.Equal(t, DefaultUploadMaxBytes, Config{UploadMaxBytes: -1}.BodyLimit())
}

func TestLoadRejectsMongoWithoutURI(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "MONGO_URI")
}

func TestValidateJWTModeNeedsSecret(t *testing.T) {
	cfg := Config{
		StorageDriver:  StorageFile,
		DataFile:       "db.json",
		UploadDriver:   UploadLocal,
		UploadDir:      "uploads",
		AuthMode:       AuthModeJWT,
		PasswordScheme: "plaintext",
		AdminEmail:     "admin@example.com",
		AdminPassword:  "secret",
	}
	require.Error(t, cfg.Validate())

	cfg.JWTSecret = "signing-key"
	require.NoError(t, cfg.Validate())
}

func TestValidateUnknownDrivers(t *testing.T) {
	cfg := Config{StorageDriver: "cassandra"}
	require.ErrorContains(t, cfg.Validate(), "unknown storage driver")

	cfg = Config{StorageDriver: StorageFile, DataFile: "db.json", UploadDriver: "ftp"}
	require.ErrorContains(t, cfg.Validate(), "unknown upload driver")
}

func TestValidateCloudinaryNeedsCredentials(t *testing.T) {
	cfg := Config{
		StorageDriver:  StorageFile,
		DataFile:       "db.json",
		UploadDriver:   UploadCloudinary,
		AuthMode:       AuthModeTrust,
		PasswordScheme: "plaintext",
		AdminEmail:     "admin@example.com",
		AdminPassword:  "secret",
	}
	require.ErrorContains(t, cfg.Validate(), "cloudinary credentials")

	cfg.CloudinaryCloudName = "demo"
	cfg.CloudinaryAPIKey = "key"
	cfg.CloudinaryAPISecret = "secret"
	require.NoError(t, cfg.Validate())
}
