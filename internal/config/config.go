package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageFile     = "file"
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

// Upload drivers accepted by UPLOAD_DRIVER.
const (
	UploadLocal      = "local"
	UploadMinio      = "minio"
	UploadCloudinary = "cloudinary"
)

// Authorization modes accepted by AUTH_MODE.
const (
	AuthModeTrust = "trust"
	AuthModeJWT   = "jwt"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName   string
	AppEnv    string
	AppPort   string
	LogLevel  string
	LogFormat string

	AllowOrigins   string
	LoginRateLimit int

	StorageDriver string
	DataFile      string
	MongoURI      string
	MongoDatabase string
	DatabaseURL   string
	SQLitePath    string

	UploadDriver   string
	UploadDir      string
	UploadMaxBytes int64
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	RedisURL    string
	CacheTTL    time.Duration
	NATSURL     string
	NATSSubject string

	AuthMode       string
	JWTSecret      string
	JWTTTL         time.Duration
	PasswordScheme string

	AdminName     string
	AdminEmail    string
	AdminPassword string

	SanitizeText bool
}

// DefaultUploadMaxBytes caps request bodies when UPLOAD_MAX_BYTES is unset.
const DefaultUploadMaxBytes = 50 * 1024 * 1024

// BodyLimit returns the largest request body the HTTP server accepts.
func (c Config) BodyLimit() int {
	if c.UploadMaxBytes <= 0 {
		return DefaultUploadMaxBytes
	}
	return int(c.UploadMaxBytes)
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

var envBindings = map[string]string{
	"app.name":           "APP_NAME",
	"app.env":            "APP_ENV",
	"app.port":           "PORT",
	"log.level":          "LOG_LEVEL",
	"log.format":         "LOG_FORMAT",
	"http.allow_origins": "CORS_ALLOW_ORIGINS",
	"auth.login_limit":   "LOGIN_RATE_LIMIT",
	"storage.driver":     "STORAGE_DRIVER",
	"storage.data_file":  "DATA_FILE",
	"mongo.uri":          "MONGO_URI",
	"mongo.database":     "MONGO_DATABASE",
	"database.url":       "DATABASE_URL",
	"sqlite.path":        "SQLITE_PATH",
	"upload.driver":      "UPLOAD_DRIVER",
	"upload.dir":         "UPLOAD_DIR",
	"upload.max_bytes":   "UPLOAD_MAX_BYTES",
	"minio.endpoint":     "MINIO_ENDPOINT",
	"minio.access_key":   "MINIO_ACCESS_KEY",
	"minio.secret_key":   "MINIO_SECRET_KEY",
	"minio.bucket":       "MINIO_BUCKET",
	"minio.use_ssl":      "MINIO_USE_SSL",
	"cloudinary.cloud":   "CLOUDINARY_CLOUD_NAME",
	"cloudinary.key":     "CLOUDINARY_API_KEY",
	"cloudinary.secret":  "CLOUDINARY_API_SECRET",
	"cloudinary.folder":  "CLOUDINARY_FOLDER",
	"redis.url":          "REDIS_URL",
	"cache.ttl":          "CACHE_TTL",
	"nats.url":           "NATS_URL",
	"nats.subject":       "NATS_SUBJECT",
	"auth.mode":          "AUTH_MODE",
	"jwt.secret":         "JWT_SECRET",
	"jwt.ttl":            "JWT_TTL",
	"password.scheme":    "PASSWORD_SCHEME",
	"admin.name":         "ADMIN_NAME",
	"admin.email":        "ADMIN_EMAIL",
	"admin.password":     "ADMIN_PASSWORD",
	"text.sanitize":      "SANITIZE_TEXT",
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	v.SetDefault("app.name", "GEMA Submissions API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "5000")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("http.allow_origins", "*")
	v.SetDefault("auth.login_limit", 20)
	v.SetDefault("storage.driver", StorageFile)
	v.SetDefault("storage.data_file", "./db.json")
	v.SetDefault("mongo.database", "submissions")
	v.SetDefault("sqlite.path", "./submissions.db")
	v.SetDefault("upload.driver", UploadLocal)
	v.SetDefault("upload.dir", "./uploads")
	v.SetDefault("upload.max_bytes", DefaultUploadMaxBytes)
	v.SetDefault("minio.bucket", "submissions")
	v.SetDefault("cloudinary.folder", "gema/submissions")
	v.SetDefault("cache.ttl", "2m")
	v.SetDefault("nats.subject", "gema.submissions")
	v.SetDefault("auth.mode", AuthModeTrust)
	v.SetDefault("jwt.ttl", "4h")
	v.SetDefault("password.scheme", "plaintext")
	v.SetDefault("admin.name", "Admin")
	v.SetDefault("admin.email", "adminnsuk001@gmail.com")
	v.SetDefault("admin.password", "admin001")
	v.SetDefault("text.sanitize", false)

	cacheTTL, err := time.ParseDuration(v.GetString("cache.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid cache ttl: %w", err)
	}

	jwtTTL, err := time.ParseDuration(v.GetString("jwt.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}

	cfg := Config{
		AppName:        v.GetString("app.name"),
		AppEnv:         v.GetString("app.env"),
		AppPort:        v.GetString("app.port"),
		LogLevel:       v.GetString("log.level"),
		LogFormat:      v.GetString("log.format"),
		AllowOrigins:   v.GetString("http.allow_origins"),
		LoginRateLimit: v.GetInt("auth.login_limit"),
		StorageDriver:  strings.ToLower(v.GetString("storage.driver")),
		DataFile:       v.GetString("storage.data_file"),
		MongoURI:       v.GetString("mongo.uri"),
		MongoDatabase:  v.GetString("mongo.database"),
		DatabaseURL:    v.GetString("database.url"),
		SQLitePath:     v.GetString("sqlite.path"),
		UploadDriver:   strings.ToLower(v.GetString("upload.driver")),
		UploadDir:      v.GetString("upload.dir"),
		UploadMaxBytes: v.GetInt64("upload.max_bytes"),
		MinioEndpoint:  v.GetString("minio.endpoint"),
		MinioAccessKey: v.GetString("minio.access_key"),
		MinioSecretKey: v.GetString("minio.secret_key"),
		MinioBucket:    v.GetString("minio.bucket"),
		MinioUseSSL:    v.GetBool("minio.use_ssl"),

		CloudinaryCloudName: v.GetString("cloudinary.cloud"),
		CloudinaryAPIKey:    v.GetString("cloudinary.key"),
		CloudinaryAPISecret: v.GetString("cloudinary.secret"),
		CloudinaryFolder:    v.GetString("cloudinary.folder"),

		RedisURL:       v.GetString("redis.url"),
		CacheTTL:       cacheTTL,
		NATSURL:        v.GetString("nats.url"),
		NATSSubject:    v.GetString("nats.subject"),
		AuthMode:       strings.ToLower(v.GetString("auth.mode")),
		JWTSecret:      v.GetString("jwt.secret"),
		JWTTTL:         jwtTTL,
		PasswordScheme: strings.ToLower(v.GetString("password.scheme")),
		AdminName:      v.GetString("admin.name"),
		AdminEmail:     v.GetString("admin.email"),
		AdminPassword:  v.GetString("admin.password"),
		SanitizeText:   v.GetBool("text.sanitize"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that the selected backends have the settings they need.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageFile:
		if c.DataFile == "" {
			return fmt.Errorf("DATA_FILE must be provided for the file storage driver")
		}
	case StorageMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI must be provided for the mongo storage driver")
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be provided for the postgres storage driver")
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH must be provided for the sqlite storage driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}

	switch c.UploadDriver {
	case UploadLocal:
		if c.UploadDir == "" {
			return fmt.Errorf("UPLOAD_DIR must be provided for the local upload driver")
		}
	case UploadMinio:
		if c.MinioEndpoint == "" || c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			return fmt.Errorf("minio endpoint and credentials must be provided")
		}
	case UploadCloudinary:
		if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			return fmt.Errorf("cloudinary credentials must be provided")
		}
	default:
		return fmt.Errorf("unknown upload driver %q", c.UploadDriver)
	}

	switch c.AuthMode {
	case AuthModeTrust:
	case AuthModeJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET must be provided when AUTH_MODE=jwt")
		}
	default:
		return fmt.Errorf("unknown auth mode %q", c.AuthMode)
	}

	switch c.PasswordScheme {
	case "plaintext", "bcrypt":
	default:
		return fmt.Errorf("unknown password scheme %q", c.PasswordScheme)
	}

	if c.AdminEmail == "" || c.AdminPassword == "" {
		return fmt.Errorf("admin seed credentials must be provided")
	}

	return nil
}
