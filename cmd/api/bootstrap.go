package main

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-submit-api/internal/config"
	"github.com/noah-isme/gema-submit-api/internal/database"
	"github.com/noah-isme/gema-submit-api/internal/repository"
	"github.com/noah-isme/gema-submit-api/internal/service"
	"github.com/noah-isme/gema-submit-api/internal/storage"
	cloud "github.com/noah-isme/gema-submit-api/pkg/cloudinary"
)

// openStore builds the repository.Store selected by STORAGE_DRIVER.
func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (repository.Store, error) {
	switch cfg.StorageDriver {
	case config.StorageFile:
		logger.Info().Str("path", cfg.DataFile).Msg("using json file store")
		return repository.NewFileStore(cfg.DataFile)

	case config.StorageMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		store := repository.NewMongoStore(client, client.Database(cfg.MongoDatabase))
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		logger.Info().Str("database", cfg.MongoDatabase).Msg("using mongo store")
		return store, nil

	case config.StoragePostgres:
		db, err := database.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info().Msg("using postgres store")
		return repository.NewGormStore(db)

	case config.StorageSQLite:
		db, err := database.ConnectSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("path", cfg.SQLitePath).Msg("using sqlite store")
		return repository.NewGormStore(db)

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// openFileStorage builds the upload backend selected by UPLOAD_DRIVER.
func openFileStorage(ctx context.Context, cfg config.Config, logger zerolog.Logger) (service.FileStorage, error) {
	switch cfg.UploadDriver {
	case config.UploadLocal:
		return storage.NewLocal(cfg.UploadDir)
	case config.UploadMinio:
		return storage.NewMinio(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		}, logger)
	case config.UploadCloudinary:
		return cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryFolder,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown upload driver %q", cfg.UploadDriver)
	}
}

// openCache connects to Redis when REDIS_URL is set. A nil client disables caching.
func openCache(ctx context.Context, cfg config.Config, logger zerolog.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	client, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable; student listing cache disabled")
		return nil
	}
	return client
}

// openEvents connects to NATS when NATS_URL is set.
func openEvents(cfg config.Config, logger zerolog.Logger) (*nats.Conn, service.EventPublisher) {
	if cfg.NATSURL == "" {
		return nil, nil
	}
	conn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable; submission events disabled")
		return nil, nil
	}
	return conn, service.NewNATSPublisher(conn, cfg.NATSSubject)
}
