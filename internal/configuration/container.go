package configuration

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pro-around/server/internal/db"
	"github.com/pro-around/server/internal/handler"
	"github.com/pro-around/server/internal/model"
	"github.com/pro-around/server/internal/repo"
	"github.com/pro-around/server/internal/service"
	"github.com/pro-around/server/internal/upload"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const defaultConfigPath = "config/config.dev.json"

type Container struct {
	DirectoryHandler handler.DirectoryHandler
	Directory        service.DirectoryService
	Config           Config
	Logger           *zap.Logger

	// private - for cleanup
	mongoClient *mongo.Database
}

func BuildContainer() (*Container, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	con, err := db.OpenConnection(config.Database.Uri, config.Database.Database)
	if err != nil {
		return nil, err
	}

	logger, _ := zap.NewProduction()

	userRepo := repo.NewUserRepository(con, db.NewRepository[model.User](con, config.Database.UsersCollection), logger)
	reviewRepo := repo.NewReviewRepository(db.NewRepository[model.Review](con, config.Database.ReviewsCollection), logger)

	storage, err := upload.NewStorage(upload.Config{
		Type:      config.Storage.Type,
		BasePath:  config.Storage.BasePath,
		BaseURL:   config.Storage.BaseURL,
		Bucket:    config.Storage.Bucket,
		Region:    config.Storage.Region,
		AccessKey: config.Storage.AccessKey,
		SecretKey: config.Storage.SecretKey,
		Endpoint:  config.Storage.Endpoint,
	})
	if err != nil {
		return nil, err
	}
	uploader := upload.NewImageUploader(storage, logger)

	directory := service.NewDirectoryService(userRepo, reviewRepo, uploader, logger)
	directoryHandler := handler.NewDirectoryHandler(directory)

	return &Container{
		DirectoryHandler: directoryHandler,
		Directory:        directory,
		Config:           *config,
		Logger:           logger,
		mongoClient:      con,
	}, nil
}

// Close gracefully shuts down all connections
func (c *Container) Close() error {
	// Sync logger
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}

	// Close MongoDB connection pool
	if c.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.mongoClient.Client().Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to close MongoDB connection: %w", err)
		}
	}

	return nil
}
