package upload

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImageUploader stores a multipart profile image and returns its hosted
// URL. The stored name is a fresh uuid so client filenames never collide
// or leak into URLs.
type ImageUploader struct {
	storage Storage
	logger  *zap.Logger
}

func NewImageUploader(storage Storage, logger *zap.Logger) *ImageUploader {
	return &ImageUploader{
		storage: storage,
		logger:  logger,
	}
}

func (u *ImageUploader) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	key := fmt.Sprintf("profiles/%s%s", uuid.NewString(), strings.ToLower(filepath.Ext(file.Filename)))
	contentType := file.Header.Get("Content-Type")

	if err := u.storage.Save(ctx, key, src, contentType); err != nil {
		u.logger.Error("profile image upload failed",
			zap.String("key", key),
			zap.String("filename", file.Filename),
			zap.Error(err),
		)
		return "", fmt.Errorf("save profile image: %w", err)
	}

	url, err := u.storage.GetURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("resolve image url: %w", err)
	}

	u.logger.Info("profile image uploaded", zap.String("key", key), zap.Int64("size", file.Size))
	return url, nil
}
