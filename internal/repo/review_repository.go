package repo

import (
	"context"
	"fmt"

	"github.com/pro-around/server/internal/db"
	"github.com/pro-around/server/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ReviewRepository interface {
	// FindByIDs fetches the referenced reviews in one $in query.
	// Missing ids (dangling references) are silently absent from the
	// result; callers restore the owning user's reference order.
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Review, error)
	Count(ctx context.Context) (int64, error)
}

type reviewRepository struct {
	mongoRepo *db.Repository[model.Review]
	logger    *zap.Logger
}

func NewReviewRepository(repo *db.Repository[model.Review], logger *zap.Logger) ReviewRepository {
	return &reviewRepository{
		mongoRepo: repo,
		logger:    logger,
	}
}

func (r *reviewRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Review, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().In("_id", ids).Build()
	reviews, err := r.mongoRepo.FindAll(ctx, filter)
	if err != nil {
		r.logger.Error("reviews by ids query failed", zap.Int("ids", len(ids)), zap.Error(err))
		return nil, fmt.Errorf("find reviews by ids: %w", err)
	}

	r.logger.Debug("reviews retrieved", zap.Int("requested", len(ids)), zap.Int("found", len(reviews)))
	return reviews, nil
}

func (r *reviewRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	return r.mongoRepo.Count(ctx, db.Empty())
}
