package repo

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/pro-around/server/internal/db"
	"github.com/pro-around/server/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

const (
	// Timeouts. The store client owns pooling and multiplexing; the
	// repo only bounds individual calls.
	defaultWriteTimeout = 5 * time.Second
	defaultReadTimeout  = 10 * time.Second
)

// SearchFilter bounds a nearby-professionals query. Radius is in the
// units of the store's 2dsphere index. An empty Query matches everyone.
type SearchFilter struct {
	Longitude float64
	Latitude  float64
	Radius    float64
	Query     string
}

type UserRepository interface {
	FindNearbyProfessionals(ctx context.Context, search SearchFilter) ([]model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.User, error)
	UpdateFields(ctx context.Context, id string, fields bson.M) (*model.User, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) (int64, error)
	Count(ctx context.Context, role string) (int64, error)
}

type userRepository struct {
	con       *mongo.Database
	mongoRepo *db.Repository[model.User]
	logger    *zap.Logger
}

func NewUserRepository(con *mongo.Database, repo *db.Repository[model.User], logger *zap.Logger) UserRepository {
	return &userRepository{
		con:       con,
		mongoRepo: repo,
		logger:    logger,
	}
}

// FindNearbyProfessionals returns professionals within search.Radius of
// the point whose name, description or services match search.Query.
// Order is the store's proximity order: nearest first.
func (r *userRepository) FindNearbyProfessionals(ctx context.Context, search SearchFilter) ([]model.User, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().
		Eq("role", model.RoleProfessional).
		Near("location", search.Longitude, search.Latitude, search.Radius).
		Or(
			db.NewFilter().Regex("name", search.Query, "im").Build(),
			db.NewFilter().Regex("description", search.Query, "im").Build(),
			db.NewFilter().Regex("services", search.Query, "im").Build(),
		).
		Build()

	users, err := r.mongoRepo.FindAll(ctx, filter)
	if err != nil {
		r.logger.Error("nearby professionals query failed",
			zap.Float64("lng", search.Longitude),
			zap.Float64("lat", search.Latitude),
			zap.Float64("radius", search.Radius),
			zap.Error(err),
		)
		return nil, fmt.Errorf("find nearby professionals: %w", err)
	}

	r.logger.Debug("nearby professionals retrieved",
		zap.Int("count", len(users)),
		zap.Float64("radius", search.Radius),
	)
	return users, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	user, err := r.mongoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, r.mapLookupError(err, id)
	}
	return user, nil
}

// FindByIDs fetches user documents by id, in no particular order.
func (r *userRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().In("_id", ids).Build()
	users, err := r.mongoRepo.FindAll(ctx, filter)
	if err != nil {
		r.logger.Error("users by ids query failed", zap.Int("ids", len(ids)), zap.Error(err))
		return nil, fmt.Errorf("find users by ids: %w", err)
	}
	return users, nil
}

// UpdateFields applies a $set of the given fields and returns the
// updated document.
func (r *userRepository) UpdateFields(ctx context.Context, id string, fields bson.M) (*model.User, error) {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	user, err := r.mongoRepo.FindByIDAndUpdate(ctx, id, fields)
	if err != nil {
		return nil, r.mapLookupError(err, id)
	}

	r.logger.Info("user updated", zap.String("user_id", id), zap.Int("fields", len(fields)))
	return user, nil
}

// Touch sets lastSeen without checking the id exists first: touching a
// nonexistent user is not an error.
func (r *userRepository) Touch(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	if _, err := r.mongoRepo.UpdateByID(ctx, id, bson.M{"lastSeen": at}); err != nil {
		r.logger.Error("last seen update failed", zap.String("user_id", id), zap.Error(err))
		return fmt.Errorf("touch user: %w", err)
	}
	return nil
}

// Delete removes the user document and reports how many documents
// matched. Authored reviews and references from other users' review
// lists are left in place.
func (r *userRepository) Delete(ctx context.Context, id string) (int64, error) {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	result, err := r.mongoRepo.DeleteByID(ctx, id)
	if err != nil {
		if isBadObjectID(err) {
			return 0, nil
		}
		r.logger.Error("user delete failed", zap.String("user_id", id), zap.Error(err))
		return 0, fmt.Errorf("delete user: %w", err)
	}

	r.logger.Info("user deleted", zap.String("user_id", id), zap.Int64("deleted", result.DeletedCount))
	return result.DeletedCount, nil
}

// Count counts users, restricted to a role when role is non-empty.
func (r *userRepository) Count(ctx context.Context, role string) (int64, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.Empty()
	if role != "" {
		filter = db.NewFilter().Eq("role", role).Build()
	}
	return r.mongoRepo.Count(ctx, filter)
}

// mapLookupError folds the two "no such user" shapes, a malformed hex id
// and an id that matches nothing, into ErrUserNotFound.
func (r *userRepository) mapLookupError(err error, id string) error {
	if errors.Is(err, mongo.ErrNoDocuments) || isBadObjectID(err) {
		return ErrUserNotFound
	}
	r.logger.Error("user lookup failed", zap.String("user_id", id), zap.Error(err))
	return fmt.Errorf("find user: %w", err)
}

// isBadObjectID reports whether err came out of ObjectIDFromHex: either
// a wrong-length id or one with non-hex bytes.
func isBadObjectID(err error) bool {
	if errors.Is(err, primitive.ErrInvalidHex) {
		return true
	}
	var invalidByte hex.InvalidByteError
	return errors.As(err, &invalidByte)
}

func ensureTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hadDeadline := ctx.Deadline(); hadDeadline {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, timeout)
}
