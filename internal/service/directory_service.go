package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/pro-around/server/internal/auth"
	"github.com/pro-around/server/internal/model"
	"github.com/pro-around/server/internal/repo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultSearchRadius is used whenever the caller supplies no radius or
// one that is not a valid number. It is a fixed constant in the units of
// the store's geo index, not a conversion.
const DefaultSearchRadius = 100000

var (
	// ErrUploadFailed is the single error every image-upload failure
	// mode collapses into.
	ErrUploadFailed = errors.New("upload failed")

	// ErrWrongPassword is returned when a password change carries a
	// current password that does not match the stored hash.
	ErrWrongPassword = errors.New("current password does not match")

	// ErrEmptyPassword is returned when a password change carries an
	// empty new password.
	ErrEmptyPassword = errors.New("new password must not be empty")
)

// ImageUploader stores a multipart image and returns its hosted URL.
type ImageUploader interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (string, error)
}

type DirectoryService interface {
	SearchNearby(ctx context.Context, longitude, latitude, radius float64, query string) ([]model.ProfessionalListing, error)
	Profile(ctx context.Context, id string) (*model.ProfileSummary, error)
	ProfileReviews(ctx context.Context, id string) (*model.ProfileReviews, error)
	RawProfile(ctx context.Context, id string) (*model.RawProfile, error)
	Heartbeat(ctx context.Context, id string) error
	UpdatePhoto(ctx context.Context, id string, file *multipart.FileHeader) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, in model.ProfileUpdate) (*model.User, error)
	ChangePassword(ctx context.Context, id string, in model.PasswordChange) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*model.DirectoryStats, error)
}

type directoryService struct {
	users    repo.UserRepository
	reviews  repo.ReviewRepository
	uploader ImageUploader
	logger   *zap.Logger
	now      func() time.Time
}

func NewDirectoryService(users repo.UserRepository, reviews repo.ReviewRepository, uploader ImageUploader, logger *zap.Logger) DirectoryService {
	return &directoryService{
		users:    users,
		reviews:  reviews,
		uploader: uploader,
		logger:   logger,
		now:      time.Now,
	}
}

// SearchNearby returns the professionals within radius of the point
// whose profile matches query (empty query matches everyone), nearest
// first, shaped for listing. Ratings are averaged over each match's
// current reviews in one batch query.
func (s *directoryService) SearchNearby(ctx context.Context, longitude, latitude, radius float64, query string) ([]model.ProfessionalListing, error) {
	users, err := s.users.FindNearbyProfessionals(ctx, repo.SearchFilter{
		Longitude: longitude,
		Latitude:  latitude,
		Radius:    radius,
		Query:     query,
	})
	if err != nil {
		return nil, err
	}

	var allRefs []primitive.ObjectID
	for _, u := range users {
		allRefs = append(allRefs, u.Reviews...)
	}
	starsByID, err := s.starsByReviewID(ctx, allRefs)
	if err != nil {
		return nil, err
	}

	listings := Map(users, func(u model.User) model.ProfessionalListing {
		return model.ProfessionalListing{
			ProfessionalID: u.ID,
			Name:           u.Name,
			Image:          u.UserPhoto,
			AvgRate:        averageOf(u.Reviews, starsByID),
			Location:       model.LngLat{Lng: u.Location.Lng(), Lat: u.Location.Lat()},
		}
	})
	return listings, nil
}

func (s *directoryService) Profile(ctx context.Context, id string) (*model.ProfileSummary, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	starsByID, err := s.starsByReviewID(ctx, user.Reviews)
	if err != nil {
		return nil, err
	}

	summary := &model.ProfileSummary{
		ID:          user.ID,
		Name:        user.Name,
		AvgRate:     averageOf(user.Reviews, starsByID),
		Image:       user.UserPhoto,
		Description: user.Description,
		Services:    user.Services,
		LastSeen:    user.LastSeen,
		Phone:       user.Phone,
	}
	if user.Location != nil {
		summary.Location = &model.LngLat{Lng: user.Location.Lng(), Lat: user.Location.Lat()}
	}
	return summary, nil
}

func (s *directoryService) ProfileReviews(ctx context.Context, id string) (*model.ProfileReviews, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reviews, authors, err := s.expandReviews(ctx, user.Reviews)
	if err != nil {
		return nil, err
	}

	expanded := Map(reviews, func(rv model.Review) model.ExpandedReview {
		out := model.ExpandedReview{
			ID:        rv.ID,
			Images:    rv.Images,
			Stars:     rv.Stars,
			Comment:   rv.Comment,
			CreatedAt: rv.CreatedAt,
		}
		if a, ok := authors[rv.FromUserID]; ok {
			out.From = &model.Reviewer{ID: a.ID, Name: a.Name, UserPhoto: a.UserPhoto}
		}
		return out
	})

	return &model.ProfileReviews{
		ID:      user.ID,
		Name:    user.Name,
		Reviews: expanded,
	}, nil
}

// RawProfile returns the stored document as-is, reviews and their
// authors fully expanded. Unlike every other read it strips no fields.
func (s *directoryService) RawProfile(ctx context.Context, id string) (*model.RawProfile, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reviews, authors, err := s.expandReviews(ctx, user.Reviews)
	if err != nil {
		return nil, err
	}

	raw := Map(reviews, func(rv model.Review) model.RawReview {
		out := model.RawReview{
			ID:        rv.ID,
			Stars:     rv.Stars,
			Comment:   rv.Comment,
			Images:    rv.Images,
			CreatedAt: rv.CreatedAt,
		}
		if a, ok := authors[rv.FromUserID]; ok {
			author := a
			out.FromUser = &author
		}
		return out
	})

	return &model.RawProfile{User: *user, Reviews: raw}, nil
}

// Heartbeat records the user as seen now. Touching an id that matches
// nothing still succeeds.
func (s *directoryService) Heartbeat(ctx context.Context, id string) error {
	return s.users.Touch(ctx, id, s.now())
}

func (s *directoryService) UpdatePhoto(ctx context.Context, id string, file *multipart.FileHeader) (*model.User, error) {
	url, err := s.uploader.Upload(ctx, file)
	if err != nil {
		s.logger.Error("image upload rejected", zap.String("user_id", id), zap.Error(err))
		return nil, ErrUploadFailed
	}

	return s.users.UpdateFields(ctx, id, bson.M{"userPhoto": url})
}

func (s *directoryService) UpdateProfile(ctx context.Context, id string, in model.ProfileUpdate) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	upd, err := newRoleUpdate(user.Role, in)
	if err != nil {
		s.logger.Warn("profile update for unknown role",
			zap.String("user_id", id),
			zap.String("role", user.Role),
		)
		return nil, err
	}

	return s.users.UpdateFields(ctx, id, upd.document(s.now()))
}

// ChangePassword is the one deliberate write path for credentials: it
// verifies the current password before storing a fresh bcrypt hash.
func (s *directoryService) ChangePassword(ctx context.Context, id string, in model.PasswordChange) error {
	if in.NewPassword == "" {
		return ErrEmptyPassword
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.Password, in.CurrentPassword) {
		return ErrWrongPassword
	}

	hashed, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if _, err := s.users.UpdateFields(ctx, id, bson.M{"password": hashed}); err != nil {
		return err
	}

	s.logger.Info("password changed", zap.String("user_id", id))
	return nil
}

// Delete removes the user document. Deleting an id that matches nothing
// still reports success; authored reviews stay behind.
func (s *directoryService) Delete(ctx context.Context, id string) error {
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted == 0 {
		s.logger.Warn("delete matched no document", zap.String("user_id", id))
	}
	return nil
}

func (s *directoryService) Stats(ctx context.Context) (*model.DirectoryStats, error) {
	total, err := s.users.Count(ctx, "")
	if err != nil {
		return nil, err
	}
	professionals, err := s.users.Count(ctx, model.RoleProfessional)
	if err != nil {
		return nil, err
	}
	clients, err := s.users.Count(ctx, model.RoleClient)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.Count(ctx)
	if err != nil {
		return nil, err
	}

	status := "healthy"
	if total == 0 {
		status = "idle"
	}

	return &model.DirectoryStats{
		Status:        status,
		TotalUsers:    total,
		Professionals: professionals,
		Clients:       clients,
		TotalReviews:  reviews,
	}, nil
}

// -----------------------------------------------------------------------------
// Private Helper Methods
// -----------------------------------------------------------------------------

// starsByReviewID resolves review references to their star ratings in a
// single batch. Dangling references simply have no entry.
func (s *directoryService) starsByReviewID(ctx context.Context, refs []primitive.ObjectID) (map[primitive.ObjectID]int, error) {
	reviews, err := s.reviews.FindByIDs(ctx, refs)
	if err != nil {
		return nil, err
	}

	stars := make(map[primitive.ObjectID]int, len(reviews))
	for _, rv := range reviews {
		stars[rv.ID] = rv.Stars
	}
	return stars, nil
}

// expandReviews fetches the referenced reviews in the owner's reference
// order together with their authors. Dangling references are dropped.
func (s *directoryService) expandReviews(ctx context.Context, refs []primitive.ObjectID) ([]model.Review, map[primitive.ObjectID]model.User, error) {
	fetched, err := s.reviews.FindByIDs(ctx, refs)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[primitive.ObjectID]model.Review, len(fetched))
	for _, rv := range fetched {
		byID[rv.ID] = rv
	}

	// restore storage order of the owner's reference list
	ordered := make([]model.Review, 0, len(fetched))
	for _, ref := range refs {
		if rv, ok := byID[ref]; ok {
			ordered = append(ordered, rv)
		}
	}

	authorIDs := Map(ordered, func(rv model.Review) primitive.ObjectID { return rv.FromUserID })
	authorDocs, err := s.users.FindByIDs(ctx, dedupe(authorIDs))
	if err != nil {
		return nil, nil, err
	}

	authors := make(map[primitive.ObjectID]model.User, len(authorDocs))
	for _, a := range authorDocs {
		authors[a.ID] = a
	}
	return ordered, authors, nil
}

// averageOf computes the arithmetic mean of the referenced ratings, or
// nil when none of the references resolve.
func averageOf(refs []primitive.ObjectID, stars map[primitive.ObjectID]int) *float64 {
	sum, count := 0, 0
	for _, ref := range refs {
		if v, ok := stars[ref]; ok {
			sum += v
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := float64(sum) / float64(count)
	return &avg
}

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	return Filter(ids, func(id primitive.ObjectID) bool {
		if _, ok := seen[id]; ok {
			return false
		}
		seen[id] = struct{}{}
		return true
	})
}
