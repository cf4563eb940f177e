package service

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"github.com/pro-around/server/internal/auth"
	"github.com/pro-around/server/internal/model"
	"github.com/pro-around/server/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeUserRepo struct {
	users        map[string]model.User
	nearby       []model.User
	lastSearch   repo.SearchFilter
	lastUpdate   bson.M
	lastUpdateID string
	touched      []string
	deleted      int64
	deleteErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]model.User)}
}

func (f *fakeUserRepo) put(u model.User) {
	f.users[u.ID.Hex()] = u
}

func (f *fakeUserRepo) FindNearbyProfessionals(_ context.Context, search repo.SearchFilter) ([]model.User, error) {
	f.lastSearch = search
	return f.nearby, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repo.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeUserRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]model.User, error) {
	var out []model.User
	for _, id := range ids {
		if u, ok := f.users[id.Hex()]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateFields(_ context.Context, id string, fields bson.M) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repo.ErrUserNotFound
	}
	f.lastUpdateID = id
	f.lastUpdate = fields
	return &u, nil
}

func (f *fakeUserRepo) Touch(_ context.Context, id string, _ time.Time) error {
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, _ string) (int64, error) {
	return f.deleted, f.deleteErr
}

func (f *fakeUserRepo) Count(_ context.Context, role string) (int64, error) {
	if role == "" {
		return int64(len(f.users)), nil
	}
	var n int64
	for _, u := range f.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type fakeReviewRepo struct {
	reviews map[primitive.ObjectID]model.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[primitive.ObjectID]model.Review)}
}

func (f *fakeReviewRepo) put(rv model.Review) {
	f.reviews[rv.ID] = rv
}

func (f *fakeReviewRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]model.Review, error) {
	var out []model.Review
	for _, id := range ids {
		if rv, ok := f.reviews[id]; ok {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.reviews)), nil
}

type fakeUploader struct {
	url string
	err error
}

func (f *fakeUploader) Upload(_ context.Context, _ *multipart.FileHeader) (string, error) {
	return f.url, f.err
}

func newService(users *fakeUserRepo, reviews *fakeReviewRepo, up ImageUploader) DirectoryService {
	return NewDirectoryService(users, reviews, up, zap.NewNop())
}

func professionalWith(reviews ...primitive.ObjectID) model.User {
	return model.User{
		ID:   primitive.NewObjectID(),
		Name: "Dana",
		Role: model.RoleProfessional,
		Location: &model.GeoPoint{
			Type:        "Point",
			Coordinates: []float64{-3.7, 40.4},
		},
		Reviews: reviews,
	}
}

func starReview(stars int) model.Review {
	return model.Review{
		ID:         primitive.NewObjectID(),
		FromUserID: primitive.NewObjectID(),
		Stars:      stars,
	}
}

// -----------------------------------------------------------------------------
// Search
// -----------------------------------------------------------------------------

func TestSearchNearby_AverageRating(t *testing.T) {
	users := newFakeUserRepo()
	reviews := newFakeReviewRepo()

	r1, r2, r3 := starReview(5), starReview(3), starReview(4)
	reviews.put(r1)
	reviews.put(r2)
	reviews.put(r3)

	pro := professionalWith(r1.ID, r2.ID, r3.ID)
	users.nearby = []model.User{pro}

	svc := newService(users, reviews, &fakeUploader{})
	listings, err := svc.SearchNearby(context.Background(), -3.7, 40.4, DefaultSearchRadius, "")
	require.NoError(t, err)
	require.Len(t, listings, 1)

	require.NotNil(t, listings[0].AvgRate)
	assert.InDelta(t, 4.0, *listings[0].AvgRate, 1e-9)
	assert.Equal(t, pro.ID, listings[0].ProfessionalID)
	assert.Equal(t, -3.7, listings[0].Location.Lng)
	assert.Equal(t, 40.4, listings[0].Location.Lat)
}

func TestSearchNearby_NoReviewsYieldsNullRating(t *testing.T) {
	users := newFakeUserRepo()
	users.nearby = []model.User{professionalWith()}

	svc := newService(users, newFakeReviewRepo(), &fakeUploader{})
	listings, err := svc.SearchNearby(context.Background(), 0, 0, DefaultSearchRadius, "")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Nil(t, listings[0].AvgRate)
}

func TestSearchNearby_ForwardsFilter(t *testing.T) {
	users := newFakeUserRepo()

	svc := newService(users, newFakeReviewRepo(), &fakeUploader{})
	_, err := svc.SearchNearby(context.Background(), 12.5, -8.25, 500, "plumber")
	require.NoError(t, err)

	assert.Equal(t, 12.5, users.lastSearch.Longitude)
	assert.Equal(t, -8.25, users.lastSearch.Latitude)
	assert.Equal(t, 500.0, users.lastSearch.Radius)
	assert.Equal(t, "plumber", users.lastSearch.Query)
}

func TestSearchNearby_PreservesStoreOrder(t *testing.T) {
	users := newFakeUserRepo()
	first := professionalWith()
	second := professionalWith()
	users.nearby = []model.User{first, second}

	svc := newService(users, newFakeReviewRepo(), &fakeUploader{})
	listings, err := svc.SearchNearby(context.Background(), 0, 0, DefaultSearchRadius, "")
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, first.ID, listings[0].ProfessionalID)
	assert.Equal(t, second.ID, listings[1].ProfessionalID)
}

// -----------------------------------------------------------------------------
// Profiles
// -----------------------------------------------------------------------------

func TestProfile_Summary(t *testing.T) {
	users := newFakeUserRepo()
	reviews := newFakeReviewRepo()

	r1, r2 := starReview(2), starReview(4)
	reviews.put(r1)
	reviews.put(r2)

	pro := professionalWith(r1.ID, r2.ID)
	pro.Description = "certified electrician"
	pro.Services = "wiring, repairs"
	pro.Phone = "555"
	users.put(pro)

	svc := newService(users, reviews, &fakeUploader{})
	summary, err := svc.Profile(context.Background(), pro.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, pro.ID, summary.ID)
	assert.Equal(t, "certified electrician", summary.Description)
	assert.Equal(t, "wiring, repairs", summary.Services)
	assert.Equal(t, "555", summary.Phone)
	require.NotNil(t, summary.AvgRate)
	assert.InDelta(t, 3.0, *summary.AvgRate, 1e-9)
	require.NotNil(t, summary.Location)
	assert.Equal(t, -3.7, summary.Location.Lng)
}

func TestProfile_NotFound(t *testing.T) {
	svc := newService(newFakeUserRepo(), newFakeReviewRepo(), &fakeUploader{})
	_, err := svc.Profile(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, repo.ErrUserNotFound)
}

func TestProfileReviews_ExpandsAuthorsInReferenceOrder(t *testing.T) {
	users := newFakeUserRepo()
	reviews := newFakeReviewRepo()

	author := model.User{
		ID:        primitive.NewObjectID(),
		Name:      "Rey",
		UserPhoto: "https://cdn.example.com/rey.png",
		Role:      model.RoleClient,
	}
	users.put(author)

	r1 := model.Review{ID: primitive.NewObjectID(), FromUserID: author.ID, Stars: 5, Comment: "great"}
	r2 := model.Review{ID: primitive.NewObjectID(), FromUserID: author.ID, Stars: 1, Comment: "late"}
	reviews.put(r1)
	reviews.put(r2)

	dangling := primitive.NewObjectID()
	pro := professionalWith(r2.ID, dangling, r1.ID)
	users.put(pro)

	svc := newService(users, reviews, &fakeUploader{})
	out, err := svc.ProfileReviews(context.Background(), pro.ID.Hex())
	require.NoError(t, err)

	require.Len(t, out.Reviews, 2)
	assert.Equal(t, r2.ID, out.Reviews[0].ID)
	assert.Equal(t, r1.ID, out.Reviews[1].ID)

	require.NotNil(t, out.Reviews[0].From)
	assert.Equal(t, "Rey", out.Reviews[0].From.Name)
	assert.Equal(t, "https://cdn.example.com/rey.png", out.Reviews[0].From.UserPhoto)
}

func TestRawProfile_KeepsStoredDocument(t *testing.T) {
	users := newFakeUserRepo()
	pro := professionalWith()
	pro.Email = "dana@example.com"
	pro.Password = "$2a$10$hash"
	users.put(pro)

	svc := newService(users, newFakeReviewRepo(), &fakeUploader{})
	raw, err := svc.RawProfile(context.Background(), pro.ID.Hex())
	require.NoError(t, err)

	// the raw shape intentionally strips nothing
	assert.Equal(t, "dana@example.com", raw.Email)
	assert.Equal(t, "$2a$10$hash", raw.Password)
}

// -----------------------------------------------------------------------------
// Writes
// -----------------------------------------------------------------------------

func TestHeartbeat_LenientOnUnknownID(t *testing.T) {
	users := newFakeUserRepo()
	svc := newService(users, newFakeReviewRepo(), &fakeUploader{})

	err := svc.Heartbeat(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, []string{"does-not-exist"}, users.touched)
}

func TestUpdatePhoto_SetsHostedURL(t *testing.T) {
	users := newFakeUserRepo()
	pro := professionalWith()
	users.put(pro)

	svc := newService(users, newFakeReviewRepo(), &fakeUploader{url: "https://cdn.example.com/p/1.png"})
	_, err := svc.UpdatePhoto(context.Background(), pro.ID.Hex(), &multipart.FileHeader{})
	require.NoError(t, err)

	assert.Equal(t, bson.M{"userPhoto": "https://cdn.example.com/p/1.png"}, users.lastUpdate)
}

func TestUpdatePhoto_CollapsesUploadFailures(t *testing.T) {
	svc := newService(newFakeUserRepo(), newFakeReviewRepo(), &fakeUploader{err: errors.New("bucket unreachable")})
	_, err := svc.UpdatePhoto(context.Background(), primitive.NewObjectID().Hex(), &multipart.FileHeader{})
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestUpdateProfile_ClientIgnoresEmptyPhoneAndServices(t *testing.T) {
	users := newFakeUserRepo()
	client := model.User{ID: primitive.NewObjectID(), Role: model.RoleClient, Phone: "111"}
	users.put(client)

	svc := newService(users, newFakeReviewRepo(), &fakeUploader{})
	_, err := svc.UpdateProfile(context.Background(), client.ID.Hex(), model.ProfileUpdate{
		Name:        "New Name",
		Email:       "new@example.com",
		Description: "desc",
		Services:    "should be ignored for clients",
		Phone:       "",
	})
	require.NoError(t, err)

	assert.Equal(t, "New Name", users.lastUpdate["name"])
	assert.Equal(t, "new@example.com", users.lastUpdate["email"])
	assert.Equal(t, "desc", users.lastUpdate["description"])
	assert.NotContains(t, users.lastUpdate, "phone")
	assert.NotContains(t, users.lastUpdate, "services")
	assert.NotContains(t, users.lastUpdate, "password")
	assert.NotContains(t, users.lastUpdate, "role")
	assert.NotContains(t, users.lastUpdate, "location")
	assert.Contains(t, users.lastUpdate, "lastSeen")
}

func TestUpdateProfile_ProfessionalSetsServicesAndPhone(t *testing.T) {
	users := newFakeUserRepo()
	pro := professionalWith()
	users.put(pro)

	svc := newService(users, newFakeReviewRepo(), &fakeUploader{})
	_, err := svc.UpdateProfile(context.Background(), pro.ID.Hex(), model.ProfileUpdate{
		Name:     "Dana",
		Services: "wiring",
		Phone:    "555",
	})
	require.NoError(t, err)

	assert.Equal(t, "wiring", users.lastUpdate["services"])
	assert.Equal(t, "555", users.lastUpdate["phone"])
}

func TestUpdateProfile_UnknownRoleFails(t *testing.T) {
	users := newFakeUserRepo()
	odd := model.User{ID: primitive.NewObjectID(), Role: "Admin"}
	users.put(odd)

	svc := newService(users, newFakeReviewRepo(), &fakeUploader{})
	_, err := svc.UpdateProfile(context.Background(), odd.ID.Hex(), model.ProfileUpdate{Name: "x"})
	assert.ErrorIs(t, err, ErrUnsupportedRole)
	assert.Nil(t, users.lastUpdate)
}

func TestChangePassword(t *testing.T) {
	hashed, err := auth.HashPassword("old-secret")
	require.NoError(t, err)

	users := newFakeUserRepo()
	u := model.User{ID: primitive.NewObjectID(), Role: model.RoleClient, Password: hashed}
	users.put(u)

	svc := newService(users, newFakeReviewRepo(), &fakeUploader{})

	t.Run("rejects wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), u.ID.Hex(), model.PasswordChange{
			CurrentPassword: "guess",
			NewPassword:     "next-secret",
		})
		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("rejects empty new password", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), u.ID.Hex(), model.PasswordChange{
			CurrentPassword: "old-secret",
		})
		assert.ErrorIs(t, err, ErrEmptyPassword)
	})

	t.Run("stores a fresh hash", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), u.ID.Hex(), model.PasswordChange{
			CurrentPassword: "old-secret",
			NewPassword:     "next-secret",
		})
		require.NoError(t, err)

		stored, ok := users.lastUpdate["password"].(string)
		require.True(t, ok)
		assert.True(t, auth.CheckPassword(stored, "next-secret"))
		assert.NotEqual(t, "next-secret", stored)
	})
}

func TestDelete_IdempotentSuccess(t *testing.T) {
	users := newFakeUserRepo()
	users.deleted = 0 // nothing matched

	svc := newService(users, newFakeReviewRepo(), &fakeUploader{})
	assert.NoError(t, svc.Delete(context.Background(), primitive.NewObjectID().Hex()))

	users.deleted = 1
	assert.NoError(t, svc.Delete(context.Background(), primitive.NewObjectID().Hex()))
}

func TestStats_Counts(t *testing.T) {
	users := newFakeUserRepo()
	users.put(professionalWith())
	users.put(model.User{ID: primitive.NewObjectID(), Role: model.RoleClient})

	reviews := newFakeReviewRepo()
	reviews.put(starReview(5))

	svc := newService(users, reviews, &fakeUploader{})
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "healthy", stats.Status)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.Professionals)
	assert.Equal(t, int64(1), stats.Clients)
	assert.Equal(t, int64(1), stats.TotalReviews)
}
