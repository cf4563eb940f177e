package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// -----------------------------------------------------------------
// Directory API Response Models
// -----------------------------------------------------------------

// LngLat is the flattened coordinate pair used in responses.
type LngLat struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// ProfessionalListing is one row of a nearby-professionals search.
// AvgRate is nil (JSON null) when the professional has no reviews.
// Contact and auth fields are never part of a listing.
type ProfessionalListing struct {
	ProfessionalID primitive.ObjectID `json:"professional_id"`
	Name           string             `json:"name"`
	Image          string             `json:"image"`
	AvgRate        *float64           `json:"avg_rate"`
	Location       LngLat             `json:"location"`
}

// ProfileSummary is the public profile of a single user: everything a
// visitor may see, with email/password/role stripped.
type ProfileSummary struct {
	ID          primitive.ObjectID `json:"_id"`
	Name        string             `json:"name"`
	AvgRate     *float64           `json:"avg_rate"`
	Image       string             `json:"image"`
	Description string             `json:"description"`
	Services    string             `json:"services"`
	LastSeen    time.Time          `json:"lastSeen"`
	Location    *LngLat            `json:"location,omitempty"`
	Phone       string             `json:"phone"`
}

// Reviewer is the nested identity of a review author.
type Reviewer struct {
	ID        primitive.ObjectID `json:"_id"`
	Name      string             `json:"name"`
	UserPhoto string             `json:"userPhoto"`
}

// ExpandedReview is a review with its author expanded in place. From is
// nil when the author document no longer exists.
type ExpandedReview struct {
	ID        primitive.ObjectID `json:"_id"`
	Images    []string           `json:"images"`
	Stars     int                `json:"stars"`
	Comment   string             `json:"comment"`
	CreatedAt time.Time          `json:"createdAt"`
	From      *Reviewer          `json:"fromUserId"`
}

// ProfileReviews is the review listing of a single profile.
type ProfileReviews struct {
	ID      primitive.ObjectID `json:"_id"`
	Name    string             `json:"name"`
	Reviews []ExpandedReview   `json:"reviews"`
}

// RawReview is a review with the author's full user document attached.
type RawReview struct {
	ID        primitive.ObjectID `json:"_id"`
	FromUser  *User              `json:"fromUserId"`
	Stars     int                `json:"stars"`
	Comment   string             `json:"comment"`
	Images    []string           `json:"images"`
	CreatedAt time.Time          `json:"createdAt"`
}

// RawProfile mirrors the stored user document with reviews expanded in
// place. It deliberately strips nothing; see the raw profile endpoint.
type RawProfile struct {
	User
	Reviews []RawReview `json:"reviews"`
}

// -----------------------------------------------------------------
// Directory API Request Models
// -----------------------------------------------------------------

// ProfileUpdate carries the update-eligible fields of a profile update.
// Password, role and location are never writable through this path.
type ProfileUpdate struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Description string `json:"description"`
	Services    string `json:"services"`
	Phone       string `json:"phone"`
}

// PasswordChange carries a deliberate password change request.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
