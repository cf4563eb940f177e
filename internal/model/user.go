package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles. Role decides which profile fields are update-eligible and
// whether the user is discoverable through the nearby search.
const (
	RoleClient       = "Client"
	RoleProfessional = "Professional"
)

// GeoPoint is a GeoJSON point stored on the user document. The
// coordinates pair is always [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

func (p *GeoPoint) Lng() float64 {
	if p == nil || len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[0]
}

func (p *GeoPoint) Lat() float64 {
	if p == nil || len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[1]
}

// User represents a user document in MongoDB. Password holds the bcrypt
// hash, never the plain text. Reviews holds references into the reviews
// collection; a user never carries the same review id twice.
type User struct {
	ID          primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Name        string               `json:"name" bson:"name"`
	Email       string               `json:"email" bson:"email"`
	Password    string               `json:"password" bson:"password"`
	Phone       string               `json:"phone" bson:"phone"`
	Role        string               `json:"role" bson:"role"`
	Description string               `json:"description" bson:"description"`
	Services    string               `json:"services" bson:"services"`
	UserPhoto   string               `json:"userPhoto" bson:"userPhoto"`
	Location    *GeoPoint            `json:"location,omitempty" bson:"location,omitempty"`
	LastSeen    time.Time            `json:"lastSeen" bson:"lastSeen"`
	Reviews     []primitive.ObjectID `json:"reviews" bson:"reviews"`
	CreatedAt   time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updatedAt"`
}
