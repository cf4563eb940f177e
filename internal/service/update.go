package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/pro-around/server/internal/model"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrUnsupportedRole is returned when a profile update targets a user
// whose role is outside the known set.
var ErrUnsupportedRole = errors.New("unsupported user role")

// roleUpdate is the variant set behind the profile-update operation:
// exactly one concrete update shape exists per role. Password, role and
// location are absent from every variant and stay that way.
type roleUpdate interface {
	document(now time.Time) bson.M
}

// ClientUpdate is the field set a Client may change.
type ClientUpdate struct {
	Name        string
	Email       string
	Description string
	Phone       string
}

func (u ClientUpdate) document(now time.Time) bson.M {
	doc := bson.M{
		"name":        u.Name,
		"email":       u.Email,
		"description": u.Description,
		"lastSeen":    now,
	}
	// an empty phone means "leave it alone", not "clear it"
	if u.Phone != "" {
		doc["phone"] = u.Phone
	}
	return doc
}

// ProfessionalUpdate is the field set a Professional may change.
type ProfessionalUpdate struct {
	Name        string
	Email       string
	Description string
	Services    string
	Phone       string
}

func (u ProfessionalUpdate) document(now time.Time) bson.M {
	doc := bson.M{
		"name":        u.Name,
		"email":       u.Email,
		"description": u.Description,
		"services":    u.Services,
		"lastSeen":    now,
	}
	if u.Phone != "" {
		doc["phone"] = u.Phone
	}
	return doc
}

func newRoleUpdate(role string, in model.ProfileUpdate) (roleUpdate, error) {
	switch role {
	case model.RoleClient:
		return ClientUpdate{
			Name:        in.Name,
			Email:       in.Email,
			Description: in.Description,
			Phone:       in.Phone,
		}, nil
	case model.RoleProfessional:
		return ProfessionalUpdate{
			Name:        in.Name,
			Email:       in.Email,
			Description: in.Description,
			Services:    in.Services,
			Phone:       in.Phone,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedRole, role)
	}
}
