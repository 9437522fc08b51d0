package profiles

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rvanstaden/huisvind-backend/pkg/db/models"
	"github.com/rvanstaden/huisvind-backend/pkg/enums"
)

// ProfileDTO is the transport shape of a user profile.
type ProfileDTO struct {
	UID         uuid.UUID          `json:"uid"`
	Email       string             `json:"email"`
	DisplayName string             `json:"display_name"`
	FirstName   string             `json:"first_name"`
	LastName    string             `json:"last_name"`
	PhotoURL    *string            `json:"photo_url,omitempty"`
	Phone       *string            `json:"phone,omitempty"`
	Role        enums.UserRole     `json:"role"`
	IsActive    bool               `json:"is_active"`
	Preferences models.Preferences `json:"preferences"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func FromModel(p *models.UserProfile) *ProfileDTO {
	if p == nil {
		return nil
	}
	return &ProfileDTO{
		UID:         p.UID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		PhotoURL:    p.PhotoURL,
		Phone:       p.Phone,
		Role:        p.Role,
		IsActive:    p.IsActive,
		Preferences: p.Preferences,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// IdentitySnapshot carries the identity-provider fields a new profile is
// built from.
type IdentitySnapshot struct {
	UID         uuid.UUID
	Email       string
	DisplayName string
	PhotoURL    *string
	Phone       *string
}

// ToModel builds a fresh profile with the default role, active flag, and
// preferences. The display name splits into first/last on the first space.
func (s IdentitySnapshot) ToModel() *models.UserProfile {
	first, last := splitDisplayName(s.DisplayName)
	return &models.UserProfile{
		UID:         s.UID,
		Email:       s.Email,
		DisplayName: s.DisplayName,
		FirstName:   first,
		LastName:    last,
		PhotoURL:    clonePtr(s.PhotoURL),
		Phone:       clonePtr(s.Phone),
		Role:        enums.UserRoleUser,
		IsActive:    true,
		Preferences: models.DefaultPreferences(),
	}
}

// UpdateProfileInput captures the self-service mutable profile fields.
// Nil means leave unchanged.
type UpdateProfileInput struct {
	DisplayName *string
	FirstName   *string
	LastName    *string
	PhotoURL    *string
	Phone       *string
	Preferences *models.Preferences
}

func splitDisplayName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	if idx := strings.Index(name, " "); idx >= 0 {
		return name[:idx], strings.TrimSpace(name[idx+1:])
	}
	return name, ""
}

func clonePtr(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
