package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rvanstaden/huisvind-backend/pkg/enums"
)

// Preferences holds per-user notification opt-ins, serialized as a single
// JSON column so new toggles do not need schema changes.
type Preferences struct {
	EmailNotifications bool `json:"emailNotifications"`
	PropertyAlerts     bool `json:"propertyAlerts"`
	Newsletter         bool `json:"newsletter"`
}

// DefaultPreferences returns the opt-ins applied at profile creation.
func DefaultPreferences() Preferences {
	return Preferences{
		EmailNotifications: true,
		PropertyAlerts:     true,
		Newsletter:         false,
	}
}

// Value implements driver.Valuer.
func (p Preferences) Value() (driver.Value, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

// Scan implements sql.Scanner.
func (p *Preferences) Scan(src any) error {
	switch value := src.(type) {
	case nil:
		*p = Preferences{}
		return nil
	case []byte:
		return json.Unmarshal(value, p)
	case string:
		return json.Unmarshal([]byte(value), p)
	default:
		return fmt.Errorf("unsupported preferences type %T", src)
	}
}

// UserProfile is the application-level account record keyed by identity UID.
// The identity provider owns credentials; this row owns role and capability
// inputs. Profiles are never hard-deleted, only deactivated.
type UserProfile struct {
	UID         uuid.UUID      `gorm:"column:uid;type:uuid;primaryKey"`
	Email       string         `gorm:"type:text;not null"`
	DisplayName string         `gorm:"column:display_name;not null"`
	FirstName   string         `gorm:"column:first_name;not null"`
	LastName    string         `gorm:"column:last_name;not null"`
	PhotoURL    *string        `gorm:"column:photo_url"`
	Phone       *string        `gorm:"column:phone"`
	Role        enums.UserRole `gorm:"column:role;type:text;not null;default:'user'"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true"`
	Preferences Preferences    `gorm:"column:preferences;type:jsonb"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
