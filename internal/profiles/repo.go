package profiles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvanstaden/huisvind-backend/pkg/db/models"
	"github.com/rvanstaden/huisvind-backend/pkg/enums"
)

// Repository exposes profile persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a profiles repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new profile. Duplicate keys surface as the driver's
// unique-violation error.
func (r *Repository) Create(ctx context.Context, profile *models.UserProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// FindByUID loads a profile by its identity-provider key.
func (r *Repository) FindByUID(ctx context.Context, uid uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).First(&profile, "uid = ?", uid).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// Save persists the full profile row. GORM restamps updated_at.
func (r *Repository) Save(ctx context.Context, profile *models.UserProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// UpdateRole overwrites the profile's role.
func (r *Repository) UpdateRole(ctx context.Context, uid uuid.UUID, role enums.UserRole) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("uid = ?", uid).
		Update("role", role)
	return result.RowsAffected, result.Error
}

// SetActive flips the profile's active flag.
func (r *Repository) SetActive(ctx context.Context, uid uuid.UUID, active bool) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("uid = ?", uid).
		Update("is_active", active)
	return result.RowsAffected, result.Error
}

// ListByRole returns profiles with the given role, newest first.
func (r *Repository) ListByRole(ctx context.Context, role enums.UserRole) ([]models.UserProfile, error) {
	var out []models.UserProfile
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
