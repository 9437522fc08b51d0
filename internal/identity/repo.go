package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvanstaden/huisvind-backend/pkg/db/models"
)

// Repository exposes identity persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an identity repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new identity and returns the persisted model.
func (r *Repository) Create(ctx context.Context, identity *models.Identity) error {
	return r.db.WithContext(ctx).Create(identity).Error
}

// FindByEmail retrieves the identity matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	var identity models.Identity
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&identity).Error; err != nil {
		return nil, err
	}
	return &identity, nil
}

// FindByUID loads an identity by its key.
func (r *Repository) FindByUID(ctx context.Context, uid uuid.UUID) (*models.Identity, error) {
	var identity models.Identity
	if err := r.db.WithContext(ctx).First(&identity, "uid = ?", uid).Error; err != nil {
		return nil, err
	}
	return &identity, nil
}

// UpdateLastLogin refreshes the identity's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, uid uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Identity{}).
		Where("uid = ?", uid).
		UpdateColumn("last_login_at", at).Error
}
