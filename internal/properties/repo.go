package properties

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rvanstaden/huisvind-backend/pkg/db/models"
	"github.com/rvanstaden/huisvind-backend/pkg/pagination"
)

// StoredFilter is the subset of filter criteria the store can answer with
// its denormalized columns: equality and range only. Location substring and
// text search stay in the service.
type StoredFilter struct {
	Type     string
	Featured *bool
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// Repository exposes listing persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a listings repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert persists a new listing row.
func (r *Repository) Insert(ctx context.Context, record *models.PropertyRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByID loads a listing row by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PropertyRecord, error) {
	var record models.PropertyRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns one page of listings, newest first. The id breaks ties so the
// cursor is stable across rows created in the same instant.
func (r *Repository) List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.PropertyRecord, error) {
	query := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var records []models.PropertyRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListAll returns every listing row, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]models.PropertyRecord, error) {
	var records []models.PropertyRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListFeatured returns featured listings, newest first.
func (r *Repository) ListFeatured(ctx context.Context) ([]models.PropertyRecord, error) {
	var records []models.PropertyRecord
	err := r.db.WithContext(ctx).
		Where("featured = ?", true).
		Order("created_at DESC, id DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListFiltered applies the store-answerable criteria, newest first.
func (r *Repository) ListFiltered(ctx context.Context, filter StoredFilter) ([]models.PropertyRecord, error) {
	query := r.db.WithContext(ctx).Model(&models.PropertyRecord{})
	if filter.Type != "" {
		query = query.Where("property_type = ?", filter.Type)
	}
	if filter.Featured != nil {
		query = query.Where("featured = ?", *filter.Featured)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	var records []models.PropertyRecord
	if err := query.Order("created_at DESC, id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save persists the full listing row.
func (r *Repository) Save(ctx context.Context, record *models.PropertyRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// Delete removes the listing row and reports how many rows matched.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.PropertyRecord{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

// IncrementViews bumps the view counter atomically at the store.
func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PropertyRecord{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	return result.RowsAffected, result.Error
}

// IncrementInquiries bumps the inquiry counter atomically at the store.
func (r *Repository) IncrementInquiries(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PropertyRecord{}).
		Where("id = ?", id).
		UpdateColumn("inquiries", gorm.Expr("inquiries + 1"))
	return result.RowsAffected, result.Error
}

// TypeOf returns the denormalized property type for a listing id.
func (r *Repository) TypeOf(ctx context.Context, id uuid.UUID) (string, error) {
	var propertyType string
	err := r.db.WithContext(ctx).
		Model(&models.PropertyRecord{}).
		Where("id = ?", id).
		Pluck("property_type", &propertyType).Error
	return propertyType, err
}
