package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropertyRecord is the stored listing row. Doc carries the listing document
// as persisted, including historical shapes; the sibling columns are denormalized
// from the document on write and exist only to serve equality, range, and
// ordering queries. Readers must go through the normalization facade rather
// than trusting Doc's shape.
type PropertyRecord struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID      uuid.UUID       `gorm:"column:owner_id;type:uuid;not null"`
	Doc          json.RawMessage `gorm:"column:doc;type:jsonb;not null"`
	PropertyType string          `gorm:"column:property_type;not null;default:''"`
	Featured     bool            `gorm:"column:featured;not null;default:false"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(14,2);not null;default:0"`
	Views        int64           `gorm:"column:views;not null;default:0"`
	Inquiries    int64           `gorm:"column:inquiries;not null;default:0"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (PropertyRecord) TableName() string {
	return "properties"
}
