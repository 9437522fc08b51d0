package properties

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvanstaden/huisvind-backend/pkg/enums"
	"github.com/rvanstaden/huisvind-backend/pkg/types"
)

// Price is the canonical price shape: one numeric amount plus the string
// shown to buyers.
type Price struct {
	Amount  decimal.Decimal `json:"amount"`
	Display string          `json:"display"`
}

// Location is the canonical location shape. Display is always set; the
// structured fields survive only when the stored document carried them.
type Location struct {
	Display     string             `json:"display"`
	Address     string             `json:"address,omitempty"`
	City        string             `json:"city,omitempty"`
	Province    string             `json:"province,omitempty"`
	PostalCode  string             `json:"postal_code,omitempty"`
	Coordinates *types.Coordinates `json:"coordinates,omitempty"`
}

// Property is the uniform read model every caller sees, regardless of which
// historical document shape the listing was stored as.
type Property struct {
	ID          string             `json:"id"`
	OwnerID     string             `json:"owner_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Type        enums.PropertyType `json:"type"`
	Price       Price              `json:"price"`
	Location    Location           `json:"location"`
	Size        string             `json:"size"`
	Images      []string           `json:"images"`
	Amenities   []string           `json:"amenities"`
	Featured    bool               `json:"featured"`
	Views       int64              `json:"views"`
	Inquiries   int64              `json:"inquiries"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// PrimaryImage returns the first image URL, the listing's display image.
func (p *Property) PrimaryImage() string {
	if p == nil || len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// CreateInput carries the fields a new listing is built from.
type CreateInput struct {
	Title        string
	Description  string
	Type         string
	PriceAmount  decimal.Decimal
	PriceDisplay string
	Address      string
	City         string
	Province     string
	PostalCode   string
	Coordinates  *types.Coordinates
	LandSize     string
	TotalSize    string
	Images       []string
	Amenities    []string
	Featured     bool
}

// UpdateInput carries the mutable listing fields. Nil means leave unchanged.
type UpdateInput struct {
	Title        *string
	Description  *string
	Type         *string
	PriceAmount  *decimal.Decimal
	PriceDisplay *string
	Address      *string
	City         *string
	Province     *string
	PostalCode   *string
	Coordinates  *types.Coordinates
	LandSize     *string
	TotalSize    *string
	Images       *[]string
	Amenities    *[]string
	Featured     *bool
}

// FilterCriteria are conjunctive listing filters. Zero-value criteria match
// everything.
type FilterCriteria struct {
	Type              *enums.PropertyType
	Featured          *bool
	MinPrice          *decimal.Decimal
	MaxPrice          *decimal.Decimal
	LocationSubstring string
}

func (c FilterCriteria) isEmpty() bool {
	return c.Type == nil && c.Featured == nil && c.MinPrice == nil && c.MaxPrice == nil && c.LocationSubstring == ""
}

// Page is one cursor page of listings.
type Page struct {
	Items      []Property `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}
