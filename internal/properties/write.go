package properties

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rvanstaden/huisvind-backend/internal/access"
	"github.com/rvanstaden/huisvind-backend/pkg/db/models"
	"github.com/rvanstaden/huisvind-backend/pkg/enums"
	pkgerrors "github.com/rvanstaden/huisvind-backend/pkg/errors"
	"github.com/rvanstaden/huisvind-backend/pkg/types"
)

// document is the canonical stored listing shape. Legacy rows carry older
// shapes; Normalize accepts both, and every write rewrites the row into this
// form.
type document struct {
	ID          string      `json:"id"`
	OwnerID     string      `json:"owner_id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Type        string      `json:"type,omitempty"`
	Price       Price       `json:"price"`
	Location    Location    `json:"location"`
	Size        *sizeObject `json:"size,omitempty"`
	Images      []string    `json:"images"`
	Amenities   []string    `json:"amenities"`
	Featured    bool        `json:"featured"`
}

// Create stores a new listing owned by the actor. Requires an authenticated
// actor with the listing capability.
func (s *service) Create(ctx context.Context, actor *models.UserProfile, input CreateInput) (*Property, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to create a listing")
	}
	if !access.CanListProperties(actor) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "listing properties requires an active agent or admin profile")
	}

	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	propertyType, err := enums.ParsePropertyType(input.Type)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid property type")
	}
	if input.PriceAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	id := uuid.New()
	doc := document{
		ID:      id.String(),
		OwnerID: actor.UID.String(),
		Title:   strings.TrimSpace(input.Title),
		Description: input.Description,
		Type:        propertyType.String(),
		Price:       buildPrice(input.PriceAmount, input.PriceDisplay),
		Location: buildLocation(
			input.Address, input.City, input.Province, input.PostalCode, input.Coordinates,
		),
		Size:      buildSize(input.LandSize, input.TotalSize),
		Images:    emptyIfNil(input.Images),
		Amenities: emptyIfNil(input.Amenities),
		Featured:  input.Featured,
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode listing document")
	}

	record := &models.PropertyRecord{
		ID:           id,
		OwnerID:      actor.UID,
		Doc:          raw,
		PropertyType: propertyType.String(),
		Featured:     input.Featured,
		Price:        input.PriceAmount,
	}
	if err := s.repo.Insert(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create property")
	}
	return s.fromRecord(record)
}

// Update merges the patch into the listing. Only the owner or an active
// admin may write; anyone else gets Forbidden and the record stays unchanged.
func (s *service) Update(ctx context.Context, actor *models.UserProfile, id string, patch UpdateInput) (*Property, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to update a listing")
	}

	record, err := s.loadForWrite(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanManageProperty(actor, record.OwnerID.String()) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner or an admin may update this listing")
	}

	current, err := Normalize(record.Doc)
	if err != nil {
		return nil, err
	}

	doc := documentFrom(record, current)
	if err := applyPatch(&doc, patch); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode listing document")
	}

	record.Doc = raw
	record.PropertyType = doc.Type
	record.Featured = doc.Featured
	record.Price = doc.Price.Amount
	if err := s.repo.Save(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update property")
	}
	return s.fromRecord(record)
}

// Delete removes the listing. Same ownership rule as Update.
func (s *service) Delete(ctx context.Context, actor *models.UserProfile, id string) error {
	if actor == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to delete a listing")
	}

	record, err := s.loadForWrite(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanManageProperty(actor, record.OwnerID.String()) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner or an admin may delete this listing")
	}

	affected, err := s.repo.Delete(ctx, record.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete property")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
	}
	return nil
}

func (s *service) loadForWrite(ctx context.Context, id string) (*models.PropertyRecord, error) {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
	}
	record, err := s.repo.FindByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load property")
	}
	return record, nil
}

// documentFrom rebuilds the canonical document for a row whose stored shape
// may predate the current one.
func documentFrom(record *models.PropertyRecord, current *Property) document {
	doc := document{
		ID:          record.ID.String(),
		OwnerID:     record.OwnerID.String(),
		Title:       current.Title,
		Description: current.Description,
		Type:        current.Type.String(),
		Price:       current.Price,
		Location:    current.Location,
		Images:      emptyIfNil(current.Images),
		Amenities:   emptyIfNil(current.Amenities),
		Featured:    current.Featured,
		Size:        sizeFrom(record.Doc),
	}
	return doc
}

// sizeFrom keeps the stored size fields exactly as they were written, so a
// rewrite never moves a value between land_size and total_size. A legacy flat
// string carries no field label and canonicalizes under total_size.
func sizeFrom(doc json.RawMessage) *sizeObject {
	var raw struct {
		Size json.RawMessage `json:"size"`
	}
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil
	}
	if len(raw.Size) == 0 || string(raw.Size) == "null" {
		return nil
	}

	var asString string
	if err := json.Unmarshal(raw.Size, &asString); err == nil {
		if asString == "" {
			return nil
		}
		return &sizeObject{TotalSize: asString}
	}

	var asObject sizeObject
	if err := json.Unmarshal(raw.Size, &asObject); err != nil {
		return nil
	}
	if asObject.LandSize == "" && asObject.TotalSize == "" {
		return nil
	}
	size := asObject
	return &size
}

func applyPatch(doc *document, patch UpdateInput) error {
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
		}
		doc.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		doc.Description = *patch.Description
	}
	if patch.Type != nil {
		propertyType, err := enums.ParsePropertyType(*patch.Type)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid property type")
		}
		doc.Type = propertyType.String()
	}
	if patch.PriceAmount != nil {
		if patch.PriceAmount.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		display := ""
		if patch.PriceDisplay != nil {
			display = *patch.PriceDisplay
		}
		doc.Price = buildPrice(*patch.PriceAmount, display)
	} else if patch.PriceDisplay != nil {
		doc.Price.Display = *patch.PriceDisplay
	}

	if patch.Address != nil {
		doc.Location.Address = *patch.Address
	}
	if patch.City != nil {
		doc.Location.City = *patch.City
	}
	if patch.Province != nil {
		doc.Location.Province = *patch.Province
	}
	if patch.PostalCode != nil {
		doc.Location.PostalCode = *patch.PostalCode
	}
	if patch.Coordinates != nil {
		coords := *patch.Coordinates
		doc.Location.Coordinates = &coords
	}
	if patch.Address != nil || patch.City != nil || patch.Province != nil {
		doc.Location.Display = locationDisplay(doc.Location.City, doc.Location.Province, doc.Location.Address)
	}

	if patch.LandSize != nil || patch.TotalSize != nil {
		size := &sizeObject{}
		if doc.Size != nil {
			*size = *doc.Size
		}
		if patch.LandSize != nil {
			size.LandSize = *patch.LandSize
		}
		if patch.TotalSize != nil {
			size.TotalSize = *patch.TotalSize
		}
		doc.Size = size
	}

	if patch.Images != nil {
		doc.Images = emptyIfNil(*patch.Images)
	}
	if patch.Amenities != nil {
		doc.Amenities = emptyIfNil(*patch.Amenities)
	}
	if patch.Featured != nil {
		doc.Featured = *patch.Featured
	}
	return nil
}

func buildPrice(amount decimal.Decimal, display string) Price {
	if display == "" {
		display = FormatZAR(amount)
	}
	return Price{Amount: amount, Display: display}
}

func buildLocation(address, city, province, postalCode string, coords *types.Coordinates) Location {
	location := Location{
		Address:    address,
		City:       city,
		Province:   province,
		PostalCode: postalCode,
	}
	if coords != nil {
		c := *coords
		location.Coordinates = &c
	}
	location.Display = locationDisplay(city, province, address)
	return location
}

func buildSize(landSize, totalSize string) *sizeObject {
	if landSize == "" && totalSize == "" {
		return nil
	}
	return &sizeObject{LandSize: landSize, TotalSize: totalSize}
}
