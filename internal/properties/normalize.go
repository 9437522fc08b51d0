package properties

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rvanstaden/huisvind-backend/pkg/enums"
	pkgerrors "github.com/rvanstaden/huisvind-backend/pkg/errors"
	"github.com/rvanstaden/huisvind-backend/pkg/types"
)

// rawDocument mirrors the union of every listing shape that has ever been
// stored. Price, location, and size are deferred because they arrive either
// as flat strings or as structured objects.
type rawDocument struct {
	ID          string             `json:"id"`
	OwnerID     string             `json:"owner_id"`
	AgentID     string             `json:"agent_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Type        string             `json:"type"`
	Price       json.RawMessage    `json:"price"`
	Location    json.RawMessage    `json:"location"`
	Coordinates *types.Coordinates `json:"coordinates"`
	Size        json.RawMessage    `json:"size"`
	Images      []string           `json:"images"`
	Amenities   []string           `json:"amenities"`
	Featured    bool               `json:"featured"`
}

type priceObject struct {
	Amount    json.RawMessage `json:"amount"`
	Display   string          `json:"display"`
	Formatted string          `json:"formatted"`
}

type locationObject struct {
	Display     string             `json:"display"`
	Address     string             `json:"address"`
	City        string             `json:"city"`
	Province    string             `json:"province"`
	PostalCode  string             `json:"postal_code"`
	Coordinates *types.Coordinates `json:"coordinates"`
}

type sizeObject struct {
	LandSize  string `json:"land_size,omitempty"`
	TotalSize string `json:"total_size,omitempty"`
}

// Normalize converts a stored listing document into the canonical Property
// shape. It is pure and total over optional fields: anything missing maps to
// a zero value. Only a missing id or title is malformed.
func Normalize(doc json.RawMessage) (*Property, error) {
	var raw rawDocument
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMalformed, err, "listing document is not valid JSON")
	}
	if strings.TrimSpace(raw.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeMalformed, "listing document missing id")
	}
	if strings.TrimSpace(raw.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeMalformed, "listing document missing title")
	}

	ownerID := raw.OwnerID
	if ownerID == "" {
		ownerID = raw.AgentID
	}

	location := normalizeLocation(raw.Location)
	if location.Coordinates == nil && raw.Coordinates != nil {
		coords := *raw.Coordinates
		location.Coordinates = &coords
	}

	property := &Property{
		ID:          raw.ID,
		OwnerID:     ownerID,
		Title:       raw.Title,
		Description: raw.Description,
		Type:        normalizeType(raw.Type),
		Price:       normalizePrice(raw.Price),
		Location:    location,
		Size:        normalizeSize(raw.Size),
		Images:      emptyIfNil(raw.Images),
		Amenities:   emptyIfNil(raw.Amenities),
		Featured:    raw.Featured,
	}
	return property, nil
}

// normalizeType canonicalizes the casing of known types and passes unknown
// historical values through trimmed.
func normalizeType(value string) enums.PropertyType {
	if parsed, err := enums.ParsePropertyType(value); err == nil {
		return parsed
	}
	return enums.PropertyType(strings.TrimSpace(value))
}

// normalizePrice accepts "R2,450,000", a bare number, or an
// {amount, display} object.
func normalizePrice(raw json.RawMessage) Price {
	if len(raw) == 0 || string(raw) == "null" {
		return Price{Amount: decimal.Zero, Display: ""}
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		amount := parseAmountFromString(asString)
		return Price{Amount: amount, Display: asString}
	}

	var asObject priceObject
	if err := json.Unmarshal(raw, &asObject); err == nil && len(asObject.Amount) > 0 {
		amount := parseAmount(asObject.Amount)
		display := asObject.Display
		if display == "" {
			display = asObject.Formatted
		}
		if display == "" {
			display = FormatZAR(amount)
		}
		return Price{Amount: amount, Display: display}
	}

	amount := parseAmount(raw)
	return Price{Amount: amount, Display: FormatZAR(amount)}
}

// parseAmount handles a JSON number or a quoted numeric/formatted string.
func parseAmount(raw json.RawMessage) decimal.Decimal {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return parseAmountFromString(asString)
	}
	if amount, err := decimal.NewFromString(strings.TrimSpace(string(raw))); err == nil {
		return amount
	}
	return decimal.Zero
}

// parseAmountFromString strips every non-digit character, so "R2,450,000"
// parses as 2450000. Lossy for fractional inputs; the write path stores a
// numeric amount so new records never take this path.
func parseAmountFromString(value string) decimal.Decimal {
	if amount, err := decimal.NewFromString(strings.TrimSpace(value)); err == nil {
		return amount
	}
	var digits strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(digits.String())
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// FormatZAR renders an amount as a rand display string, "R2,450,000".
func FormatZAR(amount decimal.Decimal) string {
	whole := amount.Truncate(0).String()
	negative := strings.HasPrefix(whole, "-")
	whole = strings.TrimPrefix(whole, "-")

	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}

	out := "R" + grouped.String()
	if negative {
		out = "-" + out
	}
	return out
}

// normalizeLocation accepts a flat display string or a structured object.
func normalizeLocation(raw json.RawMessage) Location {
	if len(raw) == 0 || string(raw) == "null" {
		return Location{}
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return Location{Display: asString}
	}

	var asObject locationObject
	if err := json.Unmarshal(raw, &asObject); err != nil {
		return Location{}
	}

	location := Location{
		Display:     asObject.Display,
		Address:     asObject.Address,
		City:        asObject.City,
		Province:    asObject.Province,
		PostalCode:  asObject.PostalCode,
		Coordinates: asObject.Coordinates,
	}
	if location.Display == "" {
		location.Display = locationDisplay(asObject.City, asObject.Province, asObject.Address)
	}
	return location
}

func locationDisplay(city, province, address string) string {
	switch {
	case city != "" && province != "":
		return city + ", " + province
	case city != "":
		return city
	case province != "":
		return province
	default:
		return address
	}
}

// normalizeSize accepts a flat string or a {land_size, total_size} object,
// preferring total_size.
func normalizeSize(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}

	var asObject sizeObject
	if err := json.Unmarshal(raw, &asObject); err != nil {
		return ""
	}
	if asObject.TotalSize != "" {
		return asObject.TotalSize
	}
	return asObject.LandSize
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
