package enums

import (
	"fmt"
	"strings"
)

// PropertyType classifies a listing. Stored documents carry the type in
// inconsistent casing, so parsing is case-insensitive.
type PropertyType string

const (
	PropertyTypeFarm         PropertyType = "Farm"
	PropertyTypePlot         PropertyType = "Plot"
	PropertyTypeHouse        PropertyType = "House"
	PropertyTypeSmallholding PropertyType = "Smallholding"
)

var validPropertyTypes = []PropertyType{
	PropertyTypeFarm,
	PropertyTypePlot,
	PropertyTypeHouse,
	PropertyTypeSmallholding,
}

// String implements fmt.Stringer.
func (p PropertyType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PropertyType.
func (p PropertyType) IsValid() bool {
	for _, candidate := range validPropertyTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePropertyType canonicalizes raw input into a PropertyType.
func ParsePropertyType(value string) (PropertyType, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validPropertyTypes {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid property type %q", value)
}
