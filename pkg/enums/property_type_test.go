package enums

import "testing"

func TestParsePropertyTypeCanonicalizesCase(t *testing.T) {
	tests := map[string]PropertyType{
		"farm":          PropertyTypeFarm,
		"FARM":          PropertyTypeFarm,
		" Smallholding": PropertyTypeSmallholding,
		"house":         PropertyTypeHouse,
		"Plot":          PropertyTypePlot,
	}
	for raw, want := range tests {
		got, err := ParsePropertyType(raw)
		if err != nil {
			t.Fatalf("ParsePropertyType(%q) returned error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParsePropertyType(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestParsePropertyTypeRejectsUnknown(t *testing.T) {
	if _, err := ParsePropertyType("castle"); err == nil {
		t.Fatal("expected error for unknown property type")
	}
}

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole("agent")
	if err != nil || role != UserRoleAgent {
		t.Fatalf("ParseUserRole(agent) = %v, %v", role, err)
	}
	if _, err := ParseUserRole("Agent"); err == nil {
		t.Fatal("user roles are stored lowercase; mixed case should not parse")
	}
	if UserRole("ops").IsValid() {
		t.Fatal("unknown role should not be valid")
	}
}
