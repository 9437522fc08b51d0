package properties

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/rvanstaden/huisvind-backend/pkg/errors"
)

func TestNormalizeLegacyStringPrice(t *testing.T) {
	doc := []byte(`{"id":"p1","title":"Karoo farm","price":"R2,450,000"}`)

	property, err := Normalize(doc)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !property.Price.Amount.Equal(decimal.NewFromInt(2450000)) {
		t.Fatalf("expected amount 2450000, got %s", property.Price.Amount)
	}
	if property.Price.Display != "R2,450,000" {
		t.Fatalf("display must keep the stored string, got %q", property.Price.Display)
	}
}

func TestNormalizePriceObject(t *testing.T) {
	doc := []byte(`{"id":"p1","title":"Plot","price":{"amount":980000,"display":"R980,000"}}`)

	property, err := Normalize(doc)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !property.Price.Amount.Equal(decimal.NewFromInt(980000)) {
		t.Fatalf("expected amount 980000, got %s", property.Price.Amount)
	}
	if property.Price.Display != "R980,000" {
		t.Fatalf("unexpected display %q", property.Price.Display)
	}
}

func TestNormalizeBareNumericPrice(t *testing.T) {
	doc := []byte(`{"id":"p1","title":"House","price":1250000}`)

	property, err := Normalize(doc)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !property.Price.Amount.Equal(decimal.NewFromInt(1250000)) {
		t.Fatalf("expected amount 1250000, got %s", property.Price.Amount)
	}
	if property.Price.Display != "R1,250,000" {
		t.Fatalf("expected generated display, got %q", property.Price.Display)
	}
}

func TestNormalizeLocationString(t *testing.T) {
	doc := []byte(`{"id":"p1","title":"House","location":"Ceres, Western Cape"}`)

	property, err := Normalize(doc)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if property.Location.Display != "Ceres, Western Cape" {
		t.Fatalf("unexpected display %q", property.Location.Display)
	}
}

func TestNormalizeStructuredLocation(t *testing.T) {
	doc := []byte(`{
		"id":"p1","title":"House",
		"location":{
			"address":"12 Kerk Straat","city":"Ceres","province":"Western Cape",
			"postal_code":"6835","coordinates":{"lat":-33.37,"lng":19.31}
		}
	}`)

	property, err := Normalize(doc)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if property.Location.Display != "Ceres, Western Cape" {
		t.Fatalf("expected \"city, province\" display, got %q", property.Location.Display)
	}
	if property.Location.Coordinates == nil || property.Location.Coordinates.Lat != -33.37 {
		t.Fatalf("coordinates must be retained, got %+v", property.Location.Coordinates)
	}
	if property.Location.PostalCode != "6835" {
		t.Fatalf("postal code must be retained, got %q", property.Location.PostalCode)
	}
}

func TestNormalizeLocationFallbacks(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{name: "city only", doc: `{"id":"p","title":"t","location":{"city":"Ceres"}}`, want: "Ceres"},
		{name: "province only", doc: `{"id":"p","title":"t","location":{"province":"Gauteng"}}`, want: "Gauteng"},
		{name: "address only", doc: `{"id":"p","title":"t","location":{"address":"Plot 7"}}`, want: "Plot 7"},
		{name: "missing", doc: `{"id":"p","title":"t"}`, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			property, err := Normalize([]byte(tc.doc))
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			if property.Location.Display != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, property.Location.Display)
			}
		})
	}
}

func TestNormalizeSize(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{name: "flat string", doc: `{"id":"p","title":"t","size":"120 ha"}`, want: "120 ha"},
		{name: "prefers total", doc: `{"id":"p","title":"t","size":{"land_size":"100 ha","total_size":"120 ha"}}`, want: "120 ha"},
		{name: "falls back to land", doc: `{"id":"p","title":"t","size":{"land_size":"100 ha"}}`, want: "100 ha"},
		{name: "missing", doc: `{"id":"p","title":"t"}`, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			property, err := Normalize([]byte(tc.doc))
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			if property.Size != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, property.Size)
			}
		})
	}
}

func TestNormalizeTypeCanonicalizesCase(t *testing.T) {
	property, err := Normalize([]byte(`{"id":"p","title":"t","type":"smallHOLDING"}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if property.Type.String() != "Smallholding" {
		t.Fatalf("expected canonical casing, got %q", property.Type)
	}

	property, err = Normalize([]byte(`{"id":"p","title":"t","type":" Vineyard "}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if property.Type.String() != "Vineyard" {
		t.Fatalf("unknown historical type passes through trimmed, got %q", property.Type)
	}
}

func TestNormalizeOptionalDefaults(t *testing.T) {
	property, err := Normalize([]byte(`{"id":"p","title":"t"}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if property.Description != "" || property.Size != "" {
		t.Fatal("missing optional strings default to empty")
	}
	if property.Images == nil || len(property.Images) != 0 {
		t.Fatalf("images default to an empty sequence, got %#v", property.Images)
	}
	if property.Amenities == nil || len(property.Amenities) != 0 {
		t.Fatalf("amenities default to an empty sequence, got %#v", property.Amenities)
	}
	if !property.Price.Amount.IsZero() {
		t.Fatalf("missing price defaults to zero, got %s", property.Price.Amount)
	}
	if property.Featured {
		t.Fatal("featured defaults to false")
	}
}

func TestNormalizeMissingRequiredFields(t *testing.T) {
	_, err := Normalize([]byte(`{"title":"no id"}`))
	if !pkgerrors.IsCode(err, pkgerrors.CodeMalformed) {
		t.Fatalf("missing id must be malformed, got %v", err)
	}

	_, err = Normalize([]byte(`{"id":"p1"}`))
	if !pkgerrors.IsCode(err, pkgerrors.CodeMalformed) {
		t.Fatalf("missing title must be malformed, got %v", err)
	}

	_, err = Normalize([]byte(`not json`))
	if !pkgerrors.IsCode(err, pkgerrors.CodeMalformed) {
		t.Fatalf("invalid JSON must be malformed, got %v", err)
	}
}

func TestNormalizeOwnerFallsBackToAgentID(t *testing.T) {
	property, err := Normalize([]byte(`{"id":"p","title":"t","agent_id":"agent-7"}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if property.OwnerID != "agent-7" {
		t.Fatalf("expected agent_id fallback, got %q", property.OwnerID)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	legacy := []byte(`{
		"id":"p1","title":"Karoo farm","description":"Sheep farm with boreholes",
		"type":"farm","price":"R2,450,000",
		"location":{"city":"Beaufort West","province":"Western Cape","coordinates":{"lat":-32.35,"lng":22.58}},
		"size":{"land_size":"800 ha","total_size":"850 ha"},
		"images":["https://img/1.jpg"],"amenities":["borehole"],"featured":true
	}`)

	first, err := Normalize(legacy)
	if err != nil {
		t.Fatalf("first normalize: %v", err)
	}

	canonical, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal canonical: %v", err)
	}
	second, err := Normalize(canonical)
	if err != nil {
		t.Fatalf("second normalize: %v", err)
	}

	// Counters and timestamps are owned by the store columns, not the document.
	second.Views, second.Inquiries = first.Views, first.Inquiries
	second.CreatedAt, second.UpdatedAt = first.CreatedAt, first.UpdatedAt
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalize is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestFormatZAR(t *testing.T) {
	cases := []struct {
		amount int64
		want   string
	}{
		{amount: 0, want: "R0"},
		{amount: 950, want: "R950"},
		{amount: 2450000, want: "R2,450,000"},
		{amount: 12500, want: "R12,500"},
	}
	for _, tc := range cases {
		if got := FormatZAR(decimal.NewFromInt(tc.amount)); got != tc.want {
			t.Fatalf("FormatZAR(%d) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}
