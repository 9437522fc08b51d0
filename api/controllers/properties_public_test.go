package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	propertysvc "github.com/rvanstaden/huisvind-backend/internal/properties"
	"github.com/rvanstaden/huisvind-backend/pkg/db/models"
	"github.com/rvanstaden/huisvind-backend/pkg/enums"
	"github.com/rvanstaden/huisvind-backend/pkg/pagination"
)

type testPropertyService struct {
	listFn         func(ctx context.Context, params pagination.Params) (*propertysvc.Page, error)
	getFn          func(ctx context.Context, id string) (*propertysvc.Property, error)
	featuredFn     func(ctx context.Context) ([]propertysvc.Property, error)
	filterFn       func(ctx context.Context, criteria propertysvc.FilterCriteria) ([]propertysvc.Property, error)
	searchFn       func(ctx context.Context, query string) ([]propertysvc.Property, error)
	incViewsFn     func(ctx context.Context, id string) error
	incInquiriesFn func(ctx context.Context, id string) error
}

func (s *testPropertyService) List(ctx context.Context, params pagination.Params) (*propertysvc.Page, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params)
	}
	return &propertysvc.Page{}, nil
}

func (s *testPropertyService) GetByID(ctx context.Context, id string) (*propertysvc.Property, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return nil, nil
}

func (s *testPropertyService) ListFeatured(ctx context.Context) ([]propertysvc.Property, error) {
	if s.featuredFn != nil {
		return s.featuredFn(ctx)
	}
	return nil, nil
}

func (s *testPropertyService) Filter(ctx context.Context, criteria propertysvc.FilterCriteria) ([]propertysvc.Property, error) {
	if s.filterFn != nil {
		return s.filterFn(ctx, criteria)
	}
	return nil, nil
}

func (s *testPropertyService) Search(ctx context.Context, query string) ([]propertysvc.Property, error) {
	if s.searchFn != nil {
		return s.searchFn(ctx, query)
	}
	return nil, nil
}

func (s *testPropertyService) IncrementViews(ctx context.Context, id string) error {
	if s.incViewsFn != nil {
		return s.incViewsFn(ctx, id)
	}
	return nil
}

func (s *testPropertyService) IncrementInquiries(ctx context.Context, id string) error {
	if s.incInquiriesFn != nil {
		return s.incInquiriesFn(ctx, id)
	}
	return nil
}

func (s *testPropertyService) Create(ctx context.Context, actor *models.UserProfile, input propertysvc.CreateInput) (*propertysvc.Property, error) {
	return nil, nil
}

func (s *testPropertyService) Update(ctx context.Context, actor *models.UserProfile, id string, patch propertysvc.UpdateInput) (*propertysvc.Property, error) {
	return nil, nil
}

func (s *testPropertyService) Delete(ctx context.Context, actor *models.UserProfile, id string) error {
	return nil
}

func decimalFromString(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", value, err)
	}
	return d
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestPublicListUsesCursorPageWithoutFilters(t *testing.T) {
	var gotParams pagination.Params
	svc := &testPropertyService{
		listFn: func(ctx context.Context, params pagination.Params) (*propertysvc.Page, error) {
			gotParams = params
			return &propertysvc.Page{Items: []propertysvc.Property{{ID: "a"}}, NextCursor: "next"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/public/properties?limit=10", nil)
	resp := httptest.NewRecorder()
	PublicListProperties(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if gotParams.Limit != 10 {
		t.Fatalf("expected limit 10 got %d", gotParams.Limit)
	}
	var envelope struct {
		Data propertysvc.Page `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(envelope.Data.Items) != 1 || envelope.Data.NextCursor != "next" {
		t.Fatalf("unexpected page %+v", envelope.Data)
	}
}

func TestPublicListDefaultsLimit(t *testing.T) {
	var gotParams pagination.Params
	svc := &testPropertyService{
		listFn: func(ctx context.Context, params pagination.Params) (*propertysvc.Page, error) {
			gotParams = params
			return &propertysvc.Page{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/public/properties", nil)
	resp := httptest.NewRecorder()
	PublicListProperties(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if gotParams.Limit != pagination.DefaultLimit {
		t.Fatalf("expected default limit got %d", gotParams.Limit)
	}
}

func TestPublicListSwitchesToFilterPath(t *testing.T) {
	var gotCriteria propertysvc.FilterCriteria
	listCalled := false
	svc := &testPropertyService{
		listFn: func(ctx context.Context, params pagination.Params) (*propertysvc.Page, error) {
			listCalled = true
			return &propertysvc.Page{}, nil
		},
		filterFn: func(ctx context.Context, criteria propertysvc.FilterCriteria) ([]propertysvc.Property, error) {
			gotCriteria = criteria
			return []propertysvc.Property{{ID: "farm-1"}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/public/properties?type=farm&featured=true&min_price=100000&location=Karoo", nil)
	resp := httptest.NewRecorder()
	PublicListProperties(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if listCalled {
		t.Fatal("expected filter path, not cursor page")
	}
	if gotCriteria.Type == nil || *gotCriteria.Type != enums.PropertyTypeFarm {
		t.Fatalf("unexpected type criteria %+v", gotCriteria.Type)
	}
	if gotCriteria.Featured == nil || !*gotCriteria.Featured {
		t.Fatal("expected featured criteria")
	}
	if gotCriteria.MinPrice == nil || !gotCriteria.MinPrice.Equal(decimalFromString(t, "100000")) {
		t.Fatalf("unexpected min price %+v", gotCriteria.MinPrice)
	}
	if gotCriteria.LocationSubstring != "Karoo" {
		t.Fatalf("unexpected location %q", gotCriteria.LocationSubstring)
	}
}

func TestPublicListRejectsUnknownType(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/public/properties?type=castle", nil)
	resp := httptest.NewRecorder()
	PublicListProperties(&testPropertyService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp.Body.Bytes()); code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error code %q", code)
	}
}

func TestPublicGetPropertyFound(t *testing.T) {
	svc := &testPropertyService{
		getFn: func(ctx context.Context, id string) (*propertysvc.Property, error) {
			if id != "plaas-7" {
				t.Fatalf("unexpected id %q", id)
			}
			return &propertysvc.Property{ID: "plaas-7", Title: "Karoo plaas"}, nil
		},
	}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/public/properties/plaas-7", nil), "id", "plaas-7")
	resp := httptest.NewRecorder()
	PublicGetProperty(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestPublicGetPropertyMissing(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/public/properties/ghost", nil), "id", "ghost")
	resp := httptest.NewRecorder()
	PublicGetProperty(&testPropertyService{}, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp.Body.Bytes()); code != "NOT_FOUND" {
		t.Fatalf("unexpected error code %q", code)
	}
}

func TestPublicRecordViewAndInquiry(t *testing.T) {
	var viewed, inquired string
	svc := &testPropertyService{
		incViewsFn: func(ctx context.Context, id string) error {
			viewed = id
			return nil
		},
		incInquiriesFn: func(ctx context.Context, id string) error {
			inquired = id
			return nil
		},
	}

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/public/properties/plaas-7/views", nil), "id", "plaas-7")
	resp := httptest.NewRecorder()
	PublicRecordView(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if viewed != "plaas-7" {
		t.Fatalf("unexpected viewed id %q", viewed)
	}

	req = withURLParam(httptest.NewRequest(http.MethodPost, "/api/public/properties/plaas-7/inquiries", nil), "id", "plaas-7")
	resp = httptest.NewRecorder()
	PublicRecordInquiry(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if inquired != "plaas-7" {
		t.Fatalf("unexpected inquired id %q", inquired)
	}
}
