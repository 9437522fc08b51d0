package properties

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvanstaden/huisvind-backend/pkg/db/models"
	pkgerrors "github.com/rvanstaden/huisvind-backend/pkg/errors"
	"github.com/rvanstaden/huisvind-backend/pkg/logger"
	"github.com/rvanstaden/huisvind-backend/pkg/metrics"
	"github.com/rvanstaden/huisvind-backend/pkg/pagination"
)

type listingRepository interface {
	Insert(ctx context.Context, record *models.PropertyRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PropertyRecord, error)
	List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.PropertyRecord, error)
	ListAll(ctx context.Context) ([]models.PropertyRecord, error)
	ListFeatured(ctx context.Context) ([]models.PropertyRecord, error)
	ListFiltered(ctx context.Context, filter StoredFilter) ([]models.PropertyRecord, error)
	Save(ctx context.Context, record *models.PropertyRecord) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	IncrementViews(ctx context.Context, id uuid.UUID) (int64, error)
	IncrementInquiries(ctx context.Context, id uuid.UUID) (int64, error)
	TypeOf(ctx context.Context, id uuid.UUID) (string, error)
}

// Service exposes listing operations: the normalized read facade plus the
// ownership-checked write path.
type Service interface {
	List(ctx context.Context, params pagination.Params) (*Page, error)
	GetByID(ctx context.Context, id string) (*Property, error)
	ListFeatured(ctx context.Context) ([]Property, error)
	Filter(ctx context.Context, criteria FilterCriteria) ([]Property, error)
	Search(ctx context.Context, query string) ([]Property, error)
	IncrementViews(ctx context.Context, id string) error
	IncrementInquiries(ctx context.Context, id string) error
	Create(ctx context.Context, actor *models.UserProfile, input CreateInput) (*Property, error)
	Update(ctx context.Context, actor *models.UserProfile, id string, patch UpdateInput) (*Property, error)
	Delete(ctx context.Context, actor *models.UserProfile, id string) error
}

type service struct {
	repo    listingRepository
	logg    *logger.Logger
	metrics *metrics.ListingMetrics
}

// NewService builds a listing service. Metrics may be nil.
func NewService(repo listingRepository, logg *logger.Logger, listingMetrics *metrics.ListingMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("listing repository required")
	}
	return &service{repo: repo, logg: logg, metrics: listingMetrics}, nil
}

// List returns one cursor page of listings, newest first.
func (s *service) List(ctx context.Context, params pagination.Params) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	records, err := s.repo.List(ctx, limit+1, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list properties")
	}

	page := &Page{Items: []Property{}}
	if len(records) > limit {
		last := records[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		records = records[:limit]
	}
	page.Items = s.normalizeAll(ctx, records)
	return page, nil
}

// GetByID returns the normalized listing, or nil when absent.
func (s *service) GetByID(ctx context.Context, id string) (*Property, error) {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	record, err := s.repo.FindByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load property")
	}
	return s.fromRecord(record)
}

// ListFeatured returns every featured listing, newest first.
func (s *service) ListFeatured(ctx context.Context) ([]Property, error) {
	records, err := s.repo.ListFeatured(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list featured properties")
	}
	return s.normalizeAll(ctx, records), nil
}

// Filter applies the criteria conjunctively. Empty criteria return the same
// set as a full listing.
func (s *service) Filter(ctx context.Context, criteria FilterCriteria) ([]Property, error) {
	var records []models.PropertyRecord
	var err error
	if criteria.isEmpty() {
		records, err = s.repo.ListAll(ctx)
	} else {
		stored := StoredFilter{
			Featured: criteria.Featured,
			MinPrice: criteria.MinPrice,
			MaxPrice: criteria.MaxPrice,
		}
		if criteria.Type != nil {
			stored.Type = criteria.Type.String()
		}
		records, err = s.repo.ListFiltered(ctx, stored)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "filter properties")
	}

	items := s.normalizeAll(ctx, records)
	if criteria.LocationSubstring == "" {
		return items, nil
	}

	// The store cannot substring-match the normalized display location.
	needle := strings.ToLower(criteria.LocationSubstring)
	matched := make([]Property, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Location.Display), needle) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// Search matches the query case-insensitively across title, location, and
// description. An empty query returns nothing.
func (s *service) Search(ctx context.Context, query string) ([]Property, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return []Property{}, nil
	}

	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search properties")
	}

	matched := []Property{}
	for _, item := range s.normalizeAll(ctx, records) {
		if matchesQuery(item, needle) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// matchesQuery checks each field on its own so a query cannot straddle the
// boundary between, say, a title and the location that follows it.
func matchesQuery(item Property, needle string) bool {
	for _, field := range []string{item.Title, item.Location.Display, item.Description} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// IncrementViews bumps the listing's view counter. Anonymous traffic calls
// this; there is no ownership check.
func (s *service) IncrementViews(ctx context.Context, id string) error {
	return s.increment(ctx, id, "views", s.repo.IncrementViews, func(propertyType string) {
		s.metrics.IncView(propertyType)
	})
}

// IncrementInquiries bumps the listing's inquiry counter.
func (s *service) IncrementInquiries(ctx context.Context, id string) error {
	return s.increment(ctx, id, "inquiries", s.repo.IncrementInquiries, func(propertyType string) {
		s.metrics.IncInquiry(propertyType)
	})
}

func (s *service) increment(
	ctx context.Context,
	id string,
	counter string,
	bump func(context.Context, uuid.UUID) (int64, error),
	observe func(string),
) error {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
	}

	affected, err := bump(ctx, recordID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment "+counter)
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
	}

	if propertyType, typeErr := s.repo.TypeOf(ctx, recordID); typeErr == nil {
		observe(propertyType)
	}
	return nil
}

// normalizeAll converts rows into the canonical shape, skipping rows whose
// document fails normalization so one bad record cannot break a listing page.
func (s *service) normalizeAll(ctx context.Context, records []models.PropertyRecord) []Property {
	items := make([]Property, 0, len(records))
	for i := range records {
		item, err := s.fromRecord(&records[i])
		if err != nil {
			if s.logg != nil {
				s.logg.Warn(s.logg.WithPropertyID(ctx, records[i].ID.String()), "skipping malformed listing document")
			}
			continue
		}
		items = append(items, *item)
	}
	return items
}

// fromRecord normalizes the stored document and overlays the columns the
// store owns: identity, counters, and timestamps.
func (s *service) fromRecord(record *models.PropertyRecord) (*Property, error) {
	property, err := Normalize(record.Doc)
	if err != nil {
		return nil, err
	}
	property.ID = record.ID.String()
	property.OwnerID = record.OwnerID.String()
	property.Featured = record.Featured
	property.Views = record.Views
	property.Inquiries = record.Inquiries
	property.CreatedAt = record.CreatedAt
	property.UpdatedAt = record.UpdatedAt
	return property, nil
}
