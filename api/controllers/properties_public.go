package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rvanstaden/huisvind-backend/api/responses"
	"github.com/rvanstaden/huisvind-backend/api/validators"
	propertysvc "github.com/rvanstaden/huisvind-backend/internal/properties"
	"github.com/rvanstaden/huisvind-backend/pkg/enums"
	pkgerrors "github.com/rvanstaden/huisvind-backend/pkg/errors"
	"github.com/rvanstaden/huisvind-backend/pkg/logger"
	"github.com/rvanstaden/huisvind-backend/pkg/pagination"
)

// PublicListProperties serves the public listing feed. Without filter
// parameters it returns a cursor page; with them it returns the full
// filtered set.
func PublicListProperties(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
			return
		}

		criteria, hasFilters, err := filterCriteriaFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if hasFilters {
			items, err := svc.Filter(r.Context(), criteria)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, propertysvc.Page{Items: items})
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func filterCriteriaFromQuery(r *http.Request) (propertysvc.FilterCriteria, bool, error) {
	var criteria propertysvc.FilterCriteria
	has := false

	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		propertyType, err := enums.ParsePropertyType(raw)
		if err != nil {
			return criteria, false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid property type")
		}
		criteria.Type = &propertyType
		has = true
	}

	featured, err := validators.ParseQueryBool(r, "featured")
	if err != nil {
		return criteria, false, err
	}
	if featured != nil {
		criteria.Featured = featured
		has = true
	}

	minPrice, err := validators.ParseQueryDecimal(r, "min_price")
	if err != nil {
		return criteria, false, err
	}
	if minPrice != nil {
		criteria.MinPrice = minPrice
		has = true
	}

	maxPrice, err := validators.ParseQueryDecimal(r, "max_price")
	if err != nil {
		return criteria, false, err
	}
	if maxPrice != nil {
		criteria.MaxPrice = maxPrice
		has = true
	}

	if location := strings.TrimSpace(r.URL.Query().Get("location")); location != "" {
		criteria.LocationSubstring = location
		has = true
	}

	return criteria, has, nil
}

func PublicFeaturedProperties(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
			return
		}

		items, err := svc.ListFeatured(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, propertysvc.Page{Items: items})
	}
}

func PublicSearchProperties(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
			return
		}

		items, err := svc.Search(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, propertysvc.Page{Items: items})
	}
}

func PublicGetProperty(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
			return
		}

		listing, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if listing == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found"))
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

func PublicRecordView(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
			return
		}

		if err := svc.IncrementViews(r.Context(), chi.URLParam(r, "id")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "recorded"})
	}
}

func PublicRecordInquiry(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
			return
		}

		if err := svc.IncrementInquiries(r.Context(), chi.URLParam(r, "id")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "recorded"})
	}
}
