package controllers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/rvanstaden/huisvind-backend/api/middleware"
	"github.com/rvanstaden/huisvind-backend/api/responses"
	"github.com/rvanstaden/huisvind-backend/api/validators"
	mediasvc "github.com/rvanstaden/huisvind-backend/internal/media"
	propertysvc "github.com/rvanstaden/huisvind-backend/internal/properties"
	pkgerrors "github.com/rvanstaden/huisvind-backend/pkg/errors"
	"github.com/rvanstaden/huisvind-backend/pkg/logger"
	"github.com/rvanstaden/huisvind-backend/pkg/types"
)

const maxImageFormBytes = 12 * 1024 * 1024

type createPropertyRequest struct {
	Title        string             `json:"title" validate:"required"`
	Description  string             `json:"description,omitempty"`
	Type         string             `json:"type" validate:"required"`
	PriceAmount  decimal.Decimal    `json:"price_amount" validate:"required"`
	PriceDisplay string             `json:"price_display,omitempty"`
	Address      string             `json:"address,omitempty"`
	City         string             `json:"city,omitempty"`
	Province     string             `json:"province,omitempty"`
	PostalCode   string             `json:"postal_code,omitempty"`
	Coordinates  *types.Coordinates `json:"coordinates,omitempty"`
	LandSize     string             `json:"land_size,omitempty"`
	TotalSize    string             `json:"total_size,omitempty"`
	Images       []string           `json:"images,omitempty"`
	Amenities    []string           `json:"amenities,omitempty"`
	Featured     bool               `json:"featured,omitempty"`
}

func (req createPropertyRequest) toInput() propertysvc.CreateInput {
	return propertysvc.CreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.Type,
		PriceAmount:  req.PriceAmount,
		PriceDisplay: req.PriceDisplay,
		Address:      req.Address,
		City:         req.City,
		Province:     req.Province,
		PostalCode:   req.PostalCode,
		Coordinates:  req.Coordinates,
		LandSize:     req.LandSize,
		TotalSize:    req.TotalSize,
		Images:       req.Images,
		Amenities:    req.Amenities,
		Featured:     req.Featured,
	}
}

type updatePropertyRequest struct {
	Title        *string            `json:"title,omitempty"`
	Description  *string            `json:"description,omitempty"`
	Type         *string            `json:"type,omitempty"`
	PriceAmount  *decimal.Decimal   `json:"price_amount,omitempty"`
	PriceDisplay *string            `json:"price_display,omitempty"`
	Address      *string            `json:"address,omitempty"`
	City         *string            `json:"city,omitempty"`
	Province     *string            `json:"province,omitempty"`
	PostalCode   *string            `json:"postal_code,omitempty"`
	Coordinates  *types.Coordinates `json:"coordinates,omitempty"`
	LandSize     *string            `json:"land_size,omitempty"`
	TotalSize    *string            `json:"total_size,omitempty"`
	Images       *[]string          `json:"images,omitempty"`
	Amenities    *[]string          `json:"amenities,omitempty"`
	Featured     *bool              `json:"featured,omitempty"`
}

func (req updatePropertyRequest) toPatch() propertysvc.UpdateInput {
	return propertysvc.UpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.Type,
		PriceAmount:  req.PriceAmount,
		PriceDisplay: req.PriceDisplay,
		Address:      req.Address,
		City:         req.City,
		Province:     req.Province,
		PostalCode:   req.PostalCode,
		Coordinates:  req.Coordinates,
		LandSize:     req.LandSize,
		TotalSize:    req.TotalSize,
		Images:       req.Images,
		Amenities:    req.Amenities,
		Featured:     req.Featured,
	}
}

// VendorCreateProperty creates a listing owned by the authenticated agent.
func VendorCreateProperty(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
			return
		}

		var body createPropertyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, listing)
	}
}

func VendorUpdateProperty(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
			return
		}

		var body updatePropertyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Update(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), body.toPatch())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

func VendorDeleteProperty(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
			return
		}

		if err := svc.Delete(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// VendorUploadPropertyImage accepts a multipart form with a single "file"
// part and appends it to the listing gallery.
func VendorUploadPropertyImage(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		if err := r.ParseMultipartForm(maxImageFormBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file part is required"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read file part"))
			return
		}

		listing, err := svc.UploadListingImage(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), mediasvc.UploadInput{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, listing)
	}
}

type presignImageRequest struct {
	FileName    string `json:"file_name" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
}

func VendorPresignPropertyImage(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		var body presignImageRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out, err := svc.PresignListingImage(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), mediasvc.PresignInput{
			FileName:    body.FileName,
			ContentType: body.ContentType,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

type removeImageRequest struct {
	ImageURL string `json:"image_url" validate:"required"`
}

func VendorRemovePropertyImage(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		var body removeImageRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.RemoveListingImage(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), body.ImageURL)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}
