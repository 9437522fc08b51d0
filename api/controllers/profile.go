package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/rvanstaden/huisvind-backend/api/middleware"
	"github.com/rvanstaden/huisvind-backend/api/responses"
	"github.com/rvanstaden/huisvind-backend/api/validators"
	profilesvc "github.com/rvanstaden/huisvind-backend/internal/profiles"
	"github.com/rvanstaden/huisvind-backend/pkg/db/models"
	pkgerrors "github.com/rvanstaden/huisvind-backend/pkg/errors"
	"github.com/rvanstaden/huisvind-backend/pkg/logger"
)

func GetProfile(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		uid := middleware.UserIDFromContext(r.Context())
		if uid == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		profile, err := svc.Get(r.Context(), uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if profile == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found"))
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

type updateProfileRequest struct {
	DisplayName *string             `json:"display_name,omitempty"`
	FirstName   *string             `json:"first_name,omitempty"`
	LastName    *string             `json:"last_name,omitempty"`
	PhotoURL    *string             `json:"photo_url,omitempty"`
	Phone       *string             `json:"phone,omitempty"`
	Preferences *models.Preferences `json:"preferences,omitempty"`
}

func UpdateProfile(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		uid := middleware.UserIDFromContext(r.Context())
		if uid == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var body updateProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Update(r.Context(), uid, profilesvc.UpdateProfileInput{
			DisplayName: body.DisplayName,
			FirstName:   body.FirstName,
			LastName:    body.LastName,
			PhotoURL:    body.PhotoURL,
			Phone:       body.Phone,
			Preferences: body.Preferences,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
