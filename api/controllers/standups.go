package controllers

import (
	"net/http"

	"github.com/siamcode/standupstrip-backend/api/middleware"
	"github.com/siamcode/standupstrip-backend/api/responses"
	"github.com/siamcode/standupstrip-backend/api/validators"
	"github.com/siamcode/standupstrip-backend/internal/standups"
	pkgerrors "github.com/siamcode/standupstrip-backend/pkg/errors"
	"github.com/siamcode/standupstrip-backend/pkg/logger"
	"github.com/siamcode/standupstrip-backend/pkg/types"
)

type submitStandupRequest struct {
	Yesterday string  `json:"yesterday" validate:"required,min=1"`
	Today     string  `json:"today" validate:"required,min=1"`
	Blockers  *string `json:"blockers,omitempty"`
}

// StandupSubmit records today's standup for the authenticated member.
func StandupSubmit(svc standups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "standup service unavailable"))
			return
		}

		teamID, err := validators.ParseUUIDParam(r, "teamId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body submitStandupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		standup, err := svc.Submit(r.Context(), middleware.UserIDFromContext(r.Context()), teamID, standups.SubmitStandupInput{
			Yesterday: body.Yesterday,
			Today:     body.Today,
			Blockers:  body.Blockers,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, standup)
	}
}

type updateStandupRequest struct {
	Yesterday *string `json:"yesterday,omitempty" validate:"omitempty,min=1"`
	Today     *string `json:"today,omitempty" validate:"omitempty,min=1"`
	Blockers  *string `json:"blockers,omitempty"`
}

// StandupUpdate edits the author's same-day standup.
func StandupUpdate(svc standups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "standup service unavailable"))
			return
		}

		standupID, err := validators.ParseUUIDParam(r, "standupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateStandupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		standup, err := svc.Update(r.Context(), middleware.UserIDFromContext(r.Context()), standupID, standups.UpdateStandupInput{
			Yesterday: body.Yesterday,
			Today:     body.Today,
			Blockers:  body.Blockers,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, standup)
	}
}

// StandupDelete removes the author's standup regardless of age.
func StandupDelete(svc standups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "standup service unavailable"))
			return
		}

		standupID, err := validators.ParseUUIDParam(r, "standupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), standupID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// StandupListByDate lists a team's standups for one day. The date query
// parameter defaults to today.
func StandupListByDate(svc standups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "standup service unavailable"))
			return
		}

		teamID, err := validators.ParseUUIDParam(r, "teamId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		date, err := validators.ParseDateQuery(r, "date", types.Today())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByDate(r.Context(), middleware.UserIDFromContext(r.Context()), teamID, date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// StandupListByRange lists a team's standups between two inclusive dates.
func StandupListByRange(svc standups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "standup service unavailable"))
			return
		}

		teamID, err := validators.ParseUUIDParam(r, "teamId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start, err := validators.RequireDateQuery(r, "startDate")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		end, err := validators.RequireDateQuery(r, "endDate")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByRange(r.Context(), middleware.UserIDFromContext(r.Context()), teamID, start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// StandupHeatmap returns per-day submission intensity for the past year.
func StandupHeatmap(svc standups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "standup service unavailable"))
			return
		}

		teamID, err := validators.ParseUUIDParam(r, "teamId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		heatmap, err := svc.Heatmap(r.Context(), middleware.UserIDFromContext(r.Context()), teamID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, heatmap)
	}
}
