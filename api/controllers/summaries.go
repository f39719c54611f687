package controllers

import (
	"net/http"

	"github.com/siamcode/standupstrip-backend/api/middleware"
	"github.com/siamcode/standupstrip-backend/api/responses"
	"github.com/siamcode/standupstrip-backend/api/validators"
	"github.com/siamcode/standupstrip-backend/internal/summaries"
	pkgerrors "github.com/siamcode/standupstrip-backend/pkg/errors"
	"github.com/siamcode/standupstrip-backend/pkg/logger"
	"github.com/siamcode/standupstrip-backend/pkg/types"
)

// SummaryGenerate builds (or rebuilds) a team's daily summary. The date
// query parameter defaults to today.
func SummaryGenerate(svc summaries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "summary service unavailable"))
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

		summary, err := svc.Generate(r.Context(), middleware.UserIDFromContext(r.Context()), teamID, date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, summary)
	}
}

// SummaryGetByDate fetches a stored daily summary.
func SummaryGetByDate(svc summaries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "summary service unavailable"))
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

		summary, err := svc.GetByDate(r.Context(), middleware.UserIDFromContext(r.Context()), teamID, date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

// SummaryListByRange lists stored summaries between two inclusive dates.
func SummaryListByRange(svc summaries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "summary service unavailable"))
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
