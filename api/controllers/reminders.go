package controllers

import (
	"net/http"

	"github.com/siamcode/standupstrip-backend/api/middleware"
	"github.com/siamcode/standupstrip-backend/api/responses"
	"github.com/siamcode/standupstrip-backend/api/validators"
	"github.com/siamcode/standupstrip-backend/internal/reminders"
	pkgerrors "github.com/siamcode/standupstrip-backend/pkg/errors"
	"github.com/siamcode/standupstrip-backend/pkg/logger"
)

type reminderResult struct {
	Sent int `json:"sent"`
}

// ReminderSend nudges one member who has not submitted today; owner only.
func ReminderSend(svc reminders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reminder service unavailable"))
			return
		}

		teamID, err := validators.ParseUUIDParam(r, "teamId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		targetID, err := validators.ParseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sent, err := svc.RemindMember(r.Context(), middleware.UserIDFromContext(r.Context()), teamID, targetID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, reminderResult{Sent: sent})
	}
}

// ReminderSendAll nudges every accepted member without a standup today;
// owner only.
func ReminderSendAll(svc reminders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reminder service unavailable"))
			return
		}

		teamID, err := validators.ParseUUIDParam(r, "teamId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sent, err := svc.RemindAllPending(r.Context(), middleware.UserIDFromContext(r.Context()), teamID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, reminderResult{Sent: sent})
	}
}
