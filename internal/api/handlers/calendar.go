package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Mad-three/server/internal/api/middleware"
	"github.com/Mad-three/server/internal/apperr"
	"github.com/Mad-three/server/internal/calendar"
)

// AddEventToCalendar publishes one event to the authenticated user's
// provider calendar.
func AddEventToCalendar(svc *calendar.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, r, apperr.New(apperr.KindInvalidRequest, "authentication required"))
			return
		}

		eventID, err := strconv.ParseUint(chi.URLParam(r, "eventID"), 10, 64)
		if err != nil {
			writeError(w, r, apperr.New(apperr.KindInvalidRequest, "event id must be numeric"))
			return
		}

		result, err := svc.AddEventToCalendar(r.Context(), userID, uint(eventID))
		if err != nil {
			writeError(w, r, err)
			return
		}

		message := "event added to calendar"
		if result.Retried {
			message = "event added to calendar after token refresh"
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"message": message,
			"result":  result.ProviderResult,
		})
	}
}
