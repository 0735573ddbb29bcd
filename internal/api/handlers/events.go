package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/Mad-three/server/internal/api/middleware"
	"github.com/Mad-three/server/internal/apperr"
	"github.com/Mad-three/server/internal/db/models"
)

// GetEvent returns one event by id.
func GetEvent(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := strconv.ParseUint(chi.URLParam(r, "eventID"), 10, 64)
		if err != nil {
			writeError(w, r, apperr.New(apperr.KindInvalidRequest, "event id must be numeric"))
			return
		}

		var event models.Event
		if err := database.First(&event, "event_id = ?", uint(eventID)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				writeError(w, r, apperr.New(apperr.KindNotFound, "event not found"))
				return
			}
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, event)
	}
}

// GetMe returns the authenticated user's profile. Credential columns
// never serialize.
func GetMe(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, r, apperr.New(apperr.KindInvalidRequest, "authentication required"))
			return
		}

		var user models.User
		if err := database.First(&user, "user_id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				writeError(w, r, apperr.New(apperr.KindNotFound, "user not found"))
				return
			}
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
