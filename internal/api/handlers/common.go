// Package handlers implements the HTTP boundary of the identity and
// calendar integration.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/Mad-three/server/internal/apperr"
	"github.com/Mad-three/server/internal/logging"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError translates a failure into the API's JSON error shape.
// Classified errors keep their user-facing message; everything else
// collapses into a generic retry-later response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	message := apperr.MessageOf(err)
	if kind == apperr.KindUnknown {
		message = "server error, please try again later"
	}

	log.Printf("[%s] request failed (status %d): %v", logging.GetRequestID(r.Context()), status, err)
	writeJSON(w, status, map[string]string{"message": message})
}
