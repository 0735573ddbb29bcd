package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Mad-three/server/internal/apperr"
	"github.com/Mad-three/server/internal/auth/naver"
)

// NaverLogin handles the provider login callback: the client posts the
// authorization code and state it received from the provider redirect.
func NaverLogin(svc *naver.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Code  string `json:"code"`
			State string `json:"state"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, r, apperr.New(apperr.KindInvalidRequest, "request body must be JSON with code and state"))
			return
		}

		result, err := svc.Login(r.Context(), body.Code, body.State)
		if err != nil {
			writeError(w, r, err)
			return
		}

		message := "login successful"
		if result.Created {
			message = "signup and login successful"
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": message,
			"token":   result.Token,
			"user": map[string]any{
				"userId": result.User.UserID,
				"name":   result.User.Name,
				"email":  result.User.Email,
			},
		})
	}
}
