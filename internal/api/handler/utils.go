package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"quickhacker/internal/api/middleware"
	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"
)

// respondError writes err as {"error": message}. Internal errors are logged and
// answered with a generic message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := common.HTTPStatusFromError(err)
	if status == http.StatusInternalServerError {
		log.Printf("ERROR: %s %s: %v", r.Method, r.URL.Path, err)
	}
	common.RespondWithError(w, status, common.PublicMessage(err))
}

func decodeJSON(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return common.ValidationError("Invalid request payload")
	}
	return nil
}

// currentUser returns the authenticated caller. Routes using it sit behind RequireAuth,
// so a missing user is answered with 401 rather than trusted.
func currentUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
	}
	return user, ok
}

func parseBool(s string) bool {
	return strings.EqualFold(s, "true") || s == "1"
}
