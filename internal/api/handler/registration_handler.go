package handler

import (
	"net/http"

	"quickhacker/internal/api/middleware"
	"quickhacker/internal/app/service"
	"quickhacker/internal/common"

	"github.com/go-chi/chi/v5"
)

type RegistrationHandler struct {
	registrationService *service.RegistrationService
	limiter             middleware.Limiter
}

func NewRegistrationHandler(registrationService *service.RegistrationService, limiter middleware.Limiter) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService, limiter: limiter}
}

func (h *RegistrationHandler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RateLimit(h.limiter, "register-team")).Post("/register-team", h.registerTeam)
}

func (h *RegistrationHandler) registerTeam(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	result, err := h.registrationService.RegisterTeam(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, result)
}
