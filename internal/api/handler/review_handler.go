package handler

import (
	"net/http"

	"quickhacker/internal/api/middleware"
	"quickhacker/internal/app/service"
	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
}

func NewReviewHandler(rs *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: rs}
}

func (h *ReviewHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.RequireRole(model.RoleAdmin, model.RoleJudge))
	r.Get("/{reviewID}", h.getReview)
	r.Post("/", h.createReview)
	r.Patch("/{reviewID}", h.updateReview)
}

func (h *ReviewHandler) getReview(w http.ResponseWriter, r *http.Request) {
	review, err := h.reviewService.Get(r.Context(), chi.URLParam(r, "reviewID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, review)
}

func (h *ReviewHandler) createReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req model.CreateReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	review, err := h.reviewService.Create(r.Context(), actor, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, review)
}

func (h *ReviewHandler) updateReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var patch model.ReviewPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, r, err)
		return
	}
	review, err := h.reviewService.Update(r.Context(), actor, chi.URLParam(r, "reviewID"), patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, review)
}
