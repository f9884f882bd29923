package handler

import (
	"io"
	"net/http"

	"quickhacker/internal/api/middleware"
	"quickhacker/internal/app/service"
	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

const maxPatchBytes = 1 << 20

type SubmissionHandler struct {
	submissionService *service.SubmissionService
	reviewService     *service.ReviewService
}

func NewSubmissionHandler(ss *service.SubmissionService, rs *service.ReviewService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss, reviewService: rs}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.RequireAuth) // All submission routes require auth
	r.Get("/", h.listSubmissions)
	r.Post("/", h.createSubmission)
	r.Get("/{submissionID}", h.getSubmission)
	r.Patch("/{submissionID}", h.updateSubmission)

	r.Group(func(judges chi.Router) {
		judges.Use(middleware.RequireRole(model.RoleAdmin, model.RoleJudge))
		judges.Get("/{submissionID}/reviews", h.listReviews)
		judges.Post("/{submissionID}/evaluate", h.evaluateSubmission)
	})
}

func (h *SubmissionHandler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	subs, err := h.submissionService.List(r.Context(), actor, service.SubmissionFilter{
		TeamID:    q.Get("teamId"),
		ProblemID: q.Get("problemId"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, subs)
}

func (h *SubmissionHandler) getSubmission(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	sub, reviews, err := h.submissionService.Get(r.Context(), actor, chi.URLParam(r, "submissionID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if reviews == nil {
		common.RespondWithJSON(w, http.StatusOK, sub)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, model.SubmissionWithReviews{Submission: *sub, Reviews: reviews})
}

func (h *SubmissionHandler) createSubmission(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req model.CreateSubmissionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	sub, err := h.submissionService.Create(r.Context(), actor, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, sub)
}

// updateSubmission hands the raw body to the service, which decodes it against the
// field allow-list of the caller's role.
func (h *SubmissionHandler) updateSubmission(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPatchBytes))
	if err != nil {
		respondError(w, r, common.ValidationError("Invalid request payload"))
		return
	}
	sub, err := h.submissionService.Update(r.Context(), actor, chi.URLParam(r, "submissionID"), body)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, sub)
}

func (h *SubmissionHandler) listReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviewService.ListBySubmission(r.Context(), chi.URLParam(r, "submissionID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, reviews)
}

func (h *SubmissionHandler) evaluateSubmission(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req model.EvaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	result, err := h.submissionService.Evaluate(r.Context(), actor, chi.URLParam(r, "submissionID"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}
