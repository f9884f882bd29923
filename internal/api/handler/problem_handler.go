package handler

import (
	"net/http"

	"quickhacker/internal/api/middleware"
	"quickhacker/internal/app/service"
	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ProblemHandler struct {
	problemService *service.ProblemService
}

func NewProblemHandler(ps *service.ProblemService) *ProblemHandler {
	return &ProblemHandler{problemService: ps}
}

func (h *ProblemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listProblems)
	r.Get("/{problemKey}", h.getProblem) // id or slug

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.RequireAdmin)
		adminRouter.Post("/", h.createProblem)
		adminRouter.Patch("/{problemKey}", h.updateProblem)
	})
}

func (h *ProblemHandler) listProblems(w http.ResponseWriter, r *http.Request) {
	problems, err := h.problemService.List(r.Context(), parseBool(r.URL.Query().Get("active")))
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problems)
}

func (h *ProblemHandler) getProblem(w http.ResponseWriter, r *http.Request) {
	problem, err := h.problemService.Get(r.Context(), chi.URLParam(r, "problemKey"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) createProblem(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProblemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	problem, err := h.problemService.Create(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, problem)
}

func (h *ProblemHandler) updateProblem(w http.ResponseWriter, r *http.Request) {
	var patch model.ProblemPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, r, err)
		return
	}
	problem, err := h.problemService.Update(r.Context(), chi.URLParam(r, "problemKey"), patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}
