package handler

import (
	"net/http"

	"quickhacker/internal/api/middleware"
	"quickhacker/internal/app/service"
	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type TeamHandler struct {
	teamService *service.TeamService
}

func NewTeamHandler(teamService *service.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

func (h *TeamHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listTeams)
	r.Get("/{teamID}", h.getTeam)
	r.Get("/{teamID}/details", h.getTeamDetails)

	r.Group(func(auth chi.Router) {
		auth.Use(middleware.RequireAuth)
		auth.Post("/", h.createTeam)
		auth.Patch("/{teamID}", h.updateTeam)
		auth.Post("/{teamID}/members", h.addMember)
		auth.Delete("/{teamID}/members/{userID}", h.removeMember)
	})

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdmin)
		admin.Post("/{teamID}/approve", h.approveTeam)
		admin.Post("/{teamID}/reject", h.rejectTeam)
		admin.Post("/{teamID}/credentials", h.generateCredentials)
	})
}

func (h *TeamHandler) listTeams(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	teams, err := h.teamService.List(r.Context(), service.TeamFilter{
		ProblemID: q.Get("problemId"),
		UserID:    q.Get("userId"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, teams)
}

func (h *TeamHandler) getTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.teamService.Get(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) getTeamDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.teamService.GetDetails(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, details)
}

func (h *TeamHandler) createTeam(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req service.CreateTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	team, err := h.teamService.Create(r.Context(), actor, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, team)
}

func (h *TeamHandler) updateTeam(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var patch model.TeamAdminPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, r, err)
		return
	}
	team, err := h.teamService.Update(r.Context(), actor, chi.URLParam(r, "teamID"), patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) approveTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.teamService.Approve(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) rejectTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.teamService.Reject(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) generateCredentials(w http.ResponseWriter, r *http.Request) {
	creds, err := h.teamService.GenerateCredentials(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, creds)
}

func (h *TeamHandler) addMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req service.AddMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	member, err := h.teamService.AddMember(r.Context(), actor, chi.URLParam(r, "teamID"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, member)
}

func (h *TeamHandler) removeMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	err := h.teamService.RemoveMember(r.Context(), actor, chi.URLParam(r, "teamID"), chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondNoContent(w)
}
