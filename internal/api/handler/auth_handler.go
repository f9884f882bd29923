package handler

import (
	"net/http"
	"net/url"
	"time"

	"quickhacker/internal/api/middleware"
	"quickhacker/internal/app/service"
	"quickhacker/internal/common"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	tokenCookie = "token"
	stateCookie = "oauth_state"
	stateTTL    = 10 * time.Minute
)

type AuthHandler struct {
	authService  *service.AuthService
	oauthService *service.OAuthService
	appURL       string
	tokenTTL     time.Duration
	limiter      middleware.Limiter
}

func NewAuthHandler(authService *service.AuthService, oauthService *service.OAuthService, appURL string, tokenTTL time.Duration, limiter middleware.Limiter) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		oauthService: oauthService,
		appURL:       appURL,
		tokenTTL:     tokenTTL,
		limiter:      limiter,
	}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RateLimit(h.limiter, "register")).Post("/register", h.register)
	r.With(middleware.RateLimit(h.limiter, "login")).Post("/login", h.login)
	r.With(middleware.RequireAuth).Get("/me", h.me)
	r.Post("/logout", h.logout)
	r.Get("/github", h.githubRedirect)
	r.Get("/github/callback", h.githubCallback)
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.setTokenCookie(w, r, resp.Token)
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.setTokenCookie(w, r, resp.Token)
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: tokenCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) githubRedirect(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	target, err := h.oauthService.AuthCodeURL(state)
	if err != nil {
		respondError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/auth/github",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *AuthHandler) githubCallback(w http.ResponseWriter, r *http.Request) {
	if !h.oauthService.Enabled() {
		respondError(w, r, common.Unavailable("GitHub authentication is not configured"))
		return
	}
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/api/auth/github", MaxAge: -1, HttpOnly: true})

	resp, err := h.oauthService.CompleteLogin(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.setTokenCookie(w, r, resp.Token)
	http.Redirect(w, r, h.appURL+"/?token="+url.QueryEscape(resp.Token), http.StatusFound)
}
