package handlers

import (
	"net/http"

	"github.com/baharkarakas/points-backend/internal/api/httpx"
	"github.com/baharkarakas/points-backend/internal/api/validate"
	"github.com/baharkarakas/points-backend/internal/auth"
	"github.com/baharkarakas/points-backend/internal/logger"
	"github.com/baharkarakas/points-backend/internal/models"
	"github.com/baharkarakas/points-backend/internal/services"
)

type AuthHandler struct {
	TM    *auth.TokenManager
	Users *services.UserService
}

func NewAuthHandler(tm *auth.TokenManager, users *services.UserService) *AuthHandler {
	return &AuthHandler{TM: tm, Users: users}
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type authResp struct {
	User   models.User    `json:"user"`
	Tokens auth.TokenPair `json:"tokens"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	errs := validate.Collect(
		validate.Required("name", req.Name),
		validate.Email("email", req.Email),
		validate.Required("password", req.Password),
	)
	if len(errs) > 0 {
		writeServiceError(w, r, errs)
		return
	}

	u, err := h.Users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeTokens(w, r, http.StatusCreated, u)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	if errs := validate.Collect(validate.Required("email", req.Email), validate.Required("password", req.Password)); len(errs) > 0 {
		writeServiceError(w, r, errs)
		return
	}

	u, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeTokens(w, r, http.StatusOK, u)
}

// Refresh exchanges a refresh token for a new pair. The user must still exist.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "refresh_token required", nil)
		return
	}
	claims, err := h.TM.ParseRefresh(req.RefreshToken)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "please authenticate", nil)
		return
	}
	u, err := h.Users.Get(r.Context(), claims.UserID)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "please authenticate", nil)
		return
	}
	h.writeTokens(w, r, http.StatusOK, u)
}

func (h *AuthHandler) writeTokens(w http.ResponseWriter, r *http.Request, status int, u models.User) {
	pair, err := h.TM.GeneratePair(u.ID, u.Role)
	if err != nil {
		logger.FromContext(r.Context()).Error("token generation failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "token generation failed", nil)
		return
	}
	httpx.WriteJSON(w, status, authResp{User: u, Tokens: pair})
}
