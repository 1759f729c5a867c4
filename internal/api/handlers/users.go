package handlers

import (
	"net/http"

	"github.com/baharkarakas/points-backend/internal/api/httpx"
	"github.com/baharkarakas/points-backend/internal/middleware"
	"github.com/baharkarakas/points-backend/internal/services"
)

type UserHandler struct {
	users    *services.UserService
	balances *services.BalanceService
}

func NewUserHandler(users *services.UserService, balances *services.BalanceService) *UserHandler {
	return &UserHandler{users: users, balances: balances}
}

// Me returns the authenticated user's profile, points included.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())
	u, err := h.users.Get(r.Context(), uid)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

// Balance returns only the authenticated user's account.
func (h *UserHandler) Balance(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())
	a, err := h.balances.Current(r.Context(), uid)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}
