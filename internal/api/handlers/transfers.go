package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/points-backend/internal/api/httpx"
	"github.com/baharkarakas/points-backend/internal/api/validate"
	"github.com/baharkarakas/points-backend/internal/middleware"
	"github.com/baharkarakas/points-backend/internal/models"
	"github.com/baharkarakas/points-backend/internal/services"
)

type TransferHandler struct {
	svc *services.TransferService
}

func NewTransferHandler(svc *services.TransferService) *TransferHandler {
	return &TransferHandler{svc: svc}
}

type createTransferReq struct {
	ReceiverEmail string `json:"receiverEmail"`
	Points        *int64 `json:"points"`
}

type transferResp struct {
	Message  string          `json:"message"`
	Transfer models.Transfer `json:"transfer"`
}

// Create handles POST /transfers.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())

	var req createTransferReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	var points int64
	pointsErr := &validate.ErrField{Field: "points", Msg: "required"}
	if req.Points != nil {
		points = *req.Points
		pointsErr = validate.MinInt("points", points, 1)
	}
	if errs := validate.Collect(validate.Email("receiverEmail", req.ReceiverEmail), pointsErr); len(errs) > 0 {
		writeServiceError(w, r, errs)
		return
	}

	t, err := h.svc.Create(r.Context(), uid, req.ReceiverEmail, points)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, transferResp{Message: "Transfer created", Transfer: t})
}

// Confirm handles POST /transfers/{id}/confirm.
func (h *TransferHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())

	t, err := h.svc.Confirm(r.Context(), chi.URLParam(r, "id"), uid)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, transferResp{Message: "Transfer confirmed", Transfer: t})
}

func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())

	t, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"), uid)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

// List handles GET /transfers?page=&limit=&sortBy=field:dir.
func (h *TransferHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())

	q, errs := parseListQuery(r)
	if len(errs) > 0 {
		writeServiceError(w, r, errs)
		return
	}
	page, err := h.svc.ListForUser(r.Context(), uid, q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func parseListQuery(r *http.Request) (models.ListQuery, validate.Errs) {
	v := r.URL.Query()
	q := models.DefaultListQuery()

	page, pageErr := validate.PositiveQueryInt("page", v.Get("page"), models.DefaultPage)
	limit, limitErr := validate.PositiveQueryInt("limit", v.Get("limit"), models.DefaultLimit)
	var sortErr *validate.ErrField
	if s := v.Get("sortBy"); s != "" {
		col, desc, err := models.ParseSort(s)
		if err != nil {
			sortErr = &validate.ErrField{Field: "sortBy", Msg: err.Error()}
		} else {
			q.SortBy, q.Desc = col, desc
		}
	}
	if errs := validate.Collect(pageErr, limitErr, sortErr); len(errs) > 0 {
		return models.ListQuery{}, errs
	}
	q.Page, q.Limit = page, min(limit, models.MaxLimit)
	if q.PageOutOfRange() {
		return models.ListQuery{}, validate.Errs{{Field: "page", Msg: "out of range"}}
	}
	return q, nil
}
