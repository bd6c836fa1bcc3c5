package report

import (
	"encoding/json"
	"net/http"

	"gostatus/internal/common"

	"github.com/gorilla/mux"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/reports/reasons", h.ListReasons).Methods(http.MethodGet)
	r.HandleFunc("/statuses/{id}/reports", h.Submit).Methods(http.MethodPost)
	r.HandleFunc("/statuses/{id}/reports/mine", h.HasReported).Methods(http.MethodGet)
}

func (h *Handler) ListReasons(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"reasons": h.svc.ListReasons()})
}

type submitRequest struct {
	ReasonCode  string  `json:"reason_code"`
	Description *string `json:"description"`
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	caller, err := common.Caller(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	id, err := common.PathInt64(r, "id")
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.Validationf("invalid request body"))
		return
	}

	res, err := h.svc.Submit(r.Context(), id, caller.UserID, req.ReasonCode, req.Description)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	code := http.StatusCreated
	if res.Duplicate {
		code = http.StatusOK
	}
	common.WriteJSON(w, code, res)
}

func (h *Handler) HasReported(w http.ResponseWriter, r *http.Request) {
	caller, err := common.Caller(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	id, err := common.PathInt64(r, "id")
	if err != nil {
		common.WriteError(w, err)
		return
	}
	reported, err := h.svc.HasReported(r.Context(), id, caller.UserID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"status_id": id, "reported": reported})
}
