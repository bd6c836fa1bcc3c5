package moderation

import (
	"encoding/json"
	"net/http"

	"gostatus/internal/common"

	"github.com/gorilla/mux"
)

type HTTPHandler struct {
	gate *Gate
}

func NewHTTPHandler(gate *Gate) *HTTPHandler {
	return &HTTPHandler{gate: gate}
}

// Routes mounts the moderator-only endpoints on r; r must already carry HTTPAuth.
func (h *HTTPHandler) Routes(r *mux.Router) {
	mod := r.PathPrefix("/moderation").Subrouter()
	mod.Use(common.RequireModerator)
	mod.HandleFunc("/statuses/{id}/approve", h.Approve).Methods(http.MethodPost)
	mod.HandleFunc("/statuses/{id}/reject", h.Reject).Methods(http.MethodPost)
	mod.HandleFunc("/statuses/{id}/cancel-rejection", h.CancelRejection).Methods(http.MethodPost)
	mod.HandleFunc("/sweep", h.Sweep).Methods(http.MethodPost)
}

func (h *HTTPHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathInt64(r, "id")
	if err != nil {
		common.WriteError(w, err)
		return
	}
	subj, err := h.gate.Approve(r.Context(), KindStatus, id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, subj)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *HTTPHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathInt64(r, "id")
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.Validationf("invalid request body"))
		return
	}
	subj, err := h.gate.Reject(r.Context(), KindStatus, id, req.Reason)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, subj)
}

func (h *HTTPHandler) CancelRejection(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathInt64(r, "id")
	if err != nil {
		common.WriteError(w, err)
		return
	}
	subj, err := h.gate.CancelRejection(r.Context(), KindStatus, id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, subj)
}

func (h *HTTPHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	n, err := h.gate.Sweep(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]int64{"expired": n})
}
