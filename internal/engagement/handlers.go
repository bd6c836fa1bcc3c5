package engagement

import (
	"net/http"

	"gostatus/internal/common"

	"github.com/gorilla/mux"
)

type Handler struct {
	tracker *Tracker
}

func NewHandler(tracker *Tracker) *Handler {
	return &Handler{tracker: tracker}
}

func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/statuses/{id}/views", h.RecordView).Methods(http.MethodPost)
	r.HandleFunc("/statuses/{id}/like", h.ToggleLike).Methods(http.MethodPost)
	r.HandleFunc("/statuses/{id}/counts", h.Counts).Methods(http.MethodGet)
}

func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := callerAndStatus(w, r)
	if !ok {
		return
	}
	res, err := h.tracker.RecordView(r.Context(), id, caller.UserID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	code := http.StatusOK
	if res.Queued {
		code = http.StatusAccepted
	}
	common.WriteJSON(w, code, res)
}

func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := callerAndStatus(w, r)
	if !ok {
		return
	}
	res, err := h.tracker.ToggleLike(r.Context(), id, caller.UserID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := callerAndStatus(w, r)
	if !ok {
		return
	}
	res, err := h.tracker.OwnerCounts(r.Context(), id, caller.UserID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, res)
}

func callerAndStatus(w http.ResponseWriter, r *http.Request) (common.Identity, int64, bool) {
	caller, err := common.Caller(r)
	if err != nil {
		common.WriteError(w, err)
		return common.Identity{}, 0, false
	}
	id, err := common.PathInt64(r, "id")
	if err != nil {
		common.WriteError(w, err)
		return common.Identity{}, 0, false
	}
	return caller, id, true
}
