package status

import (
	"encoding/json"
	"net/http"

	"gostatus/internal/common"
	"gostatus/internal/dbmysql"

	"github.com/gorilla/mux"
)

type Handler struct {
	svc          *Service
	mediaBaseURL string
}

func NewHandler(svc *Service, mediaBaseURL string) *Handler {
	return &Handler{svc: svc, mediaBaseURL: mediaBaseURL}
}

func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/statuses", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/statuses/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/statuses/{id}", h.Delete).Methods(http.MethodDelete)
	r.HandleFunc("/publishers/{id}/statuses", h.ListByPublisher).Methods(http.MethodGet)
}

type createRequest struct {
	Kind    common.StatusKind `json:"kind"`
	Media   *dbmysql.MediaRef `json:"media"`
	Caption *string           `json:"caption"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := common.Caller(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.Validationf("invalid request body"))
		return
	}

	st, err := h.svc.Create(r.Context(), CreateInput{
		PublisherID: caller.UserID,
		Kind:        req.Kind,
		Media:       req.Media,
		Caption:     req.Caption,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, NewResponse(st, caller.UserID, h.mediaBaseURL))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
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
	st, err := h.svc.GetForViewer(r.Context(), id, caller.UserID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, NewResponse(st, caller.UserID, h.mediaBaseURL))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.svc.Delete(r.Context(), id, caller.UserID); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListByPublisher(w http.ResponseWriter, r *http.Request) {
	caller, err := common.Caller(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	publisherID, err := common.PathInt64(r, "id")
	if err != nil {
		common.WriteError(w, err)
		return
	}
	statuses, err := h.svc.ListByPublisher(r.Context(), publisherID, caller.UserID == publisherID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"publisher_id": publisherID,
		"statuses":     NewResponses(statuses, caller.UserID, h.mediaBaseURL),
	})
}
