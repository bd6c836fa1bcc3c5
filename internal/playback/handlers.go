package playback

import (
	"encoding/json"
	"net/http"

	"gostatus/internal/common"

	"github.com/gorilla/mux"
)

type Handler struct {
	registry *Registry
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/playback", h.Open).Methods(http.MethodPost)
	r.HandleFunc("/playback/{sid}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/playback/{sid}/{action:pause|resume|next|previous|close}", h.Control).Methods(http.MethodPost)
}

type openRequest struct {
	PublisherID int64 `json:"publisher_id"`
}

func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	caller, err := common.Caller(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PublisherID <= 0 {
		common.WriteError(w, common.Validationf("publisher_id is required"))
		return
	}
	s, err := h.registry.Open(r.Context(), caller.UserID, req.PublisherID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, s.Snapshot())
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	common.WriteJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) Control(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var err error
	switch mux.Vars(r)["action"] {
	case "pause":
		err = s.Pause()
	case "resume":
		err = s.Resume()
	case "next":
		err = s.Next()
	case "previous":
		err = s.Previous()
	case "close":
		s.Close()
	}
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	caller, err := common.Caller(r)
	if err != nil {
		common.WriteError(w, err)
		return nil, false
	}
	s, err := h.registry.Get(mux.Vars(r)["sid"], caller.UserID)
	if err != nil {
		common.WriteError(w, err)
		return nil, false
	}
	return s, true
}
