package feed

import (
	"net/http"
	"time"

	"gostatus/internal/common"
	"gostatus/internal/status"

	"github.com/gorilla/mux"
)

type Handler struct {
	assembler    *Assembler
	mediaBaseURL string
}

func NewHandler(assembler *Assembler, mediaBaseURL string) *Handler {
	return &Handler{assembler: assembler, mediaBaseURL: mediaBaseURL}
}

func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/feed/own", h.OwnFeed).Methods(http.MethodGet)
	r.HandleFunc("/feed/followed", h.FollowedFeed).Methods(http.MethodGet)
	r.HandleFunc("/follows", h.ListFollowing).Methods(http.MethodGet)
	r.HandleFunc("/follows/{publisherId}", h.Follow).Methods(http.MethodPost)
	r.HandleFunc("/follows/{publisherId}", h.Unfollow).Methods(http.MethodDelete)
}

type groupResponse struct {
	PublisherID int64             `json:"publisher_id"`
	LatestAt    time.Time         `json:"latest_at"`
	Statuses    []status.Response `json:"statuses"`
}

type pageResponse struct {
	Groups     []groupResponse `json:"groups"`
	NextOffset *int            `json:"next_offset,omitempty"`
	HasMore    bool            `json:"has_more"`
}

func (h *Handler) toGroup(g Group, viewerID int64) groupResponse {
	return groupResponse{
		PublisherID: g.PublisherID,
		LatestAt:    g.LatestAt,
		Statuses:    status.NewResponses(g.Statuses, viewerID, h.mediaBaseURL),
	}
}

func (h *Handler) OwnFeed(w http.ResponseWriter, r *http.Request) {
	caller, err := common.Caller(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	g, err := h.assembler.AssembleOwnFeed(r.Context(), caller.UserID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, h.toGroup(*g, caller.UserID))
}

func (h *Handler) FollowedFeed(w http.ResponseWriter, r *http.Request) {
	caller, err := common.Caller(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	offset, err := common.QueryInt(r, "offset", 0)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	limit, err := common.QueryInt(r, "limit", DefaultPageSize)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	page, err := h.assembler.AssembleFollowedFeed(r.Context(), caller.UserID, offset, limit)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	resp := pageResponse{Groups: make([]groupResponse, 0, len(page.Groups)), HasMore: page.HasMore}
	for _, g := range page.Groups {
		resp.Groups = append(resp.Groups, h.toGroup(g, caller.UserID))
	}
	if page.HasMore {
		next := page.NextOffset
		resp.NextOffset = &next
	}
	common.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	caller, err := common.Caller(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	publisherID, err := common.PathInt64(r, "publisherId")
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.assembler.Follow(r.Context(), caller.UserID, publisherID); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	caller, err := common.Caller(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	publisherID, err := common.PathInt64(r, "publisherId")
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.assembler.Unfollow(r.Context(), caller.UserID, publisherID); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListFollowing(w http.ResponseWriter, r *http.Request) {
	caller, err := common.Caller(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	ids, err := h.assembler.Following(r.Context(), caller.UserID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"publisher_ids": ids})
}
