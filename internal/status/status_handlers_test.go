package status

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gostatus/internal/common"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h *Handler, method, path string, body interface{}, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID > 0 {
		req = req.WithContext(common.WithIdentity(context.Background(), common.Identity{UserID: userID}))
	}
	router := mux.NewRouter()
	h.Routes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_CreateAndGet(t *testing.T) {
	svc, _, _, _ := newTestService()
	h := NewHandler(svc, "http://media.local/media/")

	rec := serve(t, h, http.MethodPost, "/statuses", map[string]interface{}{
		"kind":  "image",
		"media": map[string]interface{}{"file_id": "f1", "mime_type": "image/png", "size_bytes": 20},
	}, 7)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "http://media.local/media/f1", created.MediaURL)
	assert.Equal(t, common.ModerationPending, created.ModerationState)
	require.NotNil(t, created.ViewCount)

	// a pending status does not exist for anybody else
	rec = serve(t, h, http.MethodGet, "/statuses/1", nil, 8)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, h, http.MethodGet, "/statuses/1", nil, 7)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_CreateValidationIs400(t *testing.T) {
	svc, _, _, _ := newTestService()
	h := NewHandler(svc, "")

	rec := serve(t, h, http.MethodPost, "/statuses", map[string]interface{}{"kind": "text"}, 7)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, h, http.MethodPost, "/statuses", map[string]interface{}{"kind": "text", "caption": "x"}, 0)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_DeleteForbidden(t *testing.T) {
	svc, _, _, _ := newTestService()
	h := NewHandler(svc, "")
	serve(t, h, http.MethodPost, "/statuses", map[string]interface{}{"kind": "text", "caption": "x"}, 7)

	rec := serve(t, h, http.MethodDelete, "/statuses/1", nil, 8)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(t, h, http.MethodDelete, "/statuses/1", nil, 7)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestNewResponse_HidesCountsFromOthers(t *testing.T) {
	svc, _, _, _ := newTestService()
	st, err := svc.Create(context.Background(), CreateInput{PublisherID: 7, Kind: common.StatusKindText, Caption: strPtr("x")})
	require.NoError(t, err)
	reason := "nope"
	st.RejectionReason = &reason

	other := NewResponse(st, 8, "")
	assert.Nil(t, other.ViewCount)
	assert.Nil(t, other.RejectionReason)

	owner := NewResponse(st, 7, "")
	assert.NotNil(t, owner.LikeCount)
	assert.Equal(t, "nope", *owner.RejectionReason)
}
