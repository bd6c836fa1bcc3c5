package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func bearer(t *testing.T, userID int64, role string) string {
	t.Helper()
	token, err := GenerateToken(testSecret, userID, role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func runInterceptor(ctx context.Context, method string) (Identity, error) {
	var seen Identity
	interceptor := AuthInterceptor(testSecret, "gostatus.moderation.v1.ModerationService")
	_, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: method}, func(ctx context.Context, req interface{}) (interface{}, error) {
		seen, _ = IdentityFrom(ctx)
		return "ok", nil
	})
	return seen, err
}

func TestAuthInterceptor_PublicMethod(t *testing.T) {
	_, err := runInterceptor(context.Background(), "/grpc.health.v1.Health/Check")
	assert.NoError(t, err)
}

func TestAuthInterceptor_MissingToken(t *testing.T) {
	_, err := runInterceptor(context.Background(), "/gostatus.moderation.v1.ModerationService/Approve")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Token abc"))
	_, err = runInterceptor(ctx, "/gostatus.moderation.v1.ModerationService/Approve")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestAuthInterceptor_ModeratorRequired(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", bearer(t, 7, RoleViewer)))
	_, err := runInterceptor(ctx, "/gostatus.moderation.v1.ModerationService/Approve")
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", bearer(t, 9, RoleModerator)))
	id, err := runInterceptor(ctx, "/gostatus.moderation.v1.ModerationService/Approve")
	require.NoError(t, err)
	assert.Equal(t, int64(9), id.UserID)
	assert.True(t, id.IsModerator())
}

func TestHTTPAuth(t *testing.T) {
	var seen Identity
	h := HTTPAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", bearer(t, 3, RoleViewer))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(3), seen.UserID)
}

func TestRequireModerator(t *testing.T) {
	h := HTTPAuth(testSecret)(RequireModerator(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", bearer(t, 3, RoleViewer))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", bearer(t, 4, RoleModerator))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
