package common

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var publicMethods = map[string]bool{
	"/grpc.health.v1.Health/Check": true,
	"/grpc.health.v1.Health/List":  true,
}

// AuthInterceptor extracts the bearer identity from gRPC metadata. Methods
// under any of moderatorServices additionally require the moderator role.
func AuthInterceptor(secret string, moderatorServices ...string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if publicMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}
		vals := md["authorization"]
		if len(vals) == 0 {
			return nil, status.Error(codes.Unauthenticated, "authorization required")
		}

		claims, err := parseBearer(secret, vals[0])
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		id := Identity{UserID: claims.UserID, Role: claims.Role}
		for _, svc := range moderatorServices {
			if strings.HasPrefix(info.FullMethod, "/"+svc+"/") && !id.IsModerator() {
				return nil, status.Error(codes.PermissionDenied, "moderator role required")
			}
		}

		return handler(WithIdentity(ctx, id), req)
	}
}

// HTTPAuth is the HTTP counterpart of AuthInterceptor.
func HTTPAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := parseBearer(secret, r.Header.Get("Authorization"))
			if err != nil {
				WriteError(w, status.Error(codes.Unauthenticated, err.Error()))
				return
			}
			ctx := WithIdentity(r.Context(), Identity{UserID: claims.UserID, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireModerator must run after HTTPAuth.
func RequireModerator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok || !id.IsModerator() {
			WriteError(w, status.Error(codes.PermissionDenied, "moderator role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func parseBearer(secret, header string) (*Claims, error) {
	if header == "" {
		return nil, errors.New("authorization required")
	}
	// header = Bearer <token>
	parts := strings.Fields(header)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, errors.New("invalid auth header")
	}
	claims, err := ValidToken(secret, parts[1])
	if err != nil {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}
