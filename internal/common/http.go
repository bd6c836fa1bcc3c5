package common

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gostatus/internal/logger"

	"github.com/gorilla/mux"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("failed to encode response")
	}
}

// WriteError writes err as a JSON body with the mapped HTTP status.
func WriteError(w http.ResponseWriter, err error) {
	code := HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		logger.Log.WithError(err).Error("request failed")
	}
	WriteJSON(w, code, errorBody{Error: err.Error(), Code: Code(err).String()})
}

// PathInt64 reads a positive integer mux route variable.
func PathInt64(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, Validationf("invalid %s %q", name, raw)
	}
	return n, nil
}

// QueryInt reads an optional non-negative integer query parameter.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, Validationf("invalid %s %q", name, raw)
	}
	return n, nil
}

// Caller returns the identity placed on the request by HTTPAuth.
func Caller(r *http.Request) (Identity, error) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		return Identity{}, status.Error(codes.Unauthenticated, "authorization required")
	}
	return id, nil
}
