package moderation

import (
	"context"
	"time"

	"gostatus/internal/common"
	"gostatus/internal/logger"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type GRPCHandler struct {
	gate *Gate
}

func NewGRPCHandler(gate *Gate) *GRPCHandler {
	return &GRPCHandler{gate: gate}
}

var _ ModerationServer = (*GRPCHandler)(nil)

func (h *GRPCHandler) Approve(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	kind, id, err := subjectRef(req)
	if err != nil {
		return nil, err
	}
	subj, err := h.gate.Approve(ctx, kind, id)
	if err != nil {
		return nil, common.GRPCError(err)
	}
	return subjectStruct(subj)
}

func (h *GRPCHandler) Reject(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	kind, id, err := subjectRef(req)
	if err != nil {
		return nil, err
	}
	reason := safeString(req, "reason")
	if reason == "" {
		return nil, status.Error(codes.InvalidArgument, "reason is required")
	}
	subj, err := h.gate.Reject(ctx, kind, id, reason)
	if err != nil {
		return nil, common.GRPCError(err)
	}
	return subjectStruct(subj)
}

func (h *GRPCHandler) CancelRejection(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	kind, id, err := subjectRef(req)
	if err != nil {
		return nil, err
	}
	subj, err := h.gate.CancelRejection(ctx, kind, id)
	if err != nil {
		return nil, common.GRPCError(err)
	}
	return subjectStruct(subj)
}

func (h *GRPCHandler) Sweep(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	n, err := h.gate.Sweep(ctx)
	if err != nil {
		logger.Log.WithError(err).Error("manual sweep failed")
		return nil, common.GRPCError(err)
	}
	return structpb.NewStruct(map[string]interface{}{"expired": float64(n)})
}

func subjectRef(req *structpb.Struct) (Kind, int64, error) {
	if req == nil {
		return "", 0, status.Error(codes.InvalidArgument, "request is required")
	}
	kind := Kind(safeString(req, "kind"))
	if kind == "" {
		kind = KindStatus
	}
	v, ok := req.GetFields()["id"]
	if !ok {
		return "", 0, status.Error(codes.InvalidArgument, "id is required")
	}
	num, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || num.NumberValue <= 0 || num.NumberValue != float64(int64(num.NumberValue)) {
		return "", 0, status.Error(codes.InvalidArgument, "id must be a positive integer")
	}
	return kind, int64(num.NumberValue), nil
}

func subjectStruct(s *Subject) (*structpb.Struct, error) {
	fields := map[string]interface{}{
		"kind":       string(s.Kind),
		"id":         float64(s.ID),
		"owner_id":   float64(s.OwnerID),
		"state":      s.State.String(),
		"expires_at": s.ExpiresAt.UTC().Format(time.RFC3339),
	}
	if s.Reason != nil {
		fields["reason"] = *s.Reason
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

func safeString(req *structpb.Struct, key string) string {
	if v, ok := req.GetFields()[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
