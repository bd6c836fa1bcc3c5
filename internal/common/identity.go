package common

import "context"

type identityKey struct{}

// Identity is the caller as seen by the status core.
type Identity struct {
	UserID int64
	Role   string
}

func (i Identity) IsModerator() bool {
	return i.Role == RoleModerator
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
