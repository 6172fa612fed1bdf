package session

import "context"

// Identity is the authenticated caller attached to the request context by the
// authentication middleware.
type Identity struct {
	UserID uint
	Role   string
	Email  string
}

type identityKey struct{}

func IntoContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
