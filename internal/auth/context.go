package auth

import (
	"context"
)

type ctxKey string

const userKey ctxKey = "userID"

func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userKey, id)
}

// UserID returns the authenticated user's id, or "" outside a request that
// passed RequireAuth.
func UserID(ctx context.Context) string {
	if v, ok := ctx.Value(userKey).(string); ok {
		return v
	}
	return ""
}
