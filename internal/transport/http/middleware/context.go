package middleware

import (
	"context"

	"perf360/internal/domain/auth"
	"perf360/internal/platform/requestctx"
)

type ctxKey int

const ctxKeyUser ctxKey = iota

func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
