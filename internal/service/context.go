package service

import "context"

// originKey is an unexported context key so only these helpers touch the
// value.
type originKey struct{}

// WithRequestOrigin returns a child context carrying the client network
// address of the current request. The HTTP layer sets it once per request so
// the audit trail can attribute mutations to where they came from.
func WithRequestOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

// RequestOrigin returns the client address stashed by WithRequestOrigin, or
// "" for callers outside a request, such as CLI commands and seeds.
func RequestOrigin(ctx context.Context) string {
	origin, _ := ctx.Value(originKey{}).(string)
	return origin
}
