// Package requestid carries a correlation id through a context.
package requestid

import "context"

type ctxKey struct{}

// Header is the HTTP header the id travels in.
const Header = "X-Request-ID"

// With returns a copy of ctx carrying id.
func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// From returns the id stored in ctx, or "" when there is none.
func From(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
