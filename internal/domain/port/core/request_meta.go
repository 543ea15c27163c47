package core

import "context"

// RequestMeta identifies the origin of a request for audit records
type RequestMeta struct {
	IPAddress string
	RequestID string
}

type requestMetaKey struct{}

// WithRequestMeta stores request origin data in the context
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFrom returns the request origin stored in ctx, if any
func RequestMetaFrom(ctx context.Context) (RequestMeta, bool) {
	meta, ok := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta, ok
}
