package filter

import "context"

// SecurityContext describes the authenticated caller of a request. An
// authentication middleware upstream of the tracing filter attaches it to
// the request context; the AUTHENTICATION_SCHEME, SECURITY_CONTEXT, and
// USER_PRINCIPAL attributes read from it. Anonymous requests simply have
// none, and those attributes are skipped.
type SecurityContext struct {
	// Scheme is the authentication scheme (e.g., "Basic", "Bearer").
	Scheme string

	// Principal is the authenticated principal's name.
	Principal string
}

// WithSecurityContext attaches a security context to the request context.
func WithSecurityContext(ctx context.Context, sc SecurityContext) context.Context {
	return context.WithValue(ctx, securityContextKey, sc)
}

// SecurityContextFrom returns the security context attached to the request
// context, if any.
func SecurityContextFrom(ctx context.Context) (SecurityContext, bool) {
	sc, ok := ctx.Value(securityContextKey).(SecurityContext)
	return sc, ok
}
