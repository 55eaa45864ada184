package pipeline

import (
	"context"

	"authgate/internal/identity"
	"authgate/internal/idp"
)

// Verdict is the outcome of a decision
type Verdict int

const (
	// Allow indicates the request is permitted
	Allow Verdict = iota
	// Deny indicates the caller is authenticated but policy says no
	Deny
	// Unauthenticated indicates the provider reports the token inactive
	Unauthenticated
	// Error indicates the pipeline could not produce a decision
	Error
)

// String returns the verdict name, also used as a metric label
func (v Verdict) String() string {
	switch v {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "error"
	}
}

// ErrorKind tags the failure class of an Error verdict
type ErrorKind int

const (
	// KindNone means no failure occurred
	KindNone ErrorKind = iota
	// KindMissingToken means no bearer token was presented
	KindMissingToken
	// KindInvalidToken means signature or claims verification failed
	KindInvalidToken
	// KindEnforcerBuild means the policy evaluator could not be constructed
	KindEnforcerBuild
	// KindEnforce means policy evaluation failed
	KindEnforce
	// KindUpstream means an upstream dependency was unreachable or
	// returned an uninterpretable response
	KindUpstream
)

// String returns the kind name for logging
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindMissingToken:
		return "missing_token"
	case KindInvalidToken:
		return "invalid_token"
	case KindEnforcerBuild:
		return "enforcer_build_failed"
	case KindEnforce:
		return "enforce_failed"
	default:
		return "upstream_unavailable"
	}
}

// Result is a fully resolved decision. Deny and Unauthenticated are
// expected business outcomes, not errors; only an Error verdict carries a
// Kind and an underlying error.
type Result struct {
	// Verdict is the decision
	Verdict Verdict

	// Subject is the caller identity ("owner/name") on Allow; empty for the
	// preflight short-circuit
	Subject string

	// Kind tags the failure class when Verdict is Error
	Kind ErrorKind

	// Err is the underlying failure, for the log only; it is never written
	// to the network response
	Err error
}

// Introspector reports whether a token is currently active
type Introspector interface {
	Introspect(ctx context.Context, token string) (*idp.Introspection, error)
}

// TokenVerifier validates a token offline and extracts its claim set
type TokenVerifier interface {
	Verify(token string) (*identity.Claims, error)
}
