// Package pipeline implements the authentication-then-authorization
// decision pipeline: normalize the request, confirm token liveness with the
// identity provider, extract the subject offline, evaluate policy, and
// produce a verdict.
package pipeline

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"authgate/internal/enforce"
	"authgate/internal/observability/logging"
	"authgate/internal/observability/metrics"
)

// Pipeline produces one verdict per inbound request. It holds no per-request
// state: given fixed upstream responses and a fixed rule snapshot, identical
// (token, method, path) inputs always yield identical verdicts.
type Pipeline struct {
	introspector Introspector
	verifier     TokenVerifier
	enforcer     enforce.Enforcer
	logger       *logging.Logger
	metrics      *metrics.Collector
}

// New creates a decision pipeline
func New(introspector Introspector, verifier TokenVerifier, enforcer enforce.Enforcer, logger *logging.Logger, collector *metrics.Collector) *Pipeline {
	return &Pipeline{
		introspector: introspector,
		verifier:     verifier,
		enforcer:     enforcer,
		logger:       logger.WithModule("pipeline"),
		metrics:      collector,
	}
}

// Decide runs the pipeline for one request. token is the raw bearer token
// (empty when the caller presented none), method and uri are the forwarded
// method and URI of the original request.
func (p *Pipeline) Decide(ctx context.Context, token, method, uri string) Result {
	logger := logging.LoggerFromContext(ctx)
	if logger == nil {
		logger = p.logger
	}

	// Browsers issue CORS preflight without credentials; it must never be
	// authenticated.
	if strings.EqualFold(method, http.MethodOptions) {
		return p.finish(logger, Result{Verdict: Allow})
	}

	if token == "" {
		return p.finish(logger, Result{
			Verdict: Error,
			Kind:    KindMissingToken,
			Err:     errors.New("no bearer token presented"),
		})
	}

	// The object compared against policy must never vary on query
	// parameters, which a caller could otherwise use to dodge path rules.
	object := strings.SplitN(uri, "?", 2)[0]
	action := strings.ToLower(method)

	// Authentication: is the token currently active?
	start := time.Now()
	introspection, err := p.introspector.Introspect(ctx, token)
	if err != nil {
		p.metrics.RecordIntrospection("error", time.Since(start))
		return p.finish(logger, Result{Verdict: Error, Kind: KindUpstream, Err: err})
	}
	if !introspection.Active {
		p.metrics.RecordIntrospection("inactive", time.Since(start))
		return p.finish(logger, Result{Verdict: Unauthenticated})
	}
	p.metrics.RecordIntrospection("active", time.Since(start))

	// Introspection already guaranteed liveness, so a verification failure
	// here means a malformed or forged token slipped past the provider.
	claims, err := p.verifier.Verify(token)
	if err != nil {
		return p.finish(logger, Result{Verdict: Error, Kind: KindInvalidToken, Err: err})
	}
	subject := claims.Subject()

	// Authorization
	start = time.Now()
	allowed, err := p.enforcer.Enforce(ctx, enforce.Request{
		Subject: subject,
		Object:  object,
		Action:  action,
		Token:   token,
	})
	if err != nil {
		p.metrics.RecordEnforcement(p.enforcer.Mode(), "error", time.Since(start))
		return p.finish(logger, Result{Verdict: Error, Kind: classifyEnforceError(err), Err: err})
	}
	p.metrics.RecordEnforcement(p.enforcer.Mode(), boolResult(allowed), time.Since(start))

	logger.Debug("Policy decision",
		"subject", subject,
		"object", object,
		"action", action,
		"allowed", allowed,
	)

	if !allowed {
		return p.finish(logger, Result{Verdict: Deny, Subject: subject})
	}
	return p.finish(logger, Result{Verdict: Allow, Subject: subject})
}

// finish records verdict metrics and logs terminal failures
func (p *Pipeline) finish(logger *logging.Logger, res Result) Result {
	p.metrics.RecordVerdict(res.Verdict.String())
	if res.Verdict == Error {
		logger.Error("Decision pipeline failed",
			"kind", res.Kind.String(),
			logging.Err(res.Err),
		)
	}
	return res
}

// classifyEnforceError maps an enforcement error to its kind tag
func classifyEnforceError(err error) ErrorKind {
	switch {
	case errors.Is(err, enforce.ErrBuild):
		return KindEnforcerBuild
	case errors.Is(err, enforce.ErrEnforce):
		return KindEnforce
	default:
		return KindUpstream
	}
}

func boolResult(allowed bool) string {
	if allowed {
		return "allow"
	}
	return "deny"
}
