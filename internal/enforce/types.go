// Package enforce defines the policy enforcement contract shared by the
// embedded and remote strategies.
package enforce

import (
	"context"
	"errors"
)

// Enforcement mode names, also used as metric labels.
const (
	ModeEmbedded = "embedded"
	ModeRemote   = "remote"
)

var (
	// ErrBuild indicates the evaluator could not be constructed from the
	// loaded model and rule store.
	ErrBuild = errors.New("enforcer build failed")

	// ErrEnforce indicates the evaluation itself failed.
	ErrEnforce = errors.New("enforcement failed")

	// ErrUpstream indicates the remote decision API could not be reached or
	// returned an uninterpretable verdict.
	ErrUpstream = errors.New("enforcement service unavailable")
)

// Request is a single authorization question: may Subject perform Action on
// Object? Token carries the caller's bearer credential so the remote
// strategy can authenticate its decision call with it. Requests are built
// fresh per inbound call and never persisted.
type Request struct {
	// Subject is the caller identity, always "owner/name"
	Subject string

	// Object is the request path with any query string stripped
	Object string

	// Action is the HTTP method, lowercased
	Action string

	// Token is the caller's raw bearer token
	Token string
}

// Enforcer is the common contract over both enforcement strategies. The
// strategy is selected once at startup by configuration, never per request.
type Enforcer interface {
	// Mode identifies the strategy ("embedded" or "remote")
	Mode() string

	// Enforce evaluates the request against policy
	Enforce(ctx context.Context, req Request) (bool, error)
}
