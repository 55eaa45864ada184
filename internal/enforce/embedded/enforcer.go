// Package embedded evaluates authorization requests in-process against an
// access-control model and a rule store loaded from the identity provider's
// database.
package embedded

import (
	"context"
	"fmt"
	"os"

	"authgate/internal/enforce"
	"authgate/internal/observability/logging"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Enforcer evaluates (subject, object, action) against the loaded model and
// the store's current rule snapshot.
//
// The model text is read once at startup and is immutable afterwards. Each
// call builds a fresh evaluator bound to its own model instance and the
// shared store; construction is cheap, and a per-call evaluator never races
// with a snapshot swap in the store.
type Enforcer struct {
	modelText string
	store     *Store
	logger    *logging.Logger
}

// New creates an embedded enforcer from a model file and a rule store. A
// model that cannot be read or parsed is a fatal configuration error.
func New(modelPath string, store *Store, logger *logging.Logger) (*Enforcer, error) {
	text, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	// Parse once up front so a broken model fails startup, not requests.
	if _, err := model.NewModelFromString(string(text)); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	return &Enforcer{
		modelText: string(text),
		store:     store,
		logger:    logger.WithModule("enforce.embedded"),
	}, nil
}

// Mode identifies the strategy
func (e *Enforcer) Mode() string {
	return enforce.ModeEmbedded
}

// Enforce evaluates the request. Evaluator construction failure maps to
// ErrBuild, evaluation failure to ErrEnforce.
func (e *Enforcer) Enforce(ctx context.Context, req enforce.Request) (bool, error) {
	m, err := model.NewModelFromString(e.modelText)
	if err != nil {
		return false, fmt.Errorf("%w: %v", enforce.ErrBuild, err)
	}

	evaluator, err := casbin.NewEnforcer(m, e.store)
	if err != nil {
		return false, fmt.Errorf("%w: %v", enforce.ErrBuild, err)
	}

	ok, err := evaluator.Enforce(req.Subject, req.Object, req.Action)
	if err != nil {
		return false, fmt.Errorf("%w: %v", enforce.ErrEnforce, err)
	}

	e.logger.Debug("Policy evaluated",
		"subject", req.Subject,
		"object", req.Object,
		"action", req.Action,
		"allowed", ok,
	)
	return ok, nil
}
