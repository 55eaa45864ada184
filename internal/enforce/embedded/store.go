package embedded

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"authgate/internal/observability/logging"
	"authgate/internal/observability/metrics"

	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"

	_ "github.com/go-sql-driver/mysql"
)

// ruleTable is the policy tuple table inside the identity provider's own
// database.
const ruleTable = "casbin_rule"

// Rule is one policy tuple: a ptype plus up to six positional fields.
type Rule struct {
	PType string
	V0    string
	V1    string
	V2    string
	V3    string
	V4    string
	V5    string
}

// fields returns the tuple in casbin's line format, with trailing empty
// fields trimmed.
func (r Rule) fields() []string {
	line := []string{r.PType, r.V0, r.V1, r.V2, r.V3, r.V4, r.V5}
	end := len(line)
	for end > 1 && line[end-1] == "" {
		end--
	}
	return line[:end]
}

// Store is the rule store backing the embedded enforcer. Rules are fetched
// from the backing database into an in-memory snapshot that evaluators read
// concurrently; Load replaces the snapshot atomically so in-flight
// evaluations finish against a consistent rule set.
//
// Store implements casbin's persist.Adapter as a read-only adapter: the
// gateway never writes policy, it only evaluates it.
type Store struct {
	db      *sql.DB
	logger  *logging.Logger
	metrics *metrics.Collector
	rules   atomic.Pointer[[]Rule]
}

// NewStore opens the backing database and performs the initial rule fetch.
// A store that cannot complete its first load is a configuration error, so
// the error is returned rather than deferred to request time.
func NewStore(ctx context.Context, dsn string, logger *logging.Logger, collector *metrics.Collector) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open rule store: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{
		db:      db,
		logger:  logger.WithModule("enforce.store"),
		metrics: collector,
	}

	if err := s.Load(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initial rule load: %w", err)
	}
	return s, nil
}

// Load fetches all policy tuples and swaps them in as the new snapshot.
func (s *Store) Load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT ptype, v0, v1, v2, v3, v4, v5 FROM "+ruleTable)
	if err != nil {
		s.metrics.RecordPolicyReload(false)
		return fmt.Errorf("query rule store: %w", err)
	}
	defer rows.Close()

	var rules []Rule
	for rows.Next() {
		var r Rule
		if err := rows.Scan(&r.PType, &r.V0, &r.V1, &r.V2, &r.V3, &r.V4, &r.V5); err != nil {
			s.metrics.RecordPolicyReload(false)
			return fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		s.metrics.RecordPolicyReload(false)
		return fmt.Errorf("read rule store: %w", err)
	}

	s.rules.Store(&rules)
	s.metrics.RecordPolicyReload(true)
	s.logger.Debug("Rule snapshot replaced", "rules", len(rules))
	return nil
}

// StartReloading refreshes the snapshot at the given interval until the
// context is cancelled. A failed reload keeps the previous snapshot.
func (s *Store) StartReloading(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Load(ctx); err != nil {
					s.logger.Error("Rule reload failed, keeping previous snapshot", logging.Err(err))
				}
			}
		}
	}()
}

// Close closes the backing database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// snapshot returns the current rule set
func (s *Store) snapshot() []Rule {
	if p := s.rules.Load(); p != nil {
		return *p
	}
	return nil
}

// LoadPolicy feeds the current snapshot into a casbin model. This is the
// only adapter operation the evaluator exercises.
func (s *Store) LoadPolicy(m model.Model) error {
	for _, r := range s.snapshot() {
		if err := persist.LoadPolicyArray(r.fields(), m); err != nil {
			return err
		}
	}
	return nil
}

// SavePolicy is not supported; the store is read-only
func (s *Store) SavePolicy(m model.Model) error {
	return fmt.Errorf("rule store is read-only")
}

// AddPolicy is not supported; the store is read-only
func (s *Store) AddPolicy(sec string, ptype string, rule []string) error {
	return fmt.Errorf("rule store is read-only")
}

// RemovePolicy is not supported; the store is read-only
func (s *Store) RemovePolicy(sec string, ptype string, rule []string) error {
	return fmt.Errorf("rule store is read-only")
}

// RemoveFilteredPolicy is not supported; the store is read-only
func (s *Store) RemoveFilteredPolicy(sec string, ptype string, fieldIndex int, fieldValues ...string) error {
	return fmt.Errorf("rule store is read-only")
}
