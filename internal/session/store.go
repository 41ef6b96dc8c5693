// internal/session/store.go

// Package session persists generated hypotheses keyed by session ID. The
// engine treats this store as an external collaborator: it only ever calls
// SaveHypotheses and never depends on the persistence format beyond the
// JSON contract of the Hypothesis schema.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/triage-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrSessionNotFound is returned when loading a session that was never
// written.
var ErrSessionNotFound = errors.New("session not found")

// Store is the write contract the engine relies on, plus the read side the
// downstream evidence evaluation uses.
type Store interface {
	SaveHypotheses(ctx context.Context, sessionID string, hyps []schemas.Hypothesis) error
	LoadHypotheses(ctx context.Context, sessionID string) ([]schemas.Hypothesis, error)
}

// DBPool abstracts the pgxpool.Pool so the store can be mocked in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is the production implementation, backed by a single
// sessions table with a JSONB hypotheses payload.
type PostgresStore struct {
	pool DBPool
	log  *zap.Logger
}

// NewPostgresStore verifies the connection and returns a store.
func NewPostgresStore(ctx context.Context, pool DBPool, logger *zap.Logger) (*PostgresStore, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{
		pool: pool,
		log:  logger.Named("session-store"),
	}, nil
}

// EnsureSchema creates the sessions table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS triage_sessions (
			session_id TEXT PRIMARY KEY,
			hypotheses JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure session schema: %w", err)
	}
	return nil
}

// SaveHypotheses upserts the full hypothesis list for a session. The
// payload is written atomically as one JSONB value; there is no partial
// update of individual hypotheses.
func (s *PostgresStore) SaveHypotheses(ctx context.Context, sessionID string, hyps []schemas.Hypothesis) error {
	if sessionID == "" {
		return fmt.Errorf("session ID must not be empty")
	}

	payload, err := json.Marshal(hyps)
	if err != nil {
		return fmt.Errorf("failed to marshal hypotheses: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO triage_sessions (session_id, hypotheses, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (session_id) DO UPDATE SET
			hypotheses = EXCLUDED.hypotheses,
			updated_at = EXCLUDED.updated_at;
	`, sessionID, payload)
	if err != nil {
		return fmt.Errorf("failed to persist session %s: %w", sessionID, err)
	}

	s.log.Debug("Persisted session hypotheses.", zap.String("session_id", sessionID), zap.Int("count", len(hyps)))
	return nil
}

// LoadHypotheses reads back the hypothesis list for a session.
func (s *PostgresStore) LoadHypotheses(ctx context.Context, sessionID string) ([]schemas.Hypothesis, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT hypotheses FROM triage_sessions WHERE session_id = $1;
	`, sessionID).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	var hyps []schemas.Hypothesis
	if err := json.Unmarshal(payload, &hyps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hypotheses for session %s: %w", sessionID, err)
	}
	return hyps, nil
}
