package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cardquest/duel-server-go/internal/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS duel_games (
	game_id    TEXT PRIMARY KEY,
	state      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore persists game documents in a single-row-per-game table.
// The UPSERT makes each save atomic with respect to a single game.
type PostgresStore struct {
	pool    *pgxpool.Pool
	handler game.EventHandler
	logger  *zap.Logger
}

// NewPostgresStore connects to the database and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	logger.Info("postgres game store initialized",
		zap.Int32("total_conns", pool.Stat().TotalConns()),
	)
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// SetEventHandler attaches a game-event handler to every manager this
// store loads.
func (s *PostgresStore) SetEventHandler(handler game.EventHandler) {
	s.handler = handler
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Save upserts the manager's full state document.
func (s *PostgresStore) Save(ctx context.Context, tm *game.TurnManager) error {
	doc, err := encodeState(tm.Snapshot())
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO duel_games (game_id, state, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (game_id) DO UPDATE SET state = EXCLUDED.state, updated_at = now()`,
		tm.GameID(), doc,
	)
	if err != nil {
		return fmt.Errorf("failed to save game %s: %w", tm.GameID(), err)
	}
	return nil
}

// Load reconstructs a TurnManager from the stored document.
func (s *PostgresStore) Load(ctx context.Context, gameID string) (*game.TurnManager, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT state FROM duel_games WHERE game_id = $1`, gameID,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", gameID, err)
	}

	state, err := decodeState(gameID, doc)
	if err != nil {
		return nil, err
	}
	tm := game.Restore(state, s.logger)
	if s.handler != nil {
		tm.SetEventHandler(s.handler)
	}
	return tm, nil
}

// Delete removes a game's saved state.
func (s *PostgresStore) Delete(ctx context.Context, gameID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM duel_games WHERE game_id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("failed to delete game %s: %w", gameID, err)
	}
	return nil
}

// List returns every stored game id.
func (s *PostgresStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT game_id FROM duel_games ORDER BY game_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan game id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
