package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/freeeve/polite-betrayal/adjudicator/internal/model"
)

// GameRepo stores game records.
type GameRepo struct {
	db *sql.DB
}

// NewGameRepo creates a GameRepo.
func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{db: db}
}

const gameColumns = `id, name, status, num_powers, seed, powers, winners,
	movement_duration, retreat_duration, build_duration, max_years, created_at, finished_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*model.Game, error) {
	var g model.Game
	var seed int64
	err := row.Scan(&g.ID, &g.Name, &g.Status, &g.NumPowers, &seed,
		pq.Array(&g.Powers), pq.Array(&g.Winners),
		&g.MovementDuration, &g.RetreatDuration, &g.BuildDuration, &g.MaxYears,
		&g.CreatedAt, &g.FinishedAt)
	if err != nil {
		return nil, err
	}
	g.Seed = uint64(seed)
	return &g, nil
}

// Create inserts a game and fills in its generated id, status and creation time.
func (r *GameRepo) Create(ctx context.Context, g *model.Game) error {
	// BIGINT is signed; the seed round-trips through its bit pattern.
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO games (name, num_powers, seed, powers, movement_duration, retreat_duration, build_duration, max_years)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, status, created_at`,
		g.Name, g.NumPowers, int64(g.Seed), pq.Array(g.Powers),
		g.MovementDuration, g.RetreatDuration, g.BuildDuration, g.MaxYears,
	).Scan(&g.ID, &g.Status, &g.CreatedAt)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	return nil
}

// FindByID returns a game, or nil if it does not exist.
func (r *GameRepo) FindByID(ctx context.Context, id string) (*model.Game, error) {
	g, err := scanGame(r.db.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find game: %w", err)
	}
	return g, nil
}

// ListActive returns every game still in play.
func (r *GameRepo) ListActive(ctx context.Context) ([]model.Game, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE status = $1 ORDER BY created_at`, model.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active games: %w", err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

// SetFinished marks a game finished with its winners. An empty list records a draw.
func (r *GameRepo) SetFinished(ctx context.Context, gameID string, winners []string) error {
	if winners == nil {
		winners = []string{}
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE games SET status = $1, winners = $2, finished_at = now() WHERE id = $3`,
		model.StatusFinished, pq.Array(winners), gameID)
	if err != nil {
		return fmt.Errorf("set game finished: %w", err)
	}
	return nil
}
