package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/freeeve/polite-betrayal/adjudicator/internal/model"
)

const phaseColumns = `id, game_id, year, season, phase_type, state_before, state_after, deadline, resolved_at, created_at`

// PhaseRepo stores phases and the orders adjudicated in them.
type PhaseRepo struct {
	db *sql.DB
}

// NewPhaseRepo creates a PhaseRepo.
func NewPhaseRepo(db *sql.DB) *PhaseRepo {
	return &PhaseRepo{db: db}
}

// prefixed qualifies each column in cols with alias.
func prefixed(alias, cols string) string {
	parts := strings.Split(cols, ", ")
	for i, c := range parts {
		parts[i] = alias + "." + c
	}
	return strings.Join(parts, ", ")
}

func scanPhase(row rowScanner) (*model.Phase, error) {
	var p model.Phase
	var before, after []byte
	if err := row.Scan(&p.ID, &p.GameID, &p.Year, &p.Season, &p.PhaseType,
		&before, &after, &p.Deadline, &p.ResolvedAt, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.StateBefore = json.RawMessage(before)
	if after != nil {
		p.StateAfter = json.RawMessage(after)
	}
	return &p, nil
}

func (r *PhaseRepo) queryPhases(ctx context.Context, query string, args ...any) ([]model.Phase, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phases []model.Phase
	for rows.Next() {
		p, err := scanPhase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan phase: %w", err)
		}
		phases = append(phases, *p)
	}
	return phases, rows.Err()
}

// CreatePhase inserts an open phase for gameID.
func (r *PhaseRepo) CreatePhase(ctx context.Context, gameID string, year int, season, phaseType string, stateBefore json.RawMessage, deadline time.Time) (*model.Phase, error) {
	p, err := scanPhase(r.db.QueryRowContext(ctx,
		`INSERT INTO phases (game_id, year, season, phase_type, state_before, deadline)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+phaseColumns,
		gameID, year, season, phaseType, []byte(stateBefore), deadline,
	))
	if err != nil {
		return nil, fmt.Errorf("create phase: %w", err)
	}
	return p, nil
}

// CurrentPhase returns the newest unresolved phase of a game, or nil.
func (r *PhaseRepo) CurrentPhase(ctx context.Context, gameID string) (*model.Phase, error) {
	p, err := scanPhase(r.db.QueryRowContext(ctx,
		`SELECT `+phaseColumns+` FROM phases
		 WHERE game_id = $1 AND resolved_at IS NULL
		 ORDER BY created_at DESC LIMIT 1`, gameID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("current phase: %w", err)
	}
	return p, nil
}

// ListPhases returns a game's phases in play order: by year, then spring
// before fall, then movement, retreat, adjustment.
func (r *PhaseRepo) ListPhases(ctx context.Context, gameID string) ([]model.Phase, error) {
	phases, err := r.queryPhases(ctx,
		`SELECT `+phaseColumns+` FROM phases WHERE game_id = $1
		 ORDER BY year,
		   CASE season WHEN 'spring' THEN 1 WHEN 'fall' THEN 2 ELSE 3 END,
		   CASE phase_type WHEN 'movement' THEN 1 WHEN 'retreat' THEN 2 WHEN 'adjustment' THEN 3 ELSE 4 END,
		   created_at`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list phases: %w", err)
	}
	return phases, nil
}

// ListExpired returns, per active game, the open phase whose deadline has passed.
func (r *PhaseRepo) ListExpired(ctx context.Context) ([]model.Phase, error) {
	phases, err := r.queryPhases(ctx,
		`SELECT DISTINCT ON (p.game_id) `+prefixed("p", phaseColumns)+`
		 FROM phases p JOIN games g ON g.id = p.game_id
		 WHERE p.resolved_at IS NULL AND p.deadline < now() AND g.status = 'active'
		 ORDER BY p.game_id, p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expired phases: %w", err)
	}
	return phases, nil
}

// ResolvePhase closes a phase with the state it produced.
func (r *PhaseRepo) ResolvePhase(ctx context.Context, phaseID string, stateAfter json.RawMessage) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE phases SET state_after = $1, resolved_at = now()
		 WHERE id = $2 AND resolved_at IS NULL`,
		[]byte(stateAfter), phaseID,
	)
	if err != nil {
		return fmt.Errorf("resolve phase: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("resolve phase %s: already resolved or missing", phaseID)
	}
	return nil
}

// SaveOrders bulk-loads a phase's order history with COPY. Rows keep the
// order they were given in.
func (r *PhaseRepo) SaveOrders(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		pq.CopyIn("orders", "phase_id", "seq", "power", "text", "result", "note", "rejected", "reason"))
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}
	for i, o := range orders {
		if _, err := stmt.ExecContext(ctx, o.PhaseID, i, o.Power, o.Text,
			nullStr(o.Result), nullStr(o.Note), o.Rejected, nullStr(o.Reason)); err != nil {
			stmt.Close()
			return fmt.Errorf("copy order %q: %w", o.Text, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("close copy: %w", err)
	}
	return tx.Commit()
}

// OrdersByPhase returns a phase's orders grouped by power.
func (r *PhaseRepo) OrdersByPhase(ctx context.Context, phaseID string) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, phase_id, power, text, result, note, rejected, reason, created_at
		 FROM orders WHERE phase_id = $1 ORDER BY power, seq`, phaseID,
	)
	if err != nil {
		return nil, fmt.Errorf("orders by phase: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		var result, note, reason sql.NullString
		if err := rows.Scan(&o.ID, &o.PhaseID, &o.Power, &o.Text, &result, &note, &o.Rejected, &reason, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Result, o.Note, o.Reason = result.String, note.String, reason.String
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
