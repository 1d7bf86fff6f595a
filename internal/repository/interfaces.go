package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/freeeve/polite-betrayal/adjudicator/internal/model"
)

// GameRepository defines game record operations.
type GameRepository interface {
	Create(ctx context.Context, g *model.Game) error
	FindByID(ctx context.Context, id string) (*model.Game, error)
	ListActive(ctx context.Context) ([]model.Game, error)
	SetFinished(ctx context.Context, gameID string, winners []string) error
}

// PhaseRepository defines phase and order history operations.
type PhaseRepository interface {
	CreatePhase(ctx context.Context, gameID string, year int, season, phaseType string, stateBefore json.RawMessage, deadline time.Time) (*model.Phase, error)
	CurrentPhase(ctx context.Context, gameID string) (*model.Phase, error)
	ListPhases(ctx context.Context, gameID string) ([]model.Phase, error)
	ResolvePhase(ctx context.Context, phaseID string, stateAfter json.RawMessage) error
	SaveOrders(ctx context.Context, orders []model.Order) error
	OrdersByPhase(ctx context.Context, phaseID string) ([]model.Order, error)
	ListExpired(ctx context.Context) ([]model.Phase, error)
}

// GameCache defines live game operations: the current engine snapshot,
// orders staged per power, the ready set and the deadline timer.
type GameCache interface {
	SetGameState(ctx context.Context, gameID string, state json.RawMessage) error
	GetGameState(ctx context.Context, gameID string) (json.RawMessage, error)
	SetOrders(ctx context.Context, gameID, power string, orders []string) error
	GetOrders(ctx context.Context, gameID, power string) ([]string, error)
	GetAllOrders(ctx context.Context, gameID string, powers []string) (map[string][]string, error)
	MarkReady(ctx context.Context, gameID, power string) error
	ReadyPowers(ctx context.Context, gameID string) ([]string, error)
	SetTimer(ctx context.Context, gameID string, deadline time.Time) error
	ClearTimer(ctx context.Context, gameID string) error
	ClearPhaseData(ctx context.Context, gameID string, powers []string) error
	DeleteGameData(ctx context.Context, gameID string, powers []string) error
}
