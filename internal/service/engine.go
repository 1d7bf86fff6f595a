package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/freeeve/polite-betrayal/adjudicator/internal/logger"
	"github.com/freeeve/polite-betrayal/adjudicator/internal/model"
	"github.com/freeeve/polite-betrayal/adjudicator/internal/repository"
	"github.com/freeeve/polite-betrayal/adjudicator/pkg/diplomacy"
)

// restoreEngine rebuilds the engine for a game from a state snapshot.
func restoreEngine(game *model.Game, stateJSON json.RawMessage) (*diplomacy.Game, error) {
	var st diplomacy.State
	if err := json.Unmarshal(stateJSON, &st); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	g, err := diplomacy.RestoreGame(st,
		diplomacy.WithMaxYears(game.MaxYears),
		diplomacy.WithLogger(logger.Engine(game.ID)),
	)
	if err != nil {
		return nil, fmt.Errorf("restore game %s: %w", game.ID, err)
	}
	return g, nil
}

// loadState returns the freshest snapshot of a game: the cached live state,
// then the pending phase's starting state, then the last resolved phase.
func loadState(ctx context.Context, cache repository.GameCache, phases repository.PhaseRepository, gameID string) (json.RawMessage, error) {
	state, err := cache.GetGameState(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("get cached state: %w", err)
	}
	if state != nil {
		return state, nil
	}
	current, err := phases.CurrentPhase(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return current.StateBefore, nil
	}
	all, err := phases.ListPhases(ctx, gameID)
	if err != nil {
		return nil, err
	}
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].StateAfter != nil {
			return all[i].StateAfter, nil
		}
	}
	return nil, ErrNoActivePhase
}

// findGame returns the game or ErrGameNotFound.
func findGame(ctx context.Context, games repository.GameRepository, gameID string) (*model.Game, error) {
	game, err := games.FindByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("find game: %w", err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// phaseDuration returns how long players get for a phase of the given type.
func phaseDuration(game *model.Game, phase diplomacy.Phase) time.Duration {
	raw := game.MovementDuration
	switch phase {
	case diplomacy.PhaseRetreat:
		raw = game.RetreatDuration
	case diplomacy.PhaseAdjustment:
		raw = game.BuildDuration
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

func hasPower(game *model.Game, power string) bool {
	for _, p := range game.Powers {
		if p == power {
			return true
		}
	}
	return false
}

func powerStrings(ps []diplomacy.Power) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}

// expectedPowers lists the powers that have something to order this phase.
func expectedPowers(g *diplomacy.Game) []string {
	var out []string
	for _, p := range g.ActivePowers() {
		if len(g.OrderableLocations(p)) > 0 {
			out = append(out, string(p))
		}
	}
	return out
}
