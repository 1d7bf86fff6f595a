package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/polite-betrayal/adjudicator/internal/model"
	"github.com/freeeve/polite-betrayal/adjudicator/internal/repository"
	"github.com/freeeve/polite-betrayal/adjudicator/pkg/diplomacy"
)

// OrderSubmission is the request payload for submitting orders.
type OrderSubmission struct {
	Orders []string `json:"orders"`
}

// OrderFeedback tells the submitter whether one order would be accepted
// against the current board. Orders that fail here are still staged and
// show up as rejected in the phase history.
type OrderFeedback struct {
	Order  string `json:"order"`
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// ReadyStatus is the ready set after a power marked ready.
type ReadyStatus struct {
	Ready    int  `json:"ready_count"`
	Total    int  `json:"total_powers"`
	Resolved bool `json:"resolved"`
}

// Resolver resolves the current phase ahead of its deadline.
type Resolver interface {
	ResolvePhaseEarly(ctx context.Context, gameID string) error
}

// OrderService stages orders and tracks readiness for the current phase.
type OrderService struct {
	gameRepo    repository.GameRepository
	phaseRepo   repository.PhaseRepository
	cache       repository.GameCache
	resolver    Resolver
	broadcaster Broadcaster
}

// NewOrderService creates an OrderService.
func NewOrderService(gameRepo repository.GameRepository, phaseRepo repository.PhaseRepository, cache repository.GameCache, resolver Resolver, broadcaster Broadcaster) *OrderService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &OrderService{
		gameRepo:    gameRepo,
		phaseRepo:   phaseRepo,
		cache:       cache,
		resolver:    resolver,
		broadcaster: broadcaster,
	}
}

// SubmitOrders replaces power's staged orders for the current phase and
// reports how each one fares against the board as it stands.
func (s *OrderService) SubmitOrders(ctx context.Context, gameID, power string, orders []string) ([]OrderFeedback, error) {
	game, g, err := s.activeEngine(ctx, gameID, power)
	if err != nil {
		return nil, err
	}

	staged := make([]string, 0, len(orders))
	feedback := make([]OrderFeedback, 0, len(orders))
	for _, text := range orders {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		staged = append(staged, text)
		fb := OrderFeedback{Order: text, Valid: true}
		o, err := diplomacy.ParseOrder(text, diplomacy.Power(power))
		if err == nil {
			err = g.ValidateOrder(o)
		}
		if err != nil {
			fb.Valid = false
			fb.Reason = diplomacy.RejectReason(err)
		}
		feedback = append(feedback, fb)
	}

	if err := s.cache.SetOrders(ctx, game.ID, power, staged); err != nil {
		return nil, fmt.Errorf("stage orders: %w", err)
	}

	log.Debug().Str("gameId", game.ID).Str("power", power).
		Int("count", len(staged)).Str("phase", g.PhaseName()).Msg("Orders staged")
	s.broadcaster.BroadcastGameEvent(game.ID, EventOrdersSubmitted, map[string]any{
		"power": power,
		"count": len(staged),
	})
	return feedback, nil
}

// StagedOrders returns what power has staged for the current phase.
func (s *OrderService) StagedOrders(ctx context.Context, gameID, power string) ([]string, error) {
	if _, _, err := s.activeEngine(ctx, gameID, power); err != nil {
		return nil, err
	}
	orders, err := s.cache.GetOrders(ctx, gameID, power)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []string{}
	}
	return orders, nil
}

// MarkReady adds power to the ready set. Once every power with something
// to order is ready the phase is resolved without waiting for the deadline.
func (s *OrderService) MarkReady(ctx context.Context, gameID, power string) (*ReadyStatus, error) {
	game, g, err := s.activeEngine(ctx, gameID, power)
	if err != nil {
		return nil, err
	}
	if err := s.cache.MarkReady(ctx, game.ID, power); err != nil {
		return nil, fmt.Errorf("mark ready: %w", err)
	}
	ready, err := s.cache.ReadyPowers(ctx, game.ID)
	if err != nil {
		return nil, fmt.Errorf("ready powers: %w", err)
	}

	expected := expectedPowers(g)
	status := &ReadyStatus{Ready: len(ready), Total: len(expected)}
	s.broadcaster.BroadcastGameEvent(game.ID, EventPlayerReady, map[string]any{
		"power":        power,
		"ready_count":  status.Ready,
		"total_powers": status.Total,
	})

	if allReady(expected, ready) {
		log.Info().Str("gameId", game.ID).Msg("All powers ready, resolving phase early")
		if err := s.resolver.ResolvePhaseEarly(ctx, game.ID); err != nil {
			return nil, fmt.Errorf("resolve early: %w", err)
		}
		status.Resolved = true
	}
	return status, nil
}

// activeEngine loads a game that is still in play together with its engine,
// after checking that power has a seat in it.
func (s *OrderService) activeEngine(ctx context.Context, gameID, power string) (*model.Game, *diplomacy.Game, error) {
	game, err := findGame(ctx, s.gameRepo, gameID)
	if err != nil {
		return nil, nil, err
	}
	if game.Status != model.StatusActive {
		return nil, nil, ErrGameFinished
	}
	if !hasPower(game, power) {
		return nil, nil, ErrWrongPower
	}
	raw, err := s.cache.GetGameState(ctx, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("get cached state: %w", err)
	}
	if raw == nil {
		phase, err := s.phaseRepo.CurrentPhase(ctx, gameID)
		if err != nil {
			return nil, nil, err
		}
		if phase == nil {
			return nil, nil, ErrNoActivePhase
		}
		raw = phase.StateBefore
	}
	g, err := restoreEngine(game, raw)
	if err != nil {
		return nil, nil, err
	}
	return game, g, nil
}

func allReady(expected, ready []string) bool {
	set := make(map[string]bool, len(ready))
	for _, p := range ready {
		set[p] = true
	}
	for _, p := range expected {
		if !set[p] {
			return false
		}
	}
	return true
}
