package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/freeeve/polite-betrayal/adjudicator/internal/model"
	"github.com/freeeve/polite-betrayal/adjudicator/internal/repository"
	"github.com/freeeve/polite-betrayal/adjudicator/pkg/diplomacy"
)

// recoveryConcurrency bounds how many games are rehydrated at once on startup.
const recoveryConcurrency = 8

// PhaseService orchestrates phase transitions: resolution, state advancement,
// and timer management for the async turn system.
type PhaseService struct {
	gameRepo    repository.GameRepository
	phaseRepo   repository.PhaseRepository
	cache       repository.GameCache
	broadcaster Broadcaster
	now         func() time.Time

	// gameLocks serializes resolution per game. The expiry listener, the
	// poller and early resolution can all fire for the same phase.
	gameLocks sync.Map
}

// NewPhaseService creates a PhaseService.
func NewPhaseService(
	gameRepo repository.GameRepository,
	phaseRepo repository.PhaseRepository,
	cache repository.GameCache,
	broadcaster Broadcaster,
) *PhaseService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &PhaseService{
		gameRepo:    gameRepo,
		phaseRepo:   phaseRepo,
		cache:       cache,
		broadcaster: broadcaster,
		now:         time.Now,
	}
}

// RecoverActiveGames rehydrates the cache for all active games from the
// phase history. Called on startup to restore state and timers lost with
// the cache.
func (s *PhaseService) RecoverActiveGames(ctx context.Context) error {
	games, err := s.gameRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active games: %w", err)
	}
	if len(games) == 0 {
		log.Info().Msg("No active games to recover")
		return nil
	}
	log.Info().Int("count", len(games)).Msg("Recovering active games after restart")

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(recoveryConcurrency)
	for i := range games {
		game := &games[i]
		eg.Go(func() error {
			s.recoverGame(ctx, game)
			return ctx.Err()
		})
	}
	return eg.Wait()
}

func (s *PhaseService) recoverGame(ctx context.Context, game *model.Game) {
	phase, err := s.phaseRepo.CurrentPhase(ctx, game.ID)
	if err != nil {
		log.Error().Err(err).Str("gameId", game.ID).Msg("Failed to get current phase during recovery")
		return
	}
	if phase == nil {
		log.Warn().Str("gameId", game.ID).Msg("Active game has no current phase, skipping")
		return
	}

	cached, err := s.cache.GetGameState(ctx, game.ID)
	if err != nil {
		log.Error().Err(err).Str("gameId", game.ID).Msg("Failed to read cached state")
		return
	}
	if cached == nil {
		if err := s.cache.SetGameState(ctx, game.ID, phase.StateBefore); err != nil {
			log.Error().Err(err).Str("gameId", game.ID).Msg("Failed to restore game state")
			return
		}
	}
	if s.now().Before(phase.Deadline) {
		if err := s.cache.SetTimer(ctx, game.ID, phase.Deadline); err != nil {
			log.Error().Err(err).Str("gameId", game.ID).Msg("Failed to restore timer")
		}
	}

	log.Info().Str("gameId", game.ID).Str("phase", phase.PhaseType).
		Int("year", phase.Year).Str("season", phase.Season).
		Time("deadline", phase.Deadline).
		Msg("Recovered game state")
}

// gameLock returns the mutex for a given game ID.
func (s *PhaseService) gameLock(gameID string) *sync.Mutex {
	v, _ := s.gameLocks.LoadOrStore(gameID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// ResolvePhase resolves the current phase if its deadline has passed.
func (s *PhaseService) ResolvePhase(ctx context.Context, gameID string) error {
	return s.resolvePhaseInternal(ctx, gameID, false)
}

// ResolvePhaseEarly resolves the current phase regardless of its deadline.
func (s *PhaseService) ResolvePhaseEarly(ctx context.Context, gameID string) error {
	return s.resolvePhaseInternal(ctx, gameID, true)
}

func (s *PhaseService) resolvePhaseInternal(ctx context.Context, gameID string, early bool) error {
	mu := s.gameLock(gameID)
	mu.Lock()
	defer mu.Unlock()

	game, err := findGame(ctx, s.gameRepo, gameID)
	if err != nil {
		return err
	}
	if game.Status != model.StatusActive {
		log.Info().Str("gameId", gameID).Str("status", game.Status).Msg("Skipping resolution for non-active game")
		return nil
	}

	phase, err := s.phaseRepo.CurrentPhase(ctx, gameID)
	if err != nil {
		return fmt.Errorf("get current phase: %w", err)
	}
	if phase == nil {
		return ErrNoActivePhase
	}
	if !early && s.now().Before(phase.Deadline) {
		log.Debug().Str("gameId", gameID).Time("deadline", phase.Deadline).Msg("Phase deadline not yet reached, skipping")
		return nil
	}

	log.Info().Str("gameId", gameID).Str("phaseId", phase.ID).
		Bool("early", early).Str("phaseType", phase.PhaseType).
		Int("year", phase.Year).Str("season", phase.Season).
		Msg("Resolving phase")

	stateJSON, err := s.cache.GetGameState(ctx, gameID)
	if err != nil {
		return fmt.Errorf("get cached state: %w", err)
	}
	if stateJSON == nil {
		stateJSON = phase.StateBefore
	}
	g, err := restoreEngine(game, stateJSON)
	if err != nil {
		return err
	}
	if early {
		ready, err := s.cache.ReadyPowers(ctx, gameID)
		if err != nil {
			return fmt.Errorf("ready powers: %w", err)
		}
		if !allReady(expectedPowers(g), ready) {
			log.Debug().Str("gameId", gameID).Strs("ready", ready).Msg("Not every power is ready, skipping early resolution")
			return nil
		}
	}

	staged, err := s.cache.GetAllOrders(ctx, gameID, game.Powers)
	if err != nil {
		return fmt.Errorf("get staged orders: %w", err)
	}
	orders := make(map[diplomacy.Power][]string, len(staged))
	for p, texts := range staged {
		orders[diplomacy.Power(p)] = texts
	}

	res, err := g.ResolveOrders(orders)
	if err != nil {
		return fmt.Errorf("resolve orders: %w", err)
	}
	if err := s.phaseRepo.SaveOrders(ctx, resultToModel(phase.ID, res)); err != nil {
		return fmt.Errorf("save orders: %w", err)
	}
	return s.advanceToNextPhase(ctx, game, phase, g, res)
}

func (s *PhaseService) advanceToNextPhase(
	ctx context.Context,
	game *model.Game,
	phase *model.Phase,
	g *diplomacy.Game,
	res *diplomacy.PhaseResult,
) error {
	stateAfterJSON, err := json.Marshal(res.State)
	if err != nil {
		return fmt.Errorf("marshal state after: %w", err)
	}
	if err := s.phaseRepo.ResolvePhase(ctx, phase.ID, stateAfterJSON); err != nil {
		return fmt.Errorf("resolve phase: %w", err)
	}

	if !g.Over() && g.Phase() == diplomacy.PhaseAdjustment && len(expectedPowers(g)) == 0 {
		if err := s.skipAdjustments(ctx, game, g); err != nil {
			return err
		}
	}

	resolved := map[string]any{
		"phase_id":  phase.ID,
		"year":      phase.Year,
		"season":    phase.Season,
		"type":      phase.PhaseType,
		"outcomes":  res.Outcomes,
		"rejected":  res.Rejected,
		"dislodged": res.Dislodged,
	}

	if g.Over() {
		return s.finishGame(ctx, game, g, resolved)
	}

	newStateJSON, err := json.Marshal(g.State())
	if err != nil {
		return fmt.Errorf("marshal new state: %w", err)
	}
	deadline := s.now().Add(phaseDuration(game, g.Phase()))
	if _, err := s.phaseRepo.CreatePhase(ctx, game.ID, g.Year(), string(g.Season()), string(g.Phase()), newStateJSON, deadline); err != nil {
		return fmt.Errorf("create next phase: %w", err)
	}

	if err := s.cache.ClearPhaseData(ctx, game.ID, game.Powers); err != nil {
		return fmt.Errorf("clear phase data: %w", err)
	}
	if err := s.cache.SetGameState(ctx, game.ID, newStateJSON); err != nil {
		return fmt.Errorf("set new state: %w", err)
	}
	if err := s.cache.SetTimer(ctx, game.ID, deadline); err != nil {
		return fmt.Errorf("set timer: %w", err)
	}

	log.Info().
		Str("gameId", game.ID).
		Str("season", string(g.Season())).
		Int("year", g.Year()).
		Str("phase", string(g.Phase())).
		Time("deadline", deadline).
		Msg("Game advanced to next phase")

	// Broadcast after the new phase exists so clients can fetch it immediately.
	s.broadcaster.BroadcastGameEvent(game.ID, EventPhaseResolved, resolved)
	s.broadcaster.BroadcastGameEvent(game.ID, EventPhaseChanged, map[string]any{
		"year":      g.Year(),
		"season":    string(g.Season()),
		"type":      string(g.Phase()),
		"deadline":  deadline.Format(time.RFC3339),
		"orderable": g.AllOrderableLocations(),
	})
	return nil
}

// skipAdjustments resolves an adjustment phase in which nobody can build or
// must disband. It is recorded with an immediate deadline and no orders, and
// still runs the end-of-year checks.
func (s *PhaseService) skipAdjustments(ctx context.Context, game *model.Game, g *diplomacy.Game) error {
	log.Info().Str("gameId", game.ID).Int("year", g.Year()).Msg("Skipping adjustment phase (no adjustments needed)")
	before, err := json.Marshal(g.State())
	if err != nil {
		return fmt.Errorf("marshal adjustment state: %w", err)
	}
	p, err := s.phaseRepo.CreatePhase(ctx, game.ID, g.Year(), string(g.Season()), string(g.Phase()), before, s.now())
	if err != nil {
		return fmt.Errorf("create adjustment phase: %w", err)
	}
	res, err := g.ResolveOrders(nil)
	if err != nil {
		return fmt.Errorf("skip adjustments: %w", err)
	}
	after, err := json.Marshal(res.State)
	if err != nil {
		return fmt.Errorf("marshal state after adjustments: %w", err)
	}
	if err := s.phaseRepo.ResolvePhase(ctx, p.ID, after); err != nil {
		return fmt.Errorf("resolve adjustment phase: %w", err)
	}
	return nil
}

func (s *PhaseService) finishGame(ctx context.Context, game *model.Game, g *diplomacy.Game, resolved map[string]any) error {
	winners := powerStrings(g.Winners())
	reason := "victory"
	if len(winners) == 0 {
		reason = "draw"
	}
	log.Info().Str("gameId", game.ID).Strs("winners", winners).Str("reason", reason).
		Int("year", g.Year()).Msg("Game ended")

	if err := s.gameRepo.SetFinished(ctx, game.ID, winners); err != nil {
		return fmt.Errorf("set finished: %w", err)
	}
	if err := s.cache.DeleteGameData(ctx, game.ID, game.Powers); err != nil {
		return fmt.Errorf("delete game data: %w", err)
	}
	s.broadcaster.BroadcastGameEvent(game.ID, EventPhaseResolved, resolved)
	s.broadcaster.BroadcastGameEvent(game.ID, EventGameEnded, map[string]any{
		"winners": winners,
		"reason":  reason,
		"year":    g.Year(),
	})
	return nil
}

// ListPhases returns a game's phase history.
func (s *PhaseService) ListPhases(ctx context.Context, gameID string) ([]model.Phase, error) {
	if _, err := findGame(ctx, s.gameRepo, gameID); err != nil {
		return nil, err
	}
	phases, err := s.phaseRepo.ListPhases(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if phases == nil {
		phases = []model.Phase{}
	}
	return phases, nil
}

// PhaseOrders returns the orders adjudicated in one phase of a game.
func (s *PhaseService) PhaseOrders(ctx context.Context, gameID, phaseID string) ([]model.Order, error) {
	phases, err := s.ListPhases(ctx, gameID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, p := range phases {
		if p.ID == phaseID {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrPhaseNotFound
	}
	orders, err := s.phaseRepo.OrdersByPhase(ctx, phaseID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// resultToModel flattens outcomes and rejections into order history rows.
func resultToModel(phaseID string, res *diplomacy.PhaseResult) []model.Order {
	out := make([]model.Order, 0, len(res.Outcomes)+len(res.Rejected))
	for _, o := range res.Outcomes {
		out = append(out, model.Order{
			PhaseID: phaseID,
			Power:   string(o.Power),
			Text:    o.Text,
			Result:  o.Result.String(),
			Note:    o.Note,
		})
	}
	for _, r := range res.Rejected {
		out = append(out, model.Order{
			PhaseID:  phaseID,
			Power:    string(r.Power),
			Text:     r.Text,
			Rejected: true,
			Reason:   r.Reason,
		})
	}
	return out
}
