package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"github.com/freeeve/polite-betrayal/adjudicator/internal/model"
	"github.com/freeeve/polite-betrayal/adjudicator/internal/repository"
	"github.com/freeeve/polite-betrayal/adjudicator/pkg/diplomacy"
)

// SeatIssuer signs the token that lets a player order one power.
type SeatIssuer interface {
	IssueSeat(gameID, power string) (string, error)
}

// GameDefaults are applied to games created without explicit settings.
type GameDefaults struct {
	MovementDuration time.Duration
	RetreatDuration  time.Duration
	BuildDuration    time.Duration
	MaxYears         int
}

// CreateGameInput describes a new game. A nil Seed picks one at random.
type CreateGameInput struct {
	Name      string  `json:"name"`
	NumPowers int     `json:"num_powers"`
	Seed      *uint64 `json:"seed,omitempty"`
	MaxYears  int     `json:"max_years,omitempty"`
}

// GameService handles game creation and read-only game queries.
type GameService struct {
	gameRepo  repository.GameRepository
	phaseRepo repository.PhaseRepository
	cache     repository.GameCache
	seats     SeatIssuer
	defaults  GameDefaults
	now       func() time.Time
}

// NewGameService creates a GameService.
func NewGameService(gameRepo repository.GameRepository, phaseRepo repository.PhaseRepository, cache repository.GameCache, seats SeatIssuer, defaults GameDefaults) *GameService {
	return &GameService{
		gameRepo:  gameRepo,
		phaseRepo: phaseRepo,
		cache:     cache,
		seats:     seats,
		defaults:  defaults,
		now:       time.Now,
	}
}

// CreateGame sets up a random subset of powers, stores the game and its
// first phase, starts the deadline timer and issues one seat per power.
func (s *GameService) CreateGame(ctx context.Context, in CreateGameInput) (*model.Game, []model.Seat, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	maxYears := in.MaxYears
	if maxYears <= 0 {
		maxYears = s.defaults.MaxYears
	}
	seed := rand.Uint64()
	if in.Seed != nil {
		seed = *in.Seed
	}

	g, err := diplomacy.NewGame(diplomacy.WithSeed(seed), diplomacy.WithMaxYears(maxYears))
	if err != nil {
		return nil, nil, fmt.Errorf("new game: %w", err)
	}
	if _, err := g.SetupGame(in.NumPowers); err != nil {
		if errors.Is(err, diplomacy.ErrPowerCount) {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, nil, fmt.Errorf("setup game: %w", err)
	}

	game := &model.Game{
		Name:             name,
		NumPowers:        in.NumPowers,
		Seed:             seed,
		Powers:           powerStrings(g.ActivePowers()),
		MovementDuration: s.defaults.MovementDuration.String(),
		RetreatDuration:  s.defaults.RetreatDuration.String(),
		BuildDuration:    s.defaults.BuildDuration.String(),
		MaxYears:         maxYears,
	}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, nil, err
	}

	stateJSON, err := json.Marshal(g.State())
	if err != nil {
		return nil, nil, fmt.Errorf("marshal initial state: %w", err)
	}
	deadline := s.now().Add(phaseDuration(game, g.Phase()))
	if _, err := s.phaseRepo.CreatePhase(ctx, game.ID, g.Year(), string(g.Season()), string(g.Phase()), stateJSON, deadline); err != nil {
		return nil, nil, fmt.Errorf("create first phase: %w", err)
	}
	if err := s.cache.SetGameState(ctx, game.ID, stateJSON); err != nil {
		return nil, nil, fmt.Errorf("set game state: %w", err)
	}
	if err := s.cache.SetTimer(ctx, game.ID, deadline); err != nil {
		return nil, nil, fmt.Errorf("set timer: %w", err)
	}

	seats := make([]model.Seat, 0, len(game.Powers))
	for _, p := range game.Powers {
		token, err := s.seats.IssueSeat(game.ID, p)
		if err != nil {
			return nil, nil, fmt.Errorf("issue seat for %s: %w", p, err)
		}
		seats = append(seats, model.Seat{Power: p, Token: token})
	}

	log.Info().Str("gameId", game.ID).Strs("powers", game.Powers).
		Uint64("seed", seed).Time("deadline", deadline).Msg("Game created")
	return game, seats, nil
}

// GetGame returns a game record.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	return findGame(ctx, s.gameRepo, gameID)
}

// State returns the current engine snapshot of a game. Finished games
// report the state their last phase ended in.
func (s *GameService) State(ctx context.Context, gameID string) (*diplomacy.State, error) {
	if _, err := findGame(ctx, s.gameRepo, gameID); err != nil {
		return nil, err
	}
	raw, err := loadState(ctx, s.cache, s.phaseRepo, gameID)
	if err != nil {
		return nil, err
	}
	var st diplomacy.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return &st, nil
}

// MapText renders every region of the game board.
func (s *GameService) MapText(ctx context.Context, gameID string) (string, error) {
	g, err := s.engine(ctx, gameID)
	if err != nil {
		return "", err
	}
	return g.Visualize(), nil
}

// Orderable returns the regions power may order in the current phase.
func (s *GameService) Orderable(ctx context.Context, gameID, power string) ([]string, error) {
	g, err := s.engine(ctx, gameID)
	if err != nil {
		return nil, err
	}
	locs := g.OrderableLocations(diplomacy.Power(power))
	if locs == nil {
		locs = []string{}
	}
	return locs, nil
}

func (s *GameService) engine(ctx context.Context, gameID string) (*diplomacy.Game, error) {
	game, err := findGame(ctx, s.gameRepo, gameID)
	if err != nil {
		return nil, err
	}
	raw, err := loadState(ctx, s.cache, s.phaseRepo, gameID)
	if err != nil {
		return nil, err
	}
	return restoreEngine(game, raw)
}
