package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/freeeve/polite-betrayal/adjudicator/internal/repository"
	redisrepo "github.com/freeeve/polite-betrayal/adjudicator/internal/repository/redis"
)

// DeadlineResolver resolves a game's phase once its deadline has passed.
type DeadlineResolver interface {
	ResolvePhase(ctx context.Context, gameID string) error
}

// expiredChannel carries the names of keys Redis has expired, on every db.
const expiredChannel = "__keyevent@*__:expired"

// TimerListener resolves phases when their deadlines pass. Redis expiry
// events on the per-game timer key give prompt resolution; a poller over
// the phase table catches anything the events miss, such as deadlines
// that passed while the server was down.
type TimerListener struct {
	rdb          *redis.Client
	resolver     DeadlineResolver
	phaseRepo    repository.PhaseRepository
	pollInterval time.Duration
	parallel     int
}

// NewTimerListener creates a TimerListener. With a nil rdb only the poller runs.
func NewTimerListener(rdb *redis.Client, resolver DeadlineResolver, phaseRepo repository.PhaseRepository) *TimerListener {
	return &TimerListener{
		rdb:          rdb,
		resolver:     resolver,
		phaseRepo:    phaseRepo,
		pollInterval: 10 * time.Second,
		parallel:     4,
	}
}

// Start blocks until ctx is done.
func (t *TimerListener) Start(ctx context.Context) {
	if t.rdb != nil {
		go t.listenKeyspace(ctx)
	}
	t.poll(ctx)
}

func (t *TimerListener) listenKeyspace(ctx context.Context) {
	sub := t.rdb.PSubscribe(ctx, expiredChannel)
	defer sub.Close()

	log.Info().Str("channel", expiredChannel).Msg("Listening for expired phase timers")
	events := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			t.handleExpiry(ctx, msg.Payload)
		}
	}
}

func (t *TimerListener) poll(ctx context.Context) {
	tick := time.NewTicker(t.pollInterval)
	defer tick.Stop()

	log.Info().Dur("interval", t.pollInterval).Msg("Deadline poller started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Deadline poller stopped")
			return
		case <-tick.C:
			t.checkExpiredPhases(ctx)
		}
	}
}

// checkExpiredPhases resolves every overdue phase, a few games at a time.
// One game failing does not hold up the others.
func (t *TimerListener) checkExpiredPhases(ctx context.Context) {
	overdue, err := t.phaseRepo.ListExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list expired phases")
		return
	}
	if len(overdue) == 0 {
		return
	}
	log.Info().Int("count", len(overdue)).Msg("Poller found overdue phases")

	var g errgroup.Group
	g.SetLimit(t.parallel)
	for _, p := range overdue {
		g.Go(func() error {
			l := log.With().Str("gameId", p.GameID).Int("year", p.Year).
				Str("season", p.Season).Str("phase", p.PhaseType).Logger()
			l.Info().Time("deadline", p.Deadline).Msg("Resolving overdue phase")
			if err := t.resolver.ResolvePhase(ctx, p.GameID); err != nil {
				l.Error().Err(err).Msg("Overdue phase resolution failed")
			}
			return nil
		})
	}
	g.Wait()
}

// handleExpiry resolves the game whose timer key expired. Other keys are ignored.
func (t *TimerListener) handleExpiry(ctx context.Context, key string) {
	gameID, ok := redisrepo.TimerGameID(key)
	if !ok {
		return
	}
	log.Info().Str("gameId", gameID).Msg("Phase timer expired")
	if err := t.resolver.ResolvePhase(ctx, gameID); err != nil {
		log.Error().Err(err).Str("gameId", gameID).Msg("Phase resolution failed after timer expiry")
	}
}
