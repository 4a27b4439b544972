package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nearspot/business-discovery/internal/adapters/events"
	"github.com/nearspot/business-discovery/internal/domain/entities"
	"github.com/nearspot/business-discovery/internal/domain/providers"
	"github.com/nearspot/business-discovery/internal/domain/repositories"
	"github.com/nearspot/business-discovery/internal/infrastructure/observability"
)

const trackWriteTimeout = 5 * time.Second

// TrackingService accepts interaction events and persists them off the
// request path. The queue is bounded; under sustained backpressure the
// oldest pending event is dropped so tracking never blocks and never
// grows without bound.
type TrackingService struct {
	interactions repositories.InteractionRepository
	trending     *TrendingService
	bus          providers.EventBus
	metrics      *observability.Metrics
	clock        func() time.Time

	queue chan *entities.Interaction
	wg    sync.WaitGroup
	once  sync.Once
}

// NewTrackingService creates a new tracking service and starts its
// background worker.
func NewTrackingService(
	interactions repositories.InteractionRepository,
	trending *TrendingService,
	bus providers.EventBus,
	metrics *observability.Metrics,
	queueSize int,
) *TrackingService {
	if queueSize < 1 {
		queueSize = 1
	}

	s := &TrackingService{
		interactions: interactions,
		trending:     trending,
		bus:          bus,
		metrics:      metrics,
		clock:        time.Now,
		queue:        make(chan *entities.Interaction, queueSize),
	}

	s.wg.Add(1)
	go s.worker()
	return s
}

// AnonymousUserID derives a stable pseudonymous identity for clients
// that do not supply one.
func AnonymousUserID(userAgent, ip string) string {
	sum := sha256.Sum256([]byte(userAgent + ":" + ip))
	return hex.EncodeToString(sum[:])[:16]
}

// Track validates and enqueues an interaction. It returns as soon as
// the event is accepted; persistence happens in the background and its
// failure never reaches the caller.
func (s *TrackingService) Track(ctx context.Context, interaction *entities.Interaction, dwellSeconds int) error {
	if interaction.ID == "" {
		interaction.ID = uuid.New().String()
	}
	if interaction.Timestamp.IsZero() {
		interaction.Timestamp = s.clock()
	}
	if interaction.ImplicitRating == 0 {
		interaction.ImplicitRating = entities.ImplicitRatingFor(interaction.Kind, dwellSeconds)
	}

	if err := interaction.Validate(); err != nil {
		return err
	}

	s.enqueue(ctx, interaction)
	return nil
}

func (s *TrackingService) enqueue(ctx context.Context, interaction *entities.Interaction) {
	for {
		select {
		case s.queue <- interaction:
			return
		default:
		}

		// Queue full: evict the oldest pending event and retry.
		select {
		case dropped := <-s.queue:
			observability.RecordTrackDropped(ctx, s.metrics)
			observability.LoggerFromContext(ctx).Warn().
				Str("interaction_id", dropped.ID).
				Msg("tracking queue full, dropped oldest event")
		default:
		}
	}
}

func (s *TrackingService) worker() {
	defer s.wg.Done()

	for interaction := range s.queue {
		// Each write gets a fresh deadline; the originating request
		// context is long gone by the time we get here.
		ctx, cancel := context.WithTimeout(context.Background(), trackWriteTimeout)
		s.persist(ctx, interaction)
		cancel()
	}
}

func (s *TrackingService) persist(ctx context.Context, interaction *entities.Interaction) {
	logger := observability.GetLogger()

	if err := s.interactions.Record(ctx, interaction); err != nil {
		logger.Warn().Err(err).Str("interaction_id", interaction.ID).Msg("failed to record interaction")
	}

	if interaction.Kind == entities.InteractionSearch {
		if err := s.trending.Record(ctx, interaction.Query); err != nil {
			logger.Warn().Err(err).Str("query", interaction.Query).Msg("failed to record trend")
		}
	}

	if s.bus != nil {
		if err := s.bus.Publish(ctx, events.InteractionsChannel, interaction); err != nil {
			logger.Warn().Err(err).Str("interaction_id", interaction.ID).Msg("failed to publish interaction")
		}
	}
}

// Close drains the queue and stops the worker.
func (s *TrackingService) Close() {
	s.once.Do(func() {
		close(s.queue)
	})
	s.wg.Wait()
}
