package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/nearspot/business-discovery/internal/domain/entities"
	"github.com/nearspot/business-discovery/internal/domain/repositories"
	redisclient "github.com/nearspot/business-discovery/internal/infrastructure/clients/redis"
	"github.com/nearspot/business-discovery/pkg/config"
	apperrors "github.com/nearspot/business-discovery/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

const (
	userInteractionsKeyFmt     = "user_interactions:%s"
	businessInteractionsKeyFmt = "business_interactions:%s"
	popularSearchesKey         = "popular_searches"
	popularSearchesSeenKey     = "popular_searches:last_seen"

	defaultHistoryLimit = 100
)

// incrementTrendScript folds the elapsed decay into the stored count
// and bumps it by one in a single atomic step.
var incrementTrendScript = redis.NewScript(`
local cur = tonumber(redis.call('ZSCORE', KEYS[1], ARGV[1]) or '0')
local last = tonumber(redis.call('HGET', KEYS[2], ARGV[1]) or ARGV[2])
local now = tonumber(ARGV[2])
local lambda = tonumber(ARGV[3])
local decayed = cur * math.exp(-lambda * math.max(now - last, 0))
redis.call('ZADD', KEYS[1], decayed + 1, ARGV[1])
redis.call('HSET', KEYS[2], ARGV[1], ARGV[2])
return 1
`)

// RedisInteractionStore is the Redis-backed append-only interaction
// log. Every operation carries a bounded deadline and runs behind a
// circuit breaker so an unreachable backend fails fast into the
// caller's degraded path instead of stalling scoring requests.
type RedisInteractionStore struct {
	client         *redisclient.Client
	breaker        *gobreaker.CircuitBreaker
	timeout        time.Duration
	ttl            time.Duration
	trendLambda    float64
	pruneThreshold float64
	clock          func() time.Time
}

var _ repositories.InteractionRepository = (*RedisInteractionStore)(nil)

// NewRedisInteractionStore creates a new Redis interaction store
func NewRedisInteractionStore(client *redisclient.Client, cfg *config.RecommendationConfig) *RedisInteractionStore {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "interaction-store",
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &RedisInteractionStore{
		client:         client,
		breaker:        breaker,
		timeout:        time.Duration(cfg.StoreTimeoutSeconds) * time.Second,
		ttl:            time.Duration(cfg.InteractionTTLDays) * 24 * time.Hour,
		trendLambda:    math.Ln2 / (cfg.TrendHalfLifeHours * 3600),
		pruneThreshold: cfg.TrendPruneThreshold,
		clock:          time.Now,
	}
}

// WithClock overrides the store clock; used by tests.
func (s *RedisInteractionStore) WithClock(clock func() time.Time) *RedisInteractionStore {
	s.clock = clock
	return s
}

// Record appends an interaction to the per-user and per-business logs.
func (s *RedisInteractionStore) Record(ctx context.Context, interaction *entities.Interaction) error {
	payload, err := json.Marshal(interaction)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal interaction", err)
	}

	score := float64(interaction.Timestamp.Unix())
	userKey := fmt.Sprintf(userInteractionsKeyFmt, interaction.UserID)

	return s.execute(ctx, "record", func(ctx context.Context) error {
		pipe := s.client.Client().TxPipeline()
		pipe.ZAdd(ctx, userKey, redis.Z{Score: score, Member: string(payload)})
		pipe.Expire(ctx, userKey, s.ttl)

		if interaction.BusinessID != "" {
			entry, err := json.Marshal(repositories.BusinessInteraction{
				UserID:    interaction.UserID,
				Rating:    interaction.ImplicitRating,
				Timestamp: interaction.Timestamp.Unix(),
			})
			if err != nil {
				return err
			}
			businessKey := fmt.Sprintf(businessInteractionsKeyFmt, interaction.BusinessID)
			pipe.ZAdd(ctx, businessKey, redis.Z{Score: score, Member: string(entry)})
			pipe.Expire(ctx, businessKey, s.ttl)
		}

		_, err := pipe.Exec(ctx)
		return err
	})
}

// History returns up to limit interactions for a user, most recent first.
func (s *RedisInteractionStore) History(ctx context.Context, userID string, limit int) ([]*entities.Interaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var members []string
	err := s.execute(ctx, "history", func(ctx context.Context) error {
		var err error
		key := fmt.Sprintf(userInteractionsKeyFmt, userID)
		members, err = s.client.Client().ZRevRange(ctx, key, 0, int64(limit-1)).Result()
		return err
	})
	if err != nil {
		return nil, err
	}

	interactions := make([]*entities.Interaction, 0, len(members))
	for _, member := range members {
		var interaction entities.Interaction
		if err := json.Unmarshal([]byte(member), &interaction); err != nil {
			// Skip entries written by incompatible older versions.
			continue
		}
		interactions = append(interactions, &interaction)
	}
	return interactions, nil
}

// UsersByBusiness returns everyone who interacted with a business.
func (s *RedisInteractionStore) UsersByBusiness(ctx context.Context, businessID string) ([]repositories.BusinessInteraction, error) {
	var members []string
	err := s.execute(ctx, "users_by_business", func(ctx context.Context) error {
		var err error
		key := fmt.Sprintf(businessInteractionsKeyFmt, businessID)
		members, err = s.client.Client().ZRange(ctx, key, 0, -1).Result()
		return err
	})
	if err != nil {
		return nil, err
	}

	interactions := make([]repositories.BusinessInteraction, 0, len(members))
	for _, member := range members {
		var entry repositories.BusinessInteraction
		if err := json.Unmarshal([]byte(member), &entry); err != nil {
			continue
		}
		interactions = append(interactions, entry)
	}
	return interactions, nil
}

// InteractionCount returns the global interaction count for a business.
func (s *RedisInteractionStore) InteractionCount(ctx context.Context, businessID string) (int64, error) {
	var count int64
	err := s.execute(ctx, "interaction_count", func(ctx context.Context) error {
		var err error
		key := fmt.Sprintf(businessInteractionsKeyFmt, businessID)
		count, err = s.client.Client().ZCard(ctx, key).Result()
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// IncrementTrend atomically bumps the decayed counter for a query.
func (s *RedisInteractionStore) IncrementTrend(ctx context.Context, query string) error {
	now := float64(s.clock().Unix())
	return s.execute(ctx, "increment_trend", func(ctx context.Context) error {
		return incrementTrendScript.Run(ctx, s.client.Client(),
			[]string{popularSearchesKey, popularSearchesSeenKey},
			query, now, s.trendLambda,
		).Err()
	})
}

// TopTrends returns the highest decayed counters, descending. Decay is
// applied at read time; counters below the prune threshold are hidden
// but never hard-deleted.
func (s *RedisInteractionStore) TopTrends(ctx context.Context, limit int) ([]*entities.TrendCounter, error) {
	if limit <= 0 {
		limit = 10
	}

	var stored []redis.Z
	var lastSeen []interface{}
	err := s.execute(ctx, "top_trends", func(ctx context.Context) error {
		var err error
		// Over-fetch so that pruning below the threshold still fills the limit.
		stored, err = s.client.Client().ZRevRangeWithScores(ctx, popularSearchesKey, 0, int64(limit*3-1)).Result()
		if err != nil || len(stored) == 0 {
			return err
		}

		fields := make([]string, len(stored))
		for i, z := range stored {
			fields[i] = z.Member.(string)
		}
		lastSeen, err = s.client.Client().HMGet(ctx, popularSearchesSeenKey, fields...).Result()
		return err
	})
	if err != nil {
		return nil, err
	}

	now := s.clock()
	trends := make([]*entities.TrendCounter, 0, len(stored))
	for i, z := range stored {
		seen := now
		if i < len(lastSeen) && lastSeen[i] != nil {
			if ts, ok := parseUnix(lastSeen[i]); ok {
				seen = ts
			}
		}

		elapsed := now.Sub(seen).Seconds()
		if elapsed < 0 {
			elapsed = 0
		}
		decayed := z.Score * math.Exp(-s.trendLambda*elapsed)
		if decayed < s.pruneThreshold {
			continue
		}

		trends = append(trends, &entities.TrendCounter{
			Query:        z.Member.(string),
			DecayedCount: decayed,
			LastSeen:     seen,
		})
	}

	sort.SliceStable(trends, func(i, j int) bool {
		return trends[i].DecayedCount > trends[j].DecayedCount
	})
	if len(trends) > limit {
		trends = trends[:limit]
	}
	return trends, nil
}

// execute runs one store operation behind the breaker with a bounded
// deadline, mapping every failure to StoreUnavailable.
func (s *RedisInteractionStore) execute(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if s.client == nil {
		return apperrors.NewStoreUnavailableError(op+": no store backend configured", nil)
	}

	_, err := s.breaker.Execute(func() (interface{}, error) {
		opCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return nil, fn(opCtx)
	})
	if err != nil {
		return apperrors.NewStoreUnavailableError("interaction store "+op+" failed", err)
	}
	return nil
}

func parseUnix(v interface{}) (time.Time, bool) {
	str, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	var unix float64
	if _, err := fmt.Sscanf(str, "%f", &unix); err != nil {
		return time.Time{}, false
	}
	return time.Unix(int64(unix), 0), true
}
