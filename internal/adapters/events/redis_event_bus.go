package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/nearspot/business-discovery/internal/domain/entities"
	"github.com/nearspot/business-discovery/internal/domain/providers"
	redisclient "github.com/nearspot/business-discovery/internal/infrastructure/clients/redis"
	"github.com/redis/go-redis/v9"
)

// InteractionsChannel carries every recorded interaction so trend
// aggregation and analytics run off the scoring path.
const InteractionsChannel = "interactions"

// RedisEventBus implements the EventBus interface using Redis Pub/Sub
type RedisEventBus struct {
	client        *redisclient.Client
	subscriptions map[string]*redis.PubSub
	subscribers   map[string]map[chan *entities.Interaction]struct{}
	mu            sync.RWMutex
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:        client,
		subscriptions: make(map[string]*redis.PubSub),
		subscribers:   make(map[string]map[chan *entities.Interaction]struct{}),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Publish publishes an interaction to all subscribers
func (b *RedisEventBus) Publish(ctx context.Context, channel string, interaction *entities.Interaction) error {
	data, err := json.Marshal(interaction)
	if err != nil {
		return fmt.Errorf("failed to marshal interaction: %w", err)
	}

	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish interaction: %w", err)
	}

	return nil
}

// Subscribe subscribes to interactions on a channel
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.Interaction, error) {
	b.mu.Lock()

	if _, exists := b.subscriptions[channel]; !exists {
		pubsub := b.client.Client().Subscribe(b.ctx, channel)
		b.subscriptions[channel] = pubsub
		go b.receiveMessages(channel, pubsub)
	}

	if b.subscribers[channel] == nil {
		b.subscribers[channel] = make(map[chan *entities.Interaction]struct{})
	}

	eventChan := make(chan *entities.Interaction, 100)
	b.subscribers[channel][eventChan] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.removeSubscriber(channel, eventChan)
	}()

	return eventChan, nil
}

// receiveMessages receives messages from Redis and broadcasts them to subscribers
func (b *RedisEventBus) receiveMessages(channel string, pubsub *redis.PubSub) {
	defer func() {
		if err := pubsub.Close(); err != nil {
			log.Printf("Failed to close subscription for channel %s: %v", channel, err)
		}
	}()

	ch := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var interaction entities.Interaction
			if err := json.Unmarshal([]byte(msg.Payload), &interaction); err != nil {
				log.Printf("Failed to unmarshal interaction from channel %s: %v", channel, err)
				continue
			}

			b.mu.RLock()
			for subscriber := range b.subscribers[channel] {
				select {
				case subscriber <- &interaction:
				default:
					// Subscriber channel full, skip event
					log.Printf("Subscriber channel full for %s, skipping interaction %s", channel, interaction.ID)
				}
			}
			b.mu.RUnlock()
		}
	}
}

func (b *RedisEventBus) removeSubscriber(channel string, eventChan chan *entities.Interaction) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subs, ok := b.subscribers[channel]; ok {
		delete(subs, eventChan)
		close(eventChan)
	}
}

// Close shuts the bus down and closes all subscriptions
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	for channel, pubsub := range b.subscriptions {
		if err := pubsub.Close(); err != nil {
			log.Printf("Failed to close subscription for channel %s: %v", channel, err)
		}
		delete(b.subscriptions, channel)
	}
	for channel, subs := range b.subscribers {
		for sub := range subs {
			close(sub)
		}
		delete(b.subscribers, channel)
	}
	return nil
}
