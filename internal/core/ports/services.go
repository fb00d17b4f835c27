package ports

import (
	"context"

	"github.com/viajaperu/tripsim/internal/core/domain"
)

// EventPublisher publishes simulation events to a message broker.
type EventPublisher interface {
	PublishSnapshot(ctx context.Context, snap *domain.SimulationSnapshot) error
	PublishCompleted(ctx context.Context, event *domain.SimulationCompleted) error
	PublishRatingRequest(ctx context.Context, req *domain.RatingRequest) error
}

// EventSubscriber subscribes to simulation events from a message broker.
type EventSubscriber interface {
	SubscribeCompleted(ctx context.Context, handler func(ctx context.Context, event *domain.SimulationCompleted) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// RatingScheduler kicks off the post-trip rating flow for a finished simulation.
type RatingScheduler interface {
	ScheduleRating(ctx context.Context, event *domain.SimulationCompleted) error
}
