package docstore

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/Gobusters/ectologger"

	"github.com/stadlerhof/clover/pkg/redis"
	"github.com/stadlerhof/clover/pkg/tracing"
)

const (
	counterKey = "counters:guests"
	// counterSeed is the value the counter starts from; the first allocated
	// customer number is counterSeed+1.
	counterSeed = 100000
)

// Allocator issues strictly increasing customer numbers from a shared Redis
// counter. This is the only operation in the engine that needs cross-process
// atomicity.
type Allocator struct {
	client *redis.Client
	logger ectologger.Logger
}

// NewAllocator creates a new customer number allocator
func NewAllocator(client *redis.Client, logger ectologger.Logger) *Allocator {
	return &Allocator{
		client: client,
		logger: logger,
	}
}

// NextNumber returns the next customer number. The seed-then-increment pair
// is atomic on the server, so two concurrent callers never observe the same
// value. When the counter is unreachable it falls back to a random large
// number rather than blocking the whole pass; the degraded flag marks the
// result because the uniqueness guarantee is weaker.
func (a *Allocator) NextNumber(ctx context.Context) (int64, bool) {
	ctx, span := tracing.StartSpan(ctx, "docstore.Allocator.NextNumber")
	defer span.End()

	number, err := a.next(ctx)
	if err != nil {
		a.logger.WithContext(ctx).WithError(err).
			Warn("Counter transaction failed, falling back to random customer number")
		return counterSeed + rand.Int63n(99999) + 1, true
	}

	return number, false
}

func (a *Allocator) next(ctx context.Context) (int64, error) {
	if err := a.client.Redis().SetNX(ctx, counterKey, counterSeed, 0).Err(); err != nil {
		return 0, fmt.Errorf("failed to seed counter: %w", err)
	}

	number, err := a.client.Redis().Incr(ctx, counterKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}

	return number, nil
}
