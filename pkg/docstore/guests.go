// Package docstore persists the canonical guest registry in Redis: guest
// documents, the merge-key lookup index, the customer number counter and the
// per-pass sync status document.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Gobusters/ectologger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/stadlerhof/clover/pkg/models"
	"github.com/stadlerhof/clover/pkg/redis"
	"github.com/stadlerhof/clover/pkg/tracing"
)

const (
	guestKeyPrefix = "guests:"
	guestIndexKey  = "guests:index"
)

// Guests stores canonical guest documents keyed by id.
type Guests struct {
	client *redis.Client
	logger ectologger.Logger
}

// NewGuests creates a new canonical guest collection
func NewGuests(client *redis.Client, logger ectologger.Logger) *Guests {
	return &Guests{
		client: client,
		logger: logger,
	}
}

// Get loads one canonical guest. Returns nil without error when absent.
func (g *Guests) Get(ctx context.Context, id string) (*models.CanonicalGuest, error) {
	ctx, span := tracing.StartSpan(ctx, "docstore.Guests.Get")
	defer span.End()

	raw, err := g.client.Get(ctx, guestKeyPrefix+id)
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load guest %s: %w", id, err)
	}

	var guest models.CanonicalGuest
	if err := json.Unmarshal([]byte(raw), &guest); err != nil {
		return nil, fmt.Errorf("failed to decode guest %s: %w", id, err)
	}

	return &guest, nil
}

// Put writes a canonical guest document and registers its id in the index.
// Overwrite semantics: the stored document is fully replaced.
func (g *Guests) Put(ctx context.Context, guest *models.CanonicalGuest) error {
	ctx, span := tracing.StartSpan(ctx, "docstore.Guests.Put")
	defer span.End()

	data, err := json.Marshal(guest)
	if err != nil {
		return fmt.Errorf("failed to encode guest %s: %w", guest.ID, err)
	}

	pipe := g.client.Redis().TxPipeline()
	pipe.Set(ctx, guestKeyPrefix+guest.ID, data, 0)
	pipe.SAdd(ctx, guestIndexKey, guest.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write guest %s: %w", guest.ID, err)
	}

	g.logger.WithContext(ctx).WithFields(map[string]any{
		"guest_id":        guest.ID,
		"customer_number": guest.CustomerNumber,
	}).Debug("Wrote canonical guest")

	return nil
}

// List loads every canonical guest in the registry.
func (g *Guests) List(ctx context.Context) ([]models.CanonicalGuest, error) {
	ctx, span := tracing.StartSpan(ctx, "docstore.Guests.List")
	defer span.End()

	ids, err := g.client.Redis().SMembers(ctx, guestIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list guest ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = guestKeyPrefix + id
	}

	raws, err := g.client.Redis().MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load guest documents: %w", err)
	}

	guests := make([]models.CanonicalGuest, 0, len(raws))
	for _, raw := range raws {
		s, ok := raw.(string)
		if !ok {
			continue // id in index without document; skip
		}
		var guest models.CanonicalGuest
		if err := json.Unmarshal([]byte(s), &guest); err != nil {
			g.logger.WithContext(ctx).WithError(err).Warn("Skipping undecodable guest document")
			continue
		}
		guests = append(guests, guest)
	}

	return guests, nil
}
