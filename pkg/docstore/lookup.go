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

const lookupHashKey = "guestLookup"

// Lookups is the durable merge-key index. Fields are "<kind>_<value>"
// strings; entries are never deleted or re-keyed once written.
type Lookups struct {
	client *redis.Client
	logger ectologger.Logger
}

// NewLookups creates a new lookup index collection
func NewLookups(client *redis.Client, logger ectologger.Logger) *Lookups {
	return &Lookups{
		client: client,
		logger: logger,
	}
}

// LoadAll snapshots the whole lookup table for one sync pass.
func (l *Lookups) LoadAll(ctx context.Context) (map[string]models.LookupEntry, error) {
	ctx, span := tracing.StartSpan(ctx, "docstore.Lookups.LoadAll")
	defer span.End()

	raw, err := l.client.Redis().HGetAll(ctx, lookupHashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load lookup index: %w", err)
	}

	entries := make(map[string]models.LookupEntry, len(raw))
	for id, val := range raw {
		var entry models.LookupEntry
		if err := json.Unmarshal([]byte(val), &entry); err != nil {
			l.logger.WithContext(ctx).WithError(err).WithField("lookup_id", id).
				Warn("Skipping undecodable lookup entry")
			continue
		}
		entries[id] = entry
	}

	return entries, nil
}

// Get reads a single entry. Returns nil without error when absent.
func (l *Lookups) Get(ctx context.Context, lookupID string) (*models.LookupEntry, error) {
	ctx, span := tracing.StartSpan(ctx, "docstore.Lookups.Get")
	defer span.End()

	val, err := l.client.Redis().HGet(ctx, lookupHashKey, lookupID).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read lookup %s: %w", lookupID, err)
	}

	var entry models.LookupEntry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil, fmt.Errorf("failed to decode lookup %s: %w", lookupID, err)
	}

	return &entry, nil
}

// Claim atomically creates the entry if and only if no entry exists for the
// key. Returns false when another writer claimed the key first; the caller
// must then re-read and take the update path. This write-time check is what
// protects against a stale pass-start snapshot.
func (l *Lookups) Claim(ctx context.Context, lookupID string, entry models.LookupEntry) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "docstore.Lookups.Claim")
	defer span.End()

	data, err := json.Marshal(entry)
	if err != nil {
		return false, fmt.Errorf("failed to encode lookup %s: %w", lookupID, err)
	}

	ok, err := l.client.Redis().HSetNX(ctx, lookupHashKey, lookupID, data).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim lookup %s: %w", lookupID, err)
	}

	return ok, nil
}
