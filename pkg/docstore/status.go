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

const statusKey = "sync:status"

// Status holds the single sync status document, overwritten after each pass.
type Status struct {
	client *redis.Client
	logger ectologger.Logger
}

// NewStatus creates a new status document accessor
func NewStatus(client *redis.Client, logger ectologger.Logger) *Status {
	return &Status{
		client: client,
		logger: logger,
	}
}

// Write replaces the status document.
func (s *Status) Write(ctx context.Context, status models.SyncStatus) error {
	ctx, span := tracing.StartSpan(ctx, "docstore.Status.Write")
	defer span.End()

	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to encode sync status: %w", err)
	}

	if err := s.client.Set(ctx, statusKey, data, 0); err != nil {
		return fmt.Errorf("failed to write sync status: %w", err)
	}

	return nil
}

// Read returns the last written status, or nil when no pass has run yet.
func (s *Status) Read(ctx context.Context) (*models.SyncStatus, error) {
	ctx, span := tracing.StartSpan(ctx, "docstore.Status.Read")
	defer span.End()

	raw, err := s.client.Get(ctx, statusKey)
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sync status: %w", err)
	}

	var status models.SyncStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return nil, fmt.Errorf("failed to decode sync status: %w", err)
	}

	return &status, nil
}
