// Package events handles event emission for canonical guest lifecycle changes
package events

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/stadlerhof/clover/pkg/identity"
	"github.com/stadlerhof/clover/pkg/kafka"
	"github.com/stadlerhof/clover/pkg/models"
	"github.com/stadlerhof/clover/pkg/tracing"
)

// Emitter handles event emission for Clover
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// GuestCreated emits a guest.created event
func (e *Emitter) GuestCreated(ctx context.Context, guest *models.CanonicalGuest, kind identity.KeyKind) {
	e.emit(ctx, "guest.created", guest, kind)
}

// GuestUpdated emits a guest.updated event
func (e *Emitter) GuestUpdated(ctx context.Context, guest *models.CanonicalGuest, kind identity.KeyKind) {
	e.emit(ctx, "guest.updated", guest, kind)
}

// emit publishes best-effort: a failed event never fails the upsert.
func (e *Emitter) emit(ctx context.Context, eventType string, guest *models.CanonicalGuest, kind identity.KeyKind) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.emit")
	defer span.End()

	event := &kafka.GuestEvent{
		EventType:      eventType,
		GuestID:        guest.ID,
		CustomerNumber: guest.CustomerNumber,
		MergeKeyKind:   string(kind),
		SourceGuestIDs: guest.SourceGuestIDs,
		TotalBookings:  guest.TotalBookings,
	}

	if err := e.producer.PublishGuestEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Errorf("Failed to emit %s event", eventType)
	}
}
