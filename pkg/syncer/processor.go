// Package syncer drives full deduplication passes over the raw guest
// population and reconciles the canonical registry.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/stadlerhof/clover/pkg/identity"
	"github.com/stadlerhof/clover/pkg/merging"
	"github.com/stadlerhof/clover/pkg/metrics"
	"github.com/stadlerhof/clover/pkg/models"
	"github.com/stadlerhof/clover/pkg/tracing"
)

// ProfileLister reads the raw guest population from the source system.
type ProfileLister interface {
	List(ctx context.Context) ([]models.GuestProfile, error)
}

// BookingLister reads raw bookings with summed account totals.
type BookingLister interface {
	ListWithTotals(ctx context.Context) ([]models.Booking, error)
}

// GuestStore reads and writes canonical guest documents.
type GuestStore interface {
	Get(ctx context.Context, id string) (*models.CanonicalGuest, error)
	Put(ctx context.Context, guest *models.CanonicalGuest) error
}

// LookupStore is the durable merge-key index.
type LookupStore interface {
	LoadAll(ctx context.Context) (map[string]models.LookupEntry, error)
	Get(ctx context.Context, lookupID string) (*models.LookupEntry, error)
	Claim(ctx context.Context, lookupID string, entry models.LookupEntry) (bool, error)
}

// NumberAllocator issues customer numbers. The degraded flag marks numbers
// issued through the random fallback when the counter was unreachable.
type NumberAllocator interface {
	NextNumber(ctx context.Context) (int64, bool)
}

// EventEmitter publishes guest lifecycle events. Optional.
type EventEmitter interface {
	GuestCreated(ctx context.Context, guest *models.CanonicalGuest, kind identity.KeyKind)
	GuestUpdated(ctx context.Context, guest *models.CanonicalGuest, kind identity.KeyKind)
}

// PassResult summarizes one full deduplication pass.
type PassResult struct {
	RunID               string
	StartedAt           time.Time
	Duration            time.Duration
	ProfileCount        int
	GroupCount          int
	Created             int
	Updated             int
	Errors              int
	DegradedAllocations int
}

// Processor runs one pass: group, merge, then create or update each
// canonical guest. Groups are processed strictly sequentially in sorted key
// order, so a re-run over unchanged input produces identical counts.
type Processor struct {
	profiles  ProfileLister
	bookings  BookingLister
	guests    GuestStore
	lookups   LookupStore
	allocator NumberAllocator
	emitter   EventEmitter
	logger    ectologger.Logger
}

// NewProcessor creates a new pass processor. emitter may be nil when event
// publishing is disabled.
func NewProcessor(
	profiles ProfileLister,
	bookings BookingLister,
	guests GuestStore,
	lookups LookupStore,
	allocator NumberAllocator,
	emitter EventEmitter,
	logger ectologger.Logger,
) *Processor {
	return &Processor{
		profiles:  profiles,
		bookings:  bookings,
		guests:    guests,
		lookups:   lookups,
		allocator: allocator,
		emitter:   emitter,
		logger:    logger,
	}
}

// Run executes one full pass. An error return means the pass itself failed
// (a bulk read, nothing written); per-group write failures are tallied in the
// result and never abort the remaining groups.
func (p *Processor) Run(ctx context.Context) (*PassResult, error) {
	ctx, span := tracing.StartSpan(ctx, "syncer.Processor.Run")
	defer span.End()

	result := &PassResult{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
	log := p.logger.WithContext(ctx).WithField("run_id", result.RunID)

	profiles, err := p.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read guest profiles: %w", err)
	}

	bookings, err := p.bookings.ListWithTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read bookings: %w", err)
	}

	groups := identity.GroupProfiles(profiles)

	snapshot, err := p.lookups.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lookup index: %w", err)
	}

	result.ProfileCount = len(profiles)
	result.GroupCount = len(groups)
	metrics.ProfilesSeen.Set(float64(len(profiles)))
	metrics.GroupsSeen.Set(float64(len(groups)))

	log.Infof("Starting sync pass: profiles=%d groups=%d known_keys=%d",
		len(profiles), len(groups), len(snapshot))

	for _, lookupID := range identity.SortedGroupIDs(groups) {
		if err := p.upsertGroup(ctx, lookupID, groups[lookupID], bookings, snapshot, result); err != nil {
			log.WithError(err).WithField("lookup_id", lookupID).Error("Failed to upsert guest group")
			result.Errors++
			metrics.GroupErrorsTotal.Inc()
		}
	}

	result.Duration = time.Since(result.StartedAt)
	log.Infof("Sync pass completed: created=%d updated=%d errors=%d duration=%s",
		result.Created, result.Updated, result.Errors, result.Duration)

	return result, nil
}

func (p *Processor) upsertGroup(
	ctx context.Context,
	lookupID string,
	group *identity.GuestGroup,
	bookings []models.Booking,
	snapshot map[string]models.LookupEntry,
	result *PassResult,
) error {
	merged := merging.Merge(group, bookings)
	if merged == nil {
		return nil
	}

	if entry, ok := snapshot[lookupID]; ok {
		return p.updateGuest(ctx, group, merged, entry, result)
	}

	return p.createGuest(ctx, lookupID, group, merged, snapshot, result)
}

// updateGuest overwrites the stored document with the fresh merge, keeping
// id, customer number and createdAt.
func (p *Processor) updateGuest(
	ctx context.Context,
	group *identity.GuestGroup,
	merged *merging.MergedGuest,
	entry models.LookupEntry,
	result *PassResult,
) error {
	now := time.Now().UTC().Format(time.RFC3339)

	createdAt := now
	existing, err := p.guests.Get(ctx, entry.GuestID)
	if err != nil {
		return err
	}
	if existing != nil && existing.CreatedAt != "" {
		createdAt = existing.CreatedAt
	}

	guest := merged.ToCanonical(entry.GuestID, entry.CustomerNumber, createdAt, now)
	if err := p.guests.Put(ctx, guest); err != nil {
		return err
	}

	result.Updated++
	metrics.GuestsUpdatedTotal.Inc()
	if p.emitter != nil {
		p.emitter.GuestUpdated(ctx, guest, group.Key.Kind)
	}

	return nil
}

// createGuest allocates a fresh identity. For contact-derived keys the lookup
// entry is the triggering write: the guest document only follows a successful
// claim, so a canonical record never exists without its lookup key. Source
// fallback keys are deliberately never recorded in the lookup index, so
// contact-less guests get a fresh number every pass.
func (p *Processor) createGuest(
	ctx context.Context,
	lookupID string,
	group *identity.GuestGroup,
	merged *merging.MergedGuest,
	snapshot map[string]models.LookupEntry,
	result *PassResult,
) error {
	number, degraded := p.allocator.NextNumber(ctx)
	if degraded {
		result.DegradedAllocations++
		metrics.AllocationFallbacksTotal.Inc()
	}

	id := fmt.Sprintf("G%d", number)
	entry := models.LookupEntry{GuestID: id, CustomerNumber: number}

	if group.Key.Contact() {
		claimed, err := p.lookups.Claim(ctx, lookupID, entry)
		if err != nil {
			return err
		}
		if !claimed {
			// A concurrent writer assigned this key after our snapshot. The
			// allocated number is discarded (a gap, never reused) and the
			// group falls through to the update path.
			current, err := p.lookups.Get(ctx, lookupID)
			if err != nil {
				return err
			}
			if current == nil {
				return fmt.Errorf("lookup %s missing after lost claim", lookupID)
			}
			snapshot[lookupID] = *current
			return p.updateGuest(ctx, group, merged, *current, result)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	guest := merged.ToCanonical(id, number, now, now)
	if err := p.guests.Put(ctx, guest); err != nil {
		return err
	}

	result.Created++
	metrics.GuestsCreatedTotal.Inc()
	if p.emitter != nil {
		p.emitter.GuestCreated(ctx, guest, group.Key.Kind)
	}

	return nil
}
