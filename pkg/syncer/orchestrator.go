package syncer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/stadlerhof/clover/pkg/metrics"
	"github.com/stadlerhof/clover/pkg/models"
	"github.com/stadlerhof/clover/pkg/redis"
	"github.com/stadlerhof/clover/pkg/tracing"
)

var (
	// ErrOrchestratorStopped is returned when the orchestrator is stopped
	ErrOrchestratorStopped = errors.New("orchestrator stopped")

	// ErrOrchestratorAlreadyRunning is returned when trying to start an already running orchestrator
	ErrOrchestratorAlreadyRunning = errors.New("orchestrator already running")
)

const (
	// DefaultInterval is the default interval between sync passes
	DefaultInterval = 15 * time.Minute

	// DefaultLockTTL is the default TTL for the per-pass distributed lock
	DefaultLockTTL = 10 * time.Minute

	// LockKey is the lock key guarding a sync pass
	LockKey = "guest-sync"

	// SyncSource identifies this service in the status document
	SyncSource = "clover"
)

// PassRunner executes a single sync pass.
type PassRunner interface {
	Run(ctx context.Context) (*PassResult, error)
}

// StatusWriter persists the status document after each pass.
type StatusWriter interface {
	Write(ctx context.Context, status models.SyncStatus) error
}

// Config holds configuration for the orchestrator
type Config struct {
	// Interval is how often to run a sync pass
	Interval time.Duration

	// LockTTL is how long the per-pass lock is held at most
	LockTTL time.Duration

	// Enabled is the initial state of the auto-sync flag
	Enabled bool

	// RunOnStart triggers one pass immediately when the loop starts
	RunOnStart bool
}

// Orchestrator runs sync passes on a fixed interval. Passes are never
// overlapped: manual triggers and the scheduled loop serialize on one mutex,
// and an optional distributed lock keeps two service instances apart.
type Orchestrator struct {
	runner PassRunner
	status StatusWriter
	locker *redis.Locker
	config Config
	logger ectologger.Logger

	enabled atomic.Bool
	runMu   sync.Mutex

	// Coordination
	stopCh   chan struct{}
	stoppedC chan struct{}
	running  bool
	mu       sync.RWMutex
}

// NewOrchestrator creates a new orchestrator. locker may be nil when
// distributed locking is disabled (single instance deployments).
func NewOrchestrator(
	runner PassRunner,
	status StatusWriter,
	locker *redis.Locker,
	config Config,
	logger ectologger.Logger,
) *Orchestrator {
	// Apply defaults
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.LockTTL <= 0 {
		config.LockTTL = DefaultLockTTL
	}

	o := &Orchestrator{
		runner:   runner,
		status:   status,
		locker:   locker,
		config:   config,
		logger:   logger,
		stopCh:   make(chan struct{}),
		stoppedC: make(chan struct{}),
	}
	o.enabled.Store(config.Enabled)

	return o
}

// Start starts the sync loop
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return ErrOrchestratorAlreadyRunning
	}
	o.running = true
	o.mu.Unlock()

	o.logger.WithContext(ctx).Infof("Starting sync orchestrator: interval=%s enabled=%t",
		o.config.Interval, o.enabled.Load())

	go o.loop(ctx)

	return nil
}

// Stop stops the sync loop gracefully
func (o *Orchestrator) Stop(ctx context.Context) error {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return nil
	}
	o.running = false
	o.mu.Unlock()

	o.logger.WithContext(ctx).Info("Stopping sync orchestrator...")

	close(o.stopCh)

	select {
	case <-o.stoppedC:
		o.logger.WithContext(ctx).Info("Sync orchestrator stopped gracefully")
	case <-ctx.Done():
		o.logger.WithContext(ctx).Warn("Sync orchestrator shutdown timed out")
		return ctx.Err()
	}

	return nil
}

// IsRunning returns whether the loop is running
func (o *Orchestrator) IsRunning() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.running
}

// SetEnabled flips the auto-sync flag. The flag is checked per tick, so a
// disable takes effect at the next interval without stopping the loop.
func (o *Orchestrator) SetEnabled(enabled bool) {
	o.enabled.Store(enabled)
}

// Enabled returns the current auto-sync flag
func (o *Orchestrator) Enabled() bool {
	return o.enabled.Load()
}

func (o *Orchestrator) loop(ctx context.Context) {
	defer close(o.stoppedC)

	ticker := time.NewTicker(o.config.Interval)
	defer ticker.Stop()

	if o.config.RunOnStart {
		o.tick(ctx)
	}

	for {
		select {
		case <-o.stopCh:
			o.logger.WithContext(ctx).Debug("Sync loop stopping")
			return
		case <-ticker.C:
			o.tick(ctx)
		}
	}
}

func (o *Orchestrator) tick(ctx context.Context) {
	if !o.enabled.Load() {
		o.logger.WithContext(ctx).Debug("Auto-sync disabled, skipping pass")
		return
	}

	if _, err := o.RunOnce(ctx); err != nil && !errors.Is(err, redis.ErrLockNotAcquired) {
		o.logger.WithContext(ctx).WithError(err).Error("Scheduled sync pass failed")
	}
}

// RunOnce runs a single sync pass and writes the status document. It is safe
// to call concurrently with the scheduled loop; passes serialize. Returns
// redis.ErrLockNotAcquired when another instance holds the pass lock.
func (o *Orchestrator) RunOnce(ctx context.Context) (*PassResult, error) {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	ctx, span := tracing.StartSpan(ctx, "syncer.Orchestrator.RunOnce")
	defer span.End()

	if o.locker != nil {
		lock, err := o.locker.Acquire(ctx, LockKey, o.config.LockTTL)
		if err != nil {
			if errors.Is(err, redis.ErrLockNotAcquired) {
				o.logger.WithContext(ctx).Info("Sync pass skipped: lock held by another instance")
			}
			return nil, err
		}
		defer lock.Release(ctx)
	}

	result, runErr := o.runner.Run(ctx)

	status := models.SyncStatus{
		LastSync:         time.Now().UTC().Format(time.RFC3339),
		LastSyncSuccess:  runErr == nil,
		AutoSyncEnabled:  o.enabled.Load(),
		AutoSyncInterval: int(o.config.Interval.Minutes()),
		SyncSource:       SyncSource,
	}

	if runErr != nil {
		status.Error = runErr.Error()
		metrics.SyncPassesTotal.WithLabelValues("error").Inc()
	} else {
		status.RunID = result.RunID
		status.ProfileCount = result.ProfileCount
		status.GroupCount = result.GroupCount
		status.Created = result.Created
		status.Updated = result.Updated
		status.Errors = result.Errors
		status.DurationMillis = result.Duration.Milliseconds()
		metrics.SyncPassesTotal.WithLabelValues("success").Inc()
		metrics.SyncPassDuration.Observe(result.Duration.Seconds())
	}

	// The status document is advisory; a failed write never fails the pass.
	if err := o.status.Write(ctx, status); err != nil {
		o.logger.WithContext(ctx).WithError(err).Error("Failed to write sync status")
	}

	return result, runErr
}
