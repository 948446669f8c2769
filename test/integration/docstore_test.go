package integration

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stadlerhof/clover/pkg/docstore"
	"github.com/stadlerhof/clover/pkg/models"
	"github.com/stadlerhof/clover/pkg/redis"
)

// getTestRedis connects to the Redis instance configured via environment
// variables and flushes the test database. Tests are skipped when no
// instance is reachable.
func getTestRedis(t *testing.T) *redis.Client {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := 6379
	if p := os.Getenv("REDIS_PORT"); p != "" {
		parsed, err := strconv.Atoi(p)
		require.NoError(t, err)
		port = parsed
	}

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})

	client, err := redis.NewClient(redis.Config{
		Host: host,
		Port: port,
		DB:   15, // dedicated test database
	}, logger)
	if err != nil {
		t.Skipf("Redis not available at %s:%d: %v", host, port, err)
	}

	require.NoError(t, client.Redis().FlushDB(context.Background()).Err())

	t.Cleanup(func() {
		client.Close()
	})

	return client
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestGuests_PutGetList(t *testing.T) {
	client := getTestRedis(t)
	guests := docstore.NewGuests(client, testLogger())
	ctx := context.Background()

	missing, err := guests.Get(ctx, "G999999")
	require.NoError(t, err)
	assert.Nil(t, missing)

	guest := &models.CanonicalGuest{
		ID:             "G100001",
		CustomerNumber: 100001,
		FirstName:      "Anna",
		LastName:       "Bauer",
		SourceGuestIDs: []int64{3, 2, 1},
		TotalBookings:  1,
		TotalRevenue:   450.0,
		CreatedAt:      "2025-01-01T00:00:00Z",
		UpdatedAt:      "2025-01-01T00:00:00Z",
	}
	require.NoError(t, guests.Put(ctx, guest))

	loaded, err := guests.Get(ctx, "G100001")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, guest, loaded)

	// Overwrite replaces the document entirely
	guest.FirstName = "Anna-Maria"
	guest.UpdatedAt = "2025-02-01T00:00:00Z"
	require.NoError(t, guests.Put(ctx, guest))

	all, err := guests.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Anna-Maria", all[0].FirstName)
}

func TestLookups_ClaimIsFirstWriterWins(t *testing.T) {
	client := getTestRedis(t)
	lookups := docstore.NewLookups(client, testLogger())
	ctx := context.Background()

	first := models.LookupEntry{GuestID: "G100001", CustomerNumber: 100001}
	second := models.LookupEntry{GuestID: "G100002", CustomerNumber: 100002}

	claimed, err := lookups.Claim(ctx, "phone_43660123456", first)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = lookups.Claim(ctx, "phone_43660123456", second)
	require.NoError(t, err)
	assert.False(t, claimed, "second claim for the same key must lose")

	entry, err := lookups.Get(ctx, "phone_43660123456")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, first, *entry, "the losing claim must not overwrite the winner")

	all, err := lookups.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAllocator_NumbersAreStrictlyIncreasing(t *testing.T) {
	client := getTestRedis(t)
	allocator := docstore.NewAllocator(client, testLogger())
	ctx := context.Background()

	first, degraded := allocator.NextNumber(ctx)
	require.False(t, degraded)
	assert.Equal(t, int64(100001), first, "first number comes right after the seed")

	prev := first
	for i := 0; i < 10; i++ {
		n, degraded := allocator.NextNumber(ctx)
		require.False(t, degraded)
		assert.Equal(t, prev+1, n)
		prev = n
	}
}

func TestStatus_RoundTrip(t *testing.T) {
	client := getTestRedis(t)
	status := docstore.NewStatus(client, testLogger())
	ctx := context.Background()

	missing, err := status.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, missing)

	written := models.SyncStatus{
		RunID:           "run-1",
		LastSync:        "2025-05-01T12:00:00Z",
		LastSyncSuccess: true,
		ProfileCount:    42,
		GroupCount:      17,
		Created:         3,
		Updated:         14,
		DurationMillis:  950,
		AutoSyncEnabled: true,
		SyncSource:      "clover",
	}
	require.NoError(t, status.Write(ctx, written))

	loaded, err := status.Read(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, written, *loaded)
}

func TestLocker_MutualExclusion(t *testing.T) {
	client := getTestRedis(t)
	locker := redis.NewLocker(client, "lock:")
	ctx := context.Background()

	lock, err := locker.Acquire(ctx, "guest-sync", time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "guest-sync", time.Minute)
	assert.ErrorIs(t, err, redis.ErrLockNotAcquired)

	require.NoError(t, lock.Release(ctx))

	relock, err := locker.Acquire(ctx, "guest-sync", time.Minute)
	require.NoError(t, err)
	require.NoError(t, relock.Release(ctx))

	assert.ErrorIs(t, relock.Release(ctx), redis.ErrLockNotHeld)
}
