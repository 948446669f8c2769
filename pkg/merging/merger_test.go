package merging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stadlerhof/clover/pkg/identity"
	"github.com/stadlerhof/clover/pkg/models"
)

func phoneGroup(value string, profiles ...models.GuestProfile) *identity.GuestGroup {
	return &identity.GuestGroup{
		Key:      identity.MergeKey{Kind: identity.KeyKindPhone, Value: value},
		Profiles: profiles,
	}
}

func TestMergeNewestNonEmptyWins(t *testing.T) {
	// Newest profile (source id 5) has an empty first name; the only
	// non-empty value comes from the older profile and must win.
	group := phoneGroup("43660111222",
		models.GuestProfile{SourceID: 5, Phone: "0660111222", FirstName: "", City: "Wien"},
		models.GuestProfile{SourceID: 2, Phone: "0660111222", FirstName: "Max", City: "Graz"},
	)

	merged := Merge(group, nil)
	require.NotNil(t, merged)

	assert.Equal(t, "Max", merged.FirstName)
	assert.Equal(t, "Wien", merged.City, "newer non-empty value is preferred")
	assert.Equal(t, []int64{5, 2}, merged.SourceGuestIDs)
	assert.Equal(t, "43660111222", merged.PhoneNormalized)
	assert.Empty(t, merged.EmailNormalized)
}

func TestMergeEmptyNeverOverwritesPresent(t *testing.T) {
	group := phoneGroup("43660111222",
		models.GuestProfile{SourceID: 9, Phone: "0660111222", LastName: "Bauer", Street: ""},
		models.GuestProfile{SourceID: 4, Phone: "+43660111222", LastName: "", Street: "Hauptstrasse 1"},
		models.GuestProfile{SourceID: 1, Phone: "0660111222", LastName: "Huber", Street: "Nebenweg 2"},
	)

	merged := Merge(group, nil)
	require.NotNil(t, merged)

	assert.Equal(t, "Bauer", merged.LastName, "oldest value must not replace the newest non-empty one")
	assert.Equal(t, "Hauptstrasse 1", merged.Street)
}

func TestMergeAggregatesBookings(t *testing.T) {
	group := phoneGroup("43660111222",
		models.GuestProfile{SourceID: 5, Phone: "0660111222"},
		models.GuestProfile{SourceID: 2, Phone: "0660111222"},
	)

	bookings := []models.Booking{
		{BookingID: 10, SourceGuestID: 5, Arrival: "2025-03-01", AccountTotal: 450},
		{BookingID: 11, SourceGuestID: 2, Arrival: "2024-12-24", AccountTotal: 300},
		{BookingID: 12, SourceGuestID: 2, Arrival: "2025-01-02", AccountTotal: -50}, // refund
		{BookingID: 13, SourceGuestID: 99, Arrival: "2025-06-01", AccountTotal: 999},
	}

	merged := Merge(group, bookings)
	require.NotNil(t, merged)

	assert.Equal(t, 3, merged.TotalBookings)
	assert.InDelta(t, 700.0, merged.TotalRevenue, 0.001)
	assert.Equal(t, "2025-03-01", merged.LastBooking)
}

func TestMergeEmailKeyRecordsNormalizedEmail(t *testing.T) {
	group := &identity.GuestGroup{
		Key: identity.MergeKey{Kind: identity.KeyKindEmail, Value: "max@example.com"},
		Profiles: []models.GuestProfile{
			{SourceID: 3, Email: "Max@Example.com"},
		},
	}

	merged := Merge(group, nil)
	require.NotNil(t, merged)

	assert.Equal(t, "max@example.com", merged.EmailNormalized)
	assert.Empty(t, merged.PhoneNormalized)
	assert.Equal(t, "Max@Example.com", merged.Email, "raw value is kept on the record")
}

func TestMergeEmptyGroup(t *testing.T) {
	assert.Nil(t, Merge(nil, nil))
	assert.Nil(t, Merge(&identity.GuestGroup{}, nil))
}

func TestToCanonicalPreservesCreatedAt(t *testing.T) {
	merged := &MergedGuest{FirstName: "Anna", SourceGuestIDs: []int64{1}}
	guest := merged.ToCanonical("G100001", 100001, "2024-01-01T00:00:00Z", "2025-03-01T00:00:00Z")

	assert.Equal(t, "G100001", guest.ID)
	assert.Equal(t, int64(100001), guest.CustomerNumber)
	assert.Equal(t, "2024-01-01T00:00:00Z", guest.CreatedAt)
	assert.Equal(t, "2025-03-01T00:00:00Z", guest.UpdatedAt)
}
