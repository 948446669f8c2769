package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stadlerhof/clover/pkg/models"
)

func TestGroupProfilesMergesByNormalizedPhone(t *testing.T) {
	profiles := []models.GuestProfile{
		{SourceID: 1, Phone: "0660 111 222 33", FirstName: "Max"},
		{SourceID: 5, Phone: "+43 660 111 222 33", FirstName: "Maximilian"},
		{SourceID: 3, Phone: "0043 660 111 222 33"},
	}

	groups := GroupProfiles(profiles)
	require.Len(t, groups, 1)

	group := groups["phone_4366011122233"]
	require.NotNil(t, group)
	assert.Equal(t, []int64{5, 3, 1}, group.SourceIDs(), "profiles ordered newest first")
}

func TestGroupProfilesDistinctContactsNeverMerge(t *testing.T) {
	// Identical names are irrelevant; keys are opaque equality classes.
	profiles := []models.GuestProfile{
		{SourceID: 1, Phone: "0660111222", Email: "a@example.com", FirstName: "Anna", LastName: "Bauer"},
		{SourceID: 2, Phone: "0660999888", Email: "b@example.com", FirstName: "Anna", LastName: "Bauer"},
	}

	groups := GroupProfiles(profiles)
	assert.Len(t, groups, 2)
}

func TestGroupProfilesFallbackIsolation(t *testing.T) {
	// Contact-less profiles form singleton groups keyed by their own source id.
	profiles := []models.GuestProfile{
		{SourceID: 10, FirstName: "John", LastName: "Doe"},
		{SourceID: 11, FirstName: "John", LastName: "Doe"},
	}

	groups := GroupProfiles(profiles)
	require.Len(t, groups, 2)
	require.NotNil(t, groups["source_10"])
	require.NotNil(t, groups["source_11"])
	assert.Len(t, groups["source_10"].Profiles, 1)
	assert.Len(t, groups["source_11"].Profiles, 1)
}

func TestGroupProfilesEmailGrouping(t *testing.T) {
	profiles := []models.GuestProfile{
		{SourceID: 2, Email: "max@example.com"},
		{SourceID: 8, Email: " MAX@EXAMPLE.com "},
	}

	groups := GroupProfiles(profiles)
	require.Len(t, groups, 1)
	group := groups["email_max@example.com"]
	require.NotNil(t, group)
	assert.Equal(t, []int64{8, 2}, group.SourceIDs())
}

func TestSortedGroupIDs(t *testing.T) {
	groups := map[string]*GuestGroup{
		"source_9":          {},
		"email_a@b.cd":      {},
		"phone_43660123456": {},
	}

	assert.Equal(t, []string{"email_a@b.cd", "phone_43660123456", "source_9"}, SortedGroupIDs(groups))
}
