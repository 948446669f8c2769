package identity

import (
	"sort"

	"github.com/stadlerhof/clover/pkg/models"
)

// GuestGroup is a merge key plus every raw profile sharing it, ordered by
// descending source id (newest first).
type GuestGroup struct {
	Key      MergeKey
	Profiles []models.GuestProfile
}

// SourceIDs returns the contributing source guest ids in group order.
func (g *GuestGroup) SourceIDs() []int64 {
	ids := make([]int64, 0, len(g.Profiles))
	for _, p := range g.Profiles {
		ids = append(ids, p.SourceID)
	}
	return ids
}

// GroupProfiles partitions the full profile set by derived merge key. Keys are
// opaque equality classes; no cross-group comparison is ever performed.
// The result is keyed by MergeKey.LookupID.
func GroupProfiles(profiles []models.GuestProfile) map[string]*GuestGroup {
	groups := make(map[string]*GuestGroup)

	for _, profile := range profiles {
		key := DeriveKey(profile)
		id := key.LookupID()
		group, ok := groups[id]
		if !ok {
			group = &GuestGroup{Key: key}
			groups[id] = group
		}
		group.Profiles = append(group.Profiles, profile)
	}

	for _, group := range groups {
		sort.Slice(group.Profiles, func(i, j int) bool {
			return group.Profiles[i].SourceID > group.Profiles[j].SourceID
		})
	}

	return groups
}

// SortedGroupIDs returns the group lookup ids in lexical order so a pass
// processes groups deterministically and re-runs produce identical counts.
func SortedGroupIDs(groups map[string]*GuestGroup) []string {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
