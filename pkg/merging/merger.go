// Package merging collapses a guest group into one canonical record.
package merging

import (
	"github.com/stadlerhof/clover/pkg/identity"
	"github.com/stadlerhof/clover/pkg/models"
)

// MergedGuest is the collapsed form of a group before an identity is
// assigned. It carries no id or customer number; the upserter owns those.
type MergedGuest struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	PhoneNormalized string
	EmailNormalized string
	Street          string
	PostalCode      string
	City            string
	Country         string
	SourceGuestIDs  []int64
	TotalBookings   int
	TotalRevenue    float64
	LastBooking     string
}

// Merge collapses a group's profiles into one record and aggregates booking
// statistics for every contributing source id.
//
// Field rule: profiles arrive newest first; for each field the first
// non-empty value wins, so a newer profile's value is preferred and an older
// profile only fills gaps. Empty never overwrites present.
func Merge(group *identity.GuestGroup, bookings []models.Booking) *MergedGuest {
	if group == nil || len(group.Profiles) == 0 {
		return nil
	}

	merged := &MergedGuest{
		SourceGuestIDs: make([]int64, 0, len(group.Profiles)),
	}

	for _, p := range group.Profiles {
		merged.SourceGuestIDs = append(merged.SourceGuestIDs, p.SourceID)

		takeFirst(&merged.FirstName, p.FirstName)
		takeFirst(&merged.LastName, p.LastName)
		takeFirst(&merged.Email, p.Email)
		takeFirst(&merged.Phone, p.Phone)
		takeFirst(&merged.Street, p.Street)
		takeFirst(&merged.PostalCode, p.PostalCode)
		takeFirst(&merged.City, p.City)
		takeFirst(&merged.Country, p.Country)
	}

	switch group.Key.Kind {
	case identity.KeyKindPhone:
		merged.PhoneNormalized = group.Key.Value
	case identity.KeyKindEmail:
		merged.EmailNormalized = group.Key.Value
	}

	aggregateBookings(merged, bookings)

	return merged
}

// ToCanonical stamps identity and timestamps onto the merged record. The
// caller supplies createdAt from the existing record on the update path so it
// survives overwrites.
func (m *MergedGuest) ToCanonical(id string, customerNumber int64, createdAt, updatedAt string) *models.CanonicalGuest {
	return &models.CanonicalGuest{
		ID:              id,
		CustomerNumber:  customerNumber,
		FirstName:       m.FirstName,
		LastName:        m.LastName,
		Email:           m.Email,
		Phone:           m.Phone,
		PhoneNormalized: m.PhoneNormalized,
		EmailNormalized: m.EmailNormalized,
		Street:          m.Street,
		PostalCode:      m.PostalCode,
		City:            m.City,
		Country:         m.Country,
		SourceGuestIDs:  m.SourceGuestIDs,
		TotalBookings:   m.TotalBookings,
		TotalRevenue:    m.TotalRevenue,
		LastBooking:     m.LastBooking,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}

func takeFirst(dst *string, val string) {
	if *dst == "" && val != "" {
		*dst = val
	}
}

// aggregateBookings counts bookings and sums signed account totals for the
// group's contributing ids. Negative totals (credits/refunds) reduce revenue.
// LastBooking is the greatest ISO arrival date, compared lexically.
func aggregateBookings(merged *MergedGuest, bookings []models.Booking) {
	ids := make(map[int64]struct{}, len(merged.SourceGuestIDs))
	for _, id := range merged.SourceGuestIDs {
		ids[id] = struct{}{}
	}

	for _, b := range bookings {
		if _, ok := ids[b.SourceGuestID]; !ok {
			continue
		}
		merged.TotalBookings++
		merged.TotalRevenue += b.AccountTotal
		if b.Arrival != "" && b.Arrival > merged.LastBooking {
			merged.LastBooking = b.Arrival
		}
	}
}
