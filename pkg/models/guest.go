package models

// GuestProfile is a raw guest row from the property-management system.
// Several profiles may describe the same physical person (walk-in, channel
// import, repeat stays under different spellings).
// Column names follow the CapHotel GKT table.
type GuestProfile struct {
	SourceID   int64  `json:"source_id" db:"gast"`
	FirstName  string `json:"first_name" db:"vorn"`
	LastName   string `json:"last_name" db:"nacn"`
	Email      string `json:"email" db:"mail"`
	Phone      string `json:"phone" db:"teln"`
	Street     string `json:"street" db:"stra"`
	PostalCode string `json:"postal_code" db:"polz"`
	City       string `json:"city" db:"ortb"`
	Country    string `json:"country" db:"land"`
}

// Booking is a raw booking row with its summed account total. Used only for
// aggregation onto the canonical guest, never for identity.
type Booking struct {
	BookingID     int64   `json:"booking_id" db:"resn"`
	SourceGuestID int64   `json:"source_guest_id" db:"gast"`
	Arrival       string  `json:"arrival" db:"andf"` // ISO date (YYYY-MM-DD)
	AccountTotal  float64 `json:"account_total" db:"account_total"`
}

// CanonicalGuest is the deduplicated registry entry for one physical person.
// JSON field names match the document schema the web app reads, so they stay
// camelCase rather than following the API conventions elsewhere.
type CanonicalGuest struct {
	ID              string  `json:"id"`             // "G<customerNumber>"
	CustomerNumber  int64   `json:"customerNumber"` // immutable once assigned
	FirstName       string  `json:"firstName"`
	LastName        string  `json:"lastName"`
	Email           string  `json:"email,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	PhoneNormalized string  `json:"phoneNormalized,omitempty"`
	EmailNormalized string  `json:"emailNormalized,omitempty"`
	Street          string  `json:"street,omitempty"`
	PostalCode      string  `json:"postalCode,omitempty"`
	City            string  `json:"city,omitempty"`
	Country         string  `json:"country,omitempty"`
	SourceGuestIDs  []int64 `json:"sourceGuestIds"`
	TotalBookings   int     `json:"totalBookings"`
	TotalRevenue    float64 `json:"totalRevenue"`
	LastBooking     string  `json:"lastBooking,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// LookupEntry maps a merge key to an already-assigned canonical identity.
// Once written it is never re-keyed; its customer number never changes.
type LookupEntry struct {
	GuestID        string `json:"guestId"`
	CustomerNumber int64  `json:"customerNumber"`
}
