// Package identity derives merge keys and partitions raw guest profiles into
// groups that represent the same physical person.
package identity

import (
	"strconv"

	"github.com/stadlerhof/clover/pkg/models"
	"github.com/stadlerhof/clover/pkg/normalizers"
)

// KeyKind tags which channel a merge key was derived from.
type KeyKind string

const (
	// KeyKindPhone keys a group by normalized phone number.
	KeyKindPhone KeyKind = "phone"
	// KeyKindEmail keys a group by normalized email address.
	KeyKindEmail KeyKind = "email"
	// KeyKindSource is the per-profile fallback for contact-less records.
	// Fallback-keyed profiles never merge with anything else, even if they
	// belong to the same person as another record. Known limitation.
	KeyKindSource KeyKind = "source"
)

// MergeKey is the engine's sole notion of "same person". Derivation is
// deterministic and total: every profile yields exactly one key.
type MergeKey struct {
	Kind  KeyKind
	Value string
}

// LookupID renders the key in the durable lookup document form.
func (k MergeKey) LookupID() string {
	return string(k.Kind) + "_" + k.Value
}

// Contact reports whether the key was derived from contact data. Only
// contact-derived keys are ever recorded in the lookup index.
func (k MergeKey) Contact() bool {
	return k.Kind == KeyKindPhone || k.Kind == KeyKindEmail
}

// DeriveKey picks one merge key for a profile, in priority order:
// normalized phone, then normalized email, then the source id fallback.
func DeriveKey(profile models.GuestProfile) MergeKey {
	if phone, ok := normalizers.Phone(profile.Phone); ok {
		return MergeKey{Kind: KeyKindPhone, Value: phone}
	}
	if email, ok := normalizers.Email(profile.Email); ok {
		return MergeKey{Kind: KeyKindEmail, Value: email}
	}
	return MergeKey{Kind: KeyKindSource, Value: strconv.FormatInt(profile.SourceID, 10)}
}
