package card

import "time"

// Profile holds the editable fields of a card. Every field is optional; the
// transport layer validates and sanitizes each one individually so a profile
// never travels as an untyped bag.
type Profile struct {
	Name        string            `json:"name,omitempty"`
	Company     string            `json:"company,omitempty"`
	Title       string            `json:"title,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	Mobile      string            `json:"mobile,omitempty"`
	Email       string            `json:"email,omitempty"`
	EmailPublic string            `json:"email_public,omitempty"`
	Website     string            `json:"website,omitempty"`
	Address     string            `json:"address,omitempty"`
	ImageURL    string            `json:"image_url,omitempty"`
	Socials     map[string]string `json:"socials,omitempty"`
}

// ClaimState is a two-state value: unclaimed (At == nil) or claimed at a fixed
// instant. The timestamp is the sole discriminator of claim state; there is
// no separate flag, and no field-presence heuristic anywhere in the code.
type ClaimState struct {
	At      *time.Time `json:"at,omitempty"`
	ByEmail string     `json:"by_email,omitempty"`
}

// Claimed reports whether the card has been claimed.
func (s ClaimState) Claimed() bool {
	return s.At != nil
}

// ClaimedAt builds the claimed state for a successful claim.
func ClaimedAt(at time.Time, byEmail string) ClaimState {
	return ClaimState{At: &at, ByEmail: byEmail}
}

// Card is one row per identifier. UID is opaque, globally unique, assigned at
// provisioning time, and immutable. Claim transitions exactly once and never
// back; the edit path cannot touch it.
type Card struct {
	UID       string
	Profile   Profile
	Claim     ClaimState
	CreatedAt time.Time
	UpdatedAt time.Time
}
