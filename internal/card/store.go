package card

import (
	"context"
	"time"
)

// Store is interface-driven to keep the claim logic testable and to allow
// swapping in-memory and PostgreSQL persistence without rewiring business
// code.
//
// ClaimIfUnclaimed is the defining operation: a conditional write whose
// predicate ("claim timestamp is absent") is evaluated atomically with the
// write itself. Under concurrent invocation for one uid at most one caller
// observes claimed == true; everyone else observes claimed == false, and
// readers never see a partially claimed row.
type Store interface {
	Get(ctx context.Context, uid string) (Card, error)
	Create(ctx context.Context, c Card) error
	ClaimIfUnclaimed(ctx context.Context, uid string, profile Profile, claimedByEmail string, at time.Time) (claimed bool, err error)
	// UpdateProfile overwrites profile fields only. It never touches uid,
	// created_at, claimed_at, or claimed_by_email. Last write wins under
	// concurrent calls.
	UpdateProfile(ctx context.Context, uid string, profile Profile) error
	List(ctx context.Context, limit, offset int) ([]Card, error)
}
