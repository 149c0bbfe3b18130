// Package claim implements the claim/ownership state machine: the one-time
// transition of a card from unclaimed to owned, and the credential checks
// gating subsequent edits. All coordination is pushed into the card store's
// conditional write; this layer holds no locks.
package claim

import (
	"context"
	"errors"
	"time"

	"cardlink/internal/card"
	"cardlink/internal/claim/metrics"
	"cardlink/internal/token"
	dErrors "cardlink/pkg/domain-errors"
	"cardlink/pkg/sentinel"
)

// Codec is the credential surface the state machine needs.
type Codec interface {
	IssueClaimToken(uid string) (string, error)
	IssueOwnershipToken(uid string) (string, error)
	Verify(tokenString string) (*token.Claims, error)
}

// Service orchestrates lookup, claim, and edit against the card store.
type Service struct {
	cards   card.Store
	codec   Codec
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock function for testability.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs the state machine. metrics may be nil in tests.
func NewService(cards card.Store, codec Codec, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{cards: cards, codec: codec, metrics: m, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

var (
	errNotFound       = dErrors.New(dErrors.CodeNotFound, "card not found")
	errInvalidToken   = dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	errAlreadyClaimed = dErrors.New(dErrors.CodeConflict, "card already claimed")
	errWrongCard      = dErrors.New(dErrors.CodeForbidden, "token is scoped to a different card")
)

// LookupResult is the outcome of Lookup. Unclaimed cards carry a fresh claim
// token; claimed cards carry the profile view and no token.
type LookupResult struct {
	UID        string
	Claimed    bool
	ClaimToken string
	Card       card.Card
}

// Lookup resolves a scan of the card's QR code. Claim tokens are never
// persisted: every unclaimed lookup mints a fresh, interchangeable one. The
// store's conditional write, not token possession, arbitrates the eventual
// race.
func (s *Service) Lookup(ctx context.Context, uid string) (LookupResult, error) {
	c, err := s.cards.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return LookupResult{}, errNotFound
		}
		return LookupResult{}, err
	}

	if c.Claim.Claimed() {
		s.metrics.RecordLookup("claimed")
		return LookupResult{UID: uid, Claimed: true, Card: c}, nil
	}

	claimToken, err := s.codec.IssueClaimToken(uid)
	if err != nil {
		return LookupResult{}, err
	}
	s.metrics.RecordLookup("unclaimed")
	return LookupResult{UID: uid, ClaimToken: claimToken}, nil
}

// ClaimResult is returned to the winning claimant.
type ClaimResult struct {
	UID            string
	OwnershipToken string
}

// Claim validates the claim credential and attempts the one-time transition.
// Losing the race yields AlreadyClaimed, which is terminal: retrying cannot
// change the outcome, and callers must treat it as "someone already owns this,
// possibly you".
func (s *Service) Claim(ctx context.Context, uid, claimToken string, profile card.Profile, emailForLogin string) (ClaimResult, error) {
	claims, err := s.codec.Verify(claimToken)
	if err != nil {
		s.metrics.RecordClaim("invalid_token")
		return ClaimResult{}, errInvalidToken
	}
	// A claim token minted for another card must not transfer; purpose
	// confusion with an ownership token is rejected the same way.
	if claims.Purpose != token.PurposeClaim || claims.UID != uid {
		s.metrics.RecordClaim("invalid_token")
		return ClaimResult{}, errInvalidToken
	}

	claimed, err := s.cards.ClaimIfUnclaimed(ctx, uid, profile, emailForLogin, s.now())
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return ClaimResult{}, errNotFound
		}
		return ClaimResult{}, err
	}
	if !claimed {
		s.metrics.RecordClaim("lost")
		return ClaimResult{}, errAlreadyClaimed
	}

	ownToken, err := s.codec.IssueOwnershipToken(uid)
	if err != nil {
		return ClaimResult{}, err
	}
	s.metrics.RecordClaim("won")
	return ClaimResult{UID: uid, OwnershipToken: ownToken}, nil
}

// EditProfile applies an authenticated profile edit. The ownership token only
// authorizes edits to its own card: a structurally valid token for another uid
// is Forbidden, not InvalidCredential.
func (s *Service) EditProfile(ctx context.Context, uid, ownershipToken string, profile card.Profile) error {
	claims, err := s.codec.Verify(ownershipToken)
	if err != nil || claims.Purpose != token.PurposeOwnership {
		return errInvalidToken
	}
	if claims.UID != uid {
		return errWrongCard
	}

	if err := s.cards.UpdateProfile(ctx, uid, profile); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return errNotFound
		}
		return err
	}
	s.metrics.RecordEdit()
	return nil
}
