// Package token mints and verifies the bearer credentials that drive the claim
// flow. A claim token authorizes one claim attempt for one card; an ownership
// token authorizes profile edits for one card. Neither is ever persisted.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "cardlink/pkg/domain-errors"
)

// Purpose scopes a token to a single operation. A claim token presented on the
// edit path (or vice versa) fails verification at the service layer.
type Purpose string

const (
	PurposeClaim     Purpose = "claim"
	PurposeOwnership Purpose = "own"
)

// Claims is the signed payload of both token kinds.
type Claims struct {
	UID     string  `json:"uid"`
	Purpose Purpose `json:"purpose"`
	jwt.RegisteredClaims
}

// Codec signs and verifies card tokens with a process-wide secret injected at
// startup. It holds no other state; given the same key and clock it is
// deterministic.
type Codec struct {
	signingKey        []byte
	issuer            string
	claimTokenTTL     time.Duration
	ownershipTokenTTL time.Duration
	now               func() time.Time
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithClock sets the clock function for testability.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec constructs a Codec. A claimTokenTTL of zero mints claim tokens
// without an expiry, so a printed claim link stays valid until the card is
// claimed.
func NewCodec(signingKey string, claimTokenTTL, ownershipTokenTTL time.Duration, opts ...CodecOption) *Codec {
	c := &Codec{
		signingKey:        []byte(signingKey),
		issuer:            "cardlink",
		claimTokenTTL:     claimTokenTTL,
		ownershipTokenTTL: ownershipTokenTTL,
		now:               time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// errInvalid is the single failure surfaced by Verify. Malformed, wrong
// signature, and expired are deliberately indistinguishable to callers.
var errInvalid = dErrors.New(dErrors.CodeUnauthorized, "invalid token")

// IssueClaimToken mints a claim token for uid.
func (c *Codec) IssueClaimToken(uid string) (string, error) {
	return c.issue(uid, PurposeClaim, c.claimTokenTTL)
}

// IssueOwnershipToken mints an ownership token for uid.
func (c *Codec) IssueOwnershipToken(uid string) (string, error) {
	return c.issue(uid, PurposeOwnership, c.ownershipTokenTTL)
}

func (c *Codec) issue(uid string, purpose Purpose, ttl time.Duration) (string, error) {
	now := c.now()
	claims := Claims{
		UID:     uid,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   c.issuer,
			ID:       uuid.NewString(),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify checks signature, format, and (when embedded) expiry. Every failure
// mode returns the same invalid-token error to avoid oracle leakage.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return c.signingKey, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil || !parsed.Valid {
		return nil, errInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.UID == "" {
		return nil, errInvalid
	}
	return claims, nil
}
