package card

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"cardlink/pkg/sentinel"
)

// PostgresStore persists cards in PostgreSQL. The claim transition is a single
// conditional UPDATE whose predicate is evaluated atomically with the write,
// so readers observe either the fully unclaimed or the fully claimed row and
// at most one concurrent claimant sees RowsAffected == 1.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed card store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const cardColumns = `
	uid, name, company, title, phone, mobile, email, email_public,
	website, address, image_url, socials, claimed_at, claimed_by_email,
	created_at, updated_at
`

func (s *PostgresStore) Get(ctx context.Context, uid string) (Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE uid = $1`
	c, err := scanCard(s.db.QueryRowContext(ctx, query, uid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Card{}, sentinel.ErrNotFound
		}
		return Card{}, fmt.Errorf("get card: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) Create(ctx context.Context, c Card) error {
	socials, err := marshalSocials(c.Profile.Socials)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err = s.db.ExecContext(ctx, query,
		c.UID,
		c.Profile.Name, c.Profile.Company, c.Profile.Title,
		c.Profile.Phone, c.Profile.Mobile,
		c.Profile.Email, c.Profile.EmailPublic,
		c.Profile.Website, c.Profile.Address, c.Profile.ImageURL,
		socials,
		c.Claim.At, c.Claim.ByEmail,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

// ClaimIfUnclaimed is the linearization point of the claim flow. The WHERE
// clause doubles as the compare half of a compare-and-swap on claimed_at.
func (s *PostgresStore) ClaimIfUnclaimed(ctx context.Context, uid string, profile Profile, claimedByEmail string, at time.Time) (bool, error) {
	socials, err := marshalSocials(profile.Socials)
	if err != nil {
		return false, err
	}
	query := `
		UPDATE cards SET
			name = $2, company = $3, title = $4, phone = $5, mobile = $6,
			email = $7, email_public = $8, website = $9, address = $10,
			image_url = $11, socials = $12,
			claimed_at = $13, claimed_by_email = $14, updated_at = $13
		WHERE uid = $1 AND claimed_at IS NULL
	`
	res, err := s.db.ExecContext(ctx, query,
		uid,
		profile.Name, profile.Company, profile.Title, profile.Phone, profile.Mobile,
		profile.Email, profile.EmailPublic, profile.Website, profile.Address,
		profile.ImageURL, socials,
		at, claimedByEmail,
	)
	if err != nil {
		return false, fmt.Errorf("claim card: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim card rows affected: %w", err)
	}
	if affected == 1 {
		return true, nil
	}

	// Zero rows means either the card is already claimed or the uid does not
	// exist; distinguish so callers can report NotFound correctly.
	var exists bool
	err = s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM cards WHERE uid = $1)`, uid).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("claim card existence check: %w", err)
	}
	if !exists {
		return false, sentinel.ErrNotFound
	}
	return false, nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, uid string, profile Profile) error {
	socials, err := marshalSocials(profile.Socials)
	if err != nil {
		return err
	}
	query := `
		UPDATE cards SET
			name = $2, company = $3, title = $4, phone = $5, mobile = $6,
			email = $7, email_public = $8, website = $9, address = $10,
			image_url = $11, socials = $12, updated_at = $13
		WHERE uid = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uid,
		profile.Name, profile.Company, profile.Title, profile.Phone, profile.Mobile,
		profile.Email, profile.EmailPublic, profile.Website, profile.Address,
		profile.ImageURL, socials,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards ORDER BY uid LIMIT $1 OFFSET $2`
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	cards := []Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return cards, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (Card, error) {
	var (
		c         Card
		socials   []byte
		claimedAt sql.NullTime
	)
	err := row.Scan(
		&c.UID,
		&c.Profile.Name, &c.Profile.Company, &c.Profile.Title,
		&c.Profile.Phone, &c.Profile.Mobile,
		&c.Profile.Email, &c.Profile.EmailPublic,
		&c.Profile.Website, &c.Profile.Address, &c.Profile.ImageURL,
		&socials,
		&claimedAt, &c.Claim.ByEmail,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return Card{}, err
	}
	if claimedAt.Valid {
		at := claimedAt.Time
		c.Claim.At = &at
	}
	if len(socials) > 0 {
		if err := json.Unmarshal(socials, &c.Profile.Socials); err != nil {
			return Card{}, fmt.Errorf("unmarshal socials: %w", err)
		}
	}
	return c, nil
}

func marshalSocials(socials map[string]string) ([]byte, error) {
	if len(socials) == 0 {
		return []byte("{}"), nil
	}
	out, err := json.Marshal(socials)
	if err != nil {
		return nil, fmt.Errorf("marshal socials: %w", err)
	}
	return out, nil
}
