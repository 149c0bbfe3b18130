// Package event records scan/visit analytics. Events are append-only facts;
// there is no update, no delete, and no referential integrity with cards. An
// event may name an identifier that never existed.
package event

import "time"

// Sentinels substituted for omitted fields so the events table never carries
// empty discriminators.
const (
	UnknownUID  = "unknown"
	DefaultKind = "visit"
)

// Event is one recorded scan or visit.
type Event struct {
	ID         int64
	UID        string
	Kind       string
	UserAgent  string
	Browser    string
	OS         string
	RemoteAddr string
	CreatedAt  time.Time
}
