package event

import (
	"context"
	"fmt"
	"time"

	"github.com/mssola/useragent"
	"github.com/sirupsen/logrus"

	platformredis "cardlink/internal/platform/redis"
)

// ScanCounter keeps a cheap running total of scans per identifier. Counting is
// best-effort, like the rest of the recorder.
type ScanCounter interface {
	Incr(ctx context.Context, uid string) error
}

// RedisCounter counts scans in Redis.
type RedisCounter struct {
	client *platformredis.Client
}

func NewRedisCounter(client *platformredis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Incr(ctx context.Context, uid string) error {
	return c.client.Client.Incr(ctx, "cardlink:scans:"+uid).Err()
}

// Recorder appends analytics events. Every failure is logged and swallowed:
// analytics must never block or fail the user action that triggered them.
type Recorder struct {
	store   Store
	counter ScanCounter
	log     *logrus.Logger
	now     func() time.Time
}

// NewRecorder constructs a Recorder. counter may be nil when Redis is not
// configured.
func NewRecorder(store Store, counter ScanCounter, log *logrus.Logger) *Recorder {
	return &Recorder{store: store, counter: counter, log: log, now: time.Now}
}

// Record appends one event. Omitted uid/kind fall back to sentinels. The
// browser and OS columns come from parsing the user agent; parsing never
// fails, it just yields empty strings for unrecognizable agents.
func (r *Recorder) Record(ctx context.Context, uid, kind, rawUA, remoteAddr string) {
	if uid == "" {
		uid = UnknownUID
	}
	if kind == "" {
		kind = DefaultKind
	}

	e := Event{
		UID:        uid,
		Kind:       kind,
		UserAgent:  rawUA,
		RemoteAddr: remoteAddr,
		CreatedAt:  r.now(),
	}
	if rawUA != "" {
		ua := useragent.New(rawUA)
		name, version := ua.Browser()
		e.Browser = name
		if version != "" {
			e.Browser = fmt.Sprintf("%s %s", name, version)
		}
		e.OS = ua.OS()
	}

	if err := r.store.Append(ctx, e); err != nil {
		r.log.WithError(err).WithField("uid", uid).Warn("event append failed")
	}
	if r.counter != nil {
		if err := r.counter.Incr(ctx, uid); err != nil {
			r.log.WithError(err).WithField("uid", uid).Warn("scan counter failed")
		}
	}
}
