package event

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeCounter struct {
	counts map[string]int
	err    error
}

func (c *fakeCounter) Incr(_ context.Context, uid string) error {
	if c.err != nil {
		return c.err
	}
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[uid]++
	return nil
}

type failingStore struct{}

func (failingStore) Append(context.Context, Event) error { return errors.New("db down") }
func (failingStore) ListByUID(context.Context, string) ([]Event, error) {
	return nil, errors.New("db down")
}

func TestRecord_AppendsWithParsedUserAgent(t *testing.T) {
	store := NewMemoryStore()
	counter := &fakeCounter{}
	rec := NewRecorder(store, counter, quietLogger())

	const chromeUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	rec.Record(context.Background(), "card-1", "visit", chromeUA, "203.0.113.9")

	events, err := store.ListByUID(context.Background(), "card-1")
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	assert.Equal(t, "visit", e.Kind)
	assert.Equal(t, chromeUA, e.UserAgent)
	assert.Contains(t, e.Browser, "Chrome")
	assert.Equal(t, "Linux x86_64", e.OS)
	assert.Equal(t, "203.0.113.9", e.RemoteAddr)
	assert.False(t, e.CreatedAt.IsZero())

	assert.Equal(t, 1, counter.counts["card-1"])
}

func TestRecord_DefaultsForOmittedFields(t *testing.T) {
	store := NewMemoryStore()
	rec := NewRecorder(store, nil, quietLogger())

	rec.Record(context.Background(), "", "", "", "")

	events, err := store.ListByUID(context.Background(), UnknownUID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, DefaultKind, events[0].Kind)
	assert.Empty(t, events[0].Browser)
}

func TestRecord_SwallowsStoreFailure(t *testing.T) {
	rec := NewRecorder(failingStore{}, &fakeCounter{err: errors.New("redis down")}, quietLogger())

	// Must not panic or surface anything.
	rec.Record(context.Background(), "card-1", "visit", "curl/8.0", "")
}
