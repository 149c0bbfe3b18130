package httptransport

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardlink/internal/card"
	"cardlink/internal/claim"
	"cardlink/internal/event"
	"cardlink/internal/token"
	"cardlink/pkg/testutil"
)

type fixture struct {
	router http.Handler
	store  *card.MemoryStore
	events *event.MemoryStore
	codec  *token.Codec
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := card.NewMemoryStore()
	events := event.NewMemoryStore()
	codec := token.NewCodec("test-signing-key", 0, 90*24*time.Hour)
	svc := claim.NewService(store, codec, nil)
	recorder := event.NewRecorder(events, nil, log)

	h := NewHandler(svc, store, recorder, log, "test-admin-key")
	return &fixture{router: NewRouter(h), store: store, events: events, codec: codec}
}

func (f *fixture) seed(t *testing.T, uid string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, f.store.Create(context.Background(), card.Card{UID: uid, CreatedAt: now, UpdatedAt: now}))
}

func (f *fixture) claimCard(t *testing.T, uid string, profile ProfilePayload) string {
	t.Helper()
	lookup := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/cards/"+uid))
	testutil.AssertStatus(t, lookup, http.StatusOK)
	res := testutil.UnmarshalResponse[lookupResponse](t, lookup)
	require.NotEmpty(t, res.ClaimToken)

	claimed := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/cards/"+uid+"/claim",
		claimRequest{ClaimToken: res.ClaimToken, Profile: profile, EmailForLogin: "ada@example.com"}))
	testutil.AssertStatus(t, claimed, http.StatusOK)
	return testutil.UnmarshalResponse[claimResponse](t, claimed).OwnershipToken
}

func TestClaimLifecycle(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "card-1")
	var claimToken, ownToken string

	testutil.Given(t, "an unclaimed card", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/cards/card-1"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		res := testutil.UnmarshalResponse[lookupResponse](t, rr)
		require.False(t, res.Claimed)
		claimToken = res.ClaimToken
	})

	testutil.When(t, "a visitor claims it", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/cards/card-1/claim",
			claimRequest{ClaimToken: claimToken, Profile: ProfilePayload{Name: "Ada Lovelace"}, EmailForLogin: "ada@example.com"}))
		testutil.AssertStatus(t, rr, http.StatusOK)
		ownToken = testutil.UnmarshalResponse[claimResponse](t, rr).OwnershipToken
		require.NotEmpty(t, ownToken)
	})

	testutil.Then(t, "the card is owned and editable only by the owner", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/cards/card-1"))
		res := testutil.UnmarshalResponse[lookupResponse](t, rr)
		require.True(t, res.Claimed)
		assert.Empty(t, res.ClaimToken)

		edit := testutil.NewJSONRequest(t, http.MethodPut, "/cards/card-1",
			editRequest{Profile: ProfilePayload{Name: "Ada Lovelace", Title: "Engineer"}})
		edit.Header.Set("Authorization", "Bearer "+ownToken)
		testutil.AssertStatus(t, testutil.DoRequest(f.router, edit), http.StatusOK)
	})
}

func TestLookup_Unknown(t *testing.T) {
	f := newFixture(t)
	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/cards/missing"))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}

func TestLookup_Unclaimed(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "card-1")

	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/cards/card-1"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	res := testutil.UnmarshalResponse[lookupResponse](t, rr)
	assert.False(t, res.Claimed)
	assert.NotEmpty(t, res.ClaimToken)
	assert.Nil(t, res.Profile)
}

func TestLookup_Claimed(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "card-1")
	f.claimCard(t, "card-1", ProfilePayload{Name: "Ada Lovelace"})

	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/cards/card-1"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	res := testutil.UnmarshalResponse[lookupResponse](t, rr)
	assert.True(t, res.Claimed)
	assert.Empty(t, res.ClaimToken)
	require.NotNil(t, res.Profile)
	assert.Equal(t, "Ada Lovelace", res.Profile.Name)
}

func TestClaim_MissingToken(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "card-1")

	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/cards/card-1/claim",
		claimRequest{Profile: ProfilePayload{Name: "Ada"}}))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "missing_params")
}

func TestClaim_InvalidToken(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "card-1")

	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/cards/card-1/claim",
		claimRequest{ClaimToken: "garbage"}))
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "invalid_credential")
}

func TestClaim_InvalidProfileEmail(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "card-1")

	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/cards/card-1/claim",
		claimRequest{ClaimToken: "whatever", Profile: ProfilePayload{Email: "not-an-email"}}))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "missing_params")
}

func TestClaim_ThenConflict(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "card-1")

	ownTok := f.claimCard(t, "card-1", ProfilePayload{Name: "Ada Lovelace"})
	require.NotEmpty(t, ownTok)

	// A freshly minted token cannot help once the card is claimed.
	lookup := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/cards/card-1"))
	res := testutil.UnmarshalResponse[lookupResponse](t, lookup)
	assert.True(t, res.Claimed)

	stale, err := f.codec.IssueClaimToken("card-1")
	require.NoError(t, err)
	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/cards/card-1/claim",
		claimRequest{ClaimToken: stale, Profile: ProfilePayload{Name: "Mallory"}}))
	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "already_claimed")
}

func TestEdit_HappyPath(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "card-1")
	ownTok := f.claimCard(t, "card-1", ProfilePayload{Name: "Ada"})

	req := testutil.NewJSONRequest(t, http.MethodPut, "/cards/card-1",
		editRequest{Profile: ProfilePayload{Name: "Ada Lovelace", Title: "Engineer"}})
	req.Header.Set("Authorization", "Bearer "+ownTok)

	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	stored, err := f.store.Get(context.Background(), "card-1")
	require.NoError(t, err)
	assert.Equal(t, "Engineer", stored.Profile.Title)
	assert.True(t, stored.Claim.Claimed())
}

func TestEdit_NoToken(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "card-1")

	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPut, "/cards/card-1",
		editRequest{Profile: ProfilePayload{Name: "x"}}))
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthenticated")
}

func TestEdit_TokenForOtherCard(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "card-a")
	f.seed(t, "card-b")
	ownTok := f.claimCard(t, "card-a", ProfilePayload{Name: "Ada"})

	req := testutil.NewJSONRequest(t, http.MethodPut, "/cards/card-b",
		editRequest{Profile: ProfilePayload{Name: "x"}})
	req.Header.Set("Authorization", "Bearer "+ownTok)

	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
}

func TestExportVCard(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "card-1")
	f.claimCard(t, "card-1", ProfilePayload{
		Name:   "Ada Lovelace",
		Mobile: "+1-555-0100",
	})

	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/cards/card-1/vcard"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Equal(t, "text/vcard; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="card-1.vcf"`, rr.Header().Get("Content-Disposition"))

	body := string(testutil.ReadBody(t, rr))
	assert.Contains(t, body, "BEGIN:VCARD")
	assert.Contains(t, body, "N:Lovelace;Ada;;;")
	assert.Contains(t, body, "TEL;TYPE=CELL:+1-555-0100")
}

func TestExportVCard_EmptyProfile(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "card-1")

	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/cards/card-1/vcard"))
	testutil.AssertStatus(t, rr, http.StatusNoContent)
	assert.Empty(t, testutil.ReadBody(t, rr))
}

func TestExportVCard_Unknown(t *testing.T) {
	f := newFixture(t)
	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/cards/missing/vcard"))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}

func TestRecordEvent(t *testing.T) {
	f := newFixture(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/events",
		recordEventRequest{UID: "card-1", Kind: "visit"})
	req.Header.Set("User-Agent", "curl/8.0")

	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	events, err := f.events.ListByUID(context.Background(), "card-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "visit", events[0].Kind)
	assert.Equal(t, "curl/8.0", events[0].UserAgent)
}

func TestRecordEvent_MalformedBodyStillOK(t *testing.T) {
	f := newFixture(t)

	req := testutil.NewRequest(t, http.MethodPost, "/events")
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	events, err := f.events.ListByUID(context.Background(), event.UnknownUID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.DefaultKind, events[0].Kind)
}
