package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skybook/models"
	"skybook/services/farecache"
	"skybook/services/provider"
	"skybook/utils"
)

// fakeProvider is an in-memory provider.Client with scriptable failures.
type fakeProvider struct {
	offers     []models.Offer
	quoteTotal float64
	catalog    models.ServiceCatalog

	searchFailures int // transient failures before Search succeeds
	bookErr        error
	ticketErr      error
	directErr      error
	cancelErr      error

	searchCalls int
	quoteCalls  int
	bookCalls   int
	ticketCalls int
	directCalls int
	cancelCalls int
}

func (f *fakeProvider) Search(ctx context.Context, params models.SearchParams) (*provider.SearchResult, error) {
	f.searchCalls++
	if f.searchFailures > 0 {
		f.searchFailures--
		return nil, provider.NewTransientError("unavailable", "provider overloaded")
	}
	return &provider.SearchResult{TraceID: "trace-1", Offers: f.offers}, nil
}

func (f *fakeProvider) FareQuote(ctx context.Context, traceID string, resultIndex int) (*models.FareQuote, error) {
	f.quoteCalls++
	return &models.FareQuote{Total: f.quoteTotal, Currency: "INR", TraceID: "quote-trace-1"}, nil
}

func (f *fakeProvider) ServiceCatalog(ctx context.Context, traceID string, resultIndex int) (*models.ServiceCatalog, error) {
	return &f.catalog, nil
}

func (f *fakeProvider) Book(ctx context.Context, req provider.BookingRequest) (*provider.BookingResult, error) {
	f.bookCalls++
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	return &provider.BookingResult{BookingID: "BK-1", PNR: "PNR123"}, nil
}

func (f *fakeProvider) Ticket(ctx context.Context, req provider.TicketRequest) (*provider.TicketResult, error) {
	f.ticketCalls++
	if f.ticketErr != nil {
		return nil, f.ticketErr
	}
	return &provider.TicketResult{BookingID: req.BookingID, PNR: req.PNR, TicketNumber: "TKT-9"}, nil
}

func (f *fakeProvider) TicketDirect(ctx context.Context, req provider.BookingRequest) (*provider.TicketResult, error) {
	f.directCalls++
	if f.directErr != nil {
		return nil, f.directErr
	}
	return &provider.TicketResult{BookingID: "BK-1", PNR: "PNR123", TicketNumber: "TKT-9"}, nil
}

func (f *fakeProvider) Cancel(ctx context.Context, req provider.CancelRequest) error {
	f.cancelCalls++
	return f.cancelErr
}

// fakeRecords is an in-memory BookingRecordRepository.
type fakeRecords struct {
	bookings      map[string]models.BookingRecord
	cancellations []models.CancellationRecord
	createdIDs    []string
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{bookings: make(map[string]models.BookingRecord)}
}

func (r *fakeRecords) Create(ctx context.Context, record models.BookingRecord) (string, error) {
	r.bookings[record.PNR] = record
	r.createdIDs = append(r.createdIDs, record.ID)
	return record.ID, nil
}

var errRecordNotFound = errors.New("booking record not found")

func (r *fakeRecords) GetByPNR(ctx context.Context, pnr string) (*models.BookingRecord, error) {
	record, ok := r.bookings[pnr]
	if !ok {
		return nil, errRecordNotFound
	}
	return &record, nil
}

func (r *fakeRecords) GetByUserID(ctx context.Context, userID string) ([]models.BookingRecord, error) {
	var out []models.BookingRecord
	for _, record := range r.bookings {
		if record.UserID == userID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (r *fakeRecords) UpdateStatus(ctx context.Context, pnr string, status models.BookingStatus) error {
	record := r.bookings[pnr]
	record.Status = status
	r.bookings[pnr] = record
	return nil
}

func (r *fakeRecords) SaveCancellation(ctx context.Context, record models.CancellationRecord) (string, error) {
	r.cancellations = append(r.cancellations, record)
	return record.ID, nil
}

type testEnv struct {
	svc      *DefaultBookingSessionService
	provider *fakeProvider
	records  *fakeRecords
	now      time.Time
}

func (e *testEnv) advance(d time.Duration) { e.now = e.now.Add(d) }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		now: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		provider: &fakeProvider{
			offers: []models.Offer{
				{Airline: "Air India", FlightNumber: "AI-123", Origin: "DEL", Destination: "BOM",
					Departure: "08:00", Arrival: "10:15", BaseFare: 5000, Taxes: 500, Total: 5500,
					Currency: "INR", ResultIndex: 0},
				{Airline: "IndiGo", FlightNumber: "6E-456", Origin: "DEL", Destination: "BOM",
					Departure: "09:30", Arrival: "11:45", BaseFare: 4400, Taxes: 400, Total: 4800,
					Currency: "INR", IsLCC: true, ResultIndex: 1},
				{Airline: "Vistara", FlightNumber: "UK-789", Origin: "DEL", Destination: "BOM",
					Departure: "14:00", Arrival: "16:20", BaseFare: 5600, Taxes: 600, Total: 6200,
					Currency: "INR", ResultIndex: 2},
			},
			quoteTotal: 5500,
			catalog: models.ServiceCatalog{
				Meals: []models.ServiceOption{
					{Code: "VGML", Kind: models.ServiceMeal, Description: "Veg meal", Price: 200},
				},
				Seats: []models.ServiceOption{
					{Code: "SEAT-W", Kind: models.ServiceSeat, Description: "Window seat", Price: 150},
				},
				Baggage: []models.ServiceOption{
					{Code: "BAG15", Kind: models.ServiceBaggage, Description: "15kg bag", Price: 500},
				},
			},
		},
		records: newFakeRecords(),
	}
	env.svc = &DefaultBookingSessionService{
		Store:    NewMemorySessionStore(),
		Cache:    farecache.NewMemoryCacheWithClock(15*time.Minute, func() time.Time { return env.now }),
		Provider: env.provider,
		Retry:    provider.RetryPolicy{MaxAttempts: 3, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond},
		Records:  env.records,
		Notifier: nopDispatcher{},
		Locks:    utils.NewSessionLocks(),
		Policy:   Policy{SessionTTL: 30 * time.Minute, CancellationFee: 1000, Currency: "INR"},
		Now:      func() time.Time { return env.now },
	}
	return env
}

type nopDispatcher struct{}

func (nopDispatcher) DispatchBooking(ctx context.Context, record models.BookingRecord) error {
	return nil
}
func (nopDispatcher) DispatchCancellation(ctx context.Context, record models.CancellationRecord) error {
	return nil
}

func testParams() models.SearchParams {
	return models.SearchParams{Origin: "DEL", Destination: "BOM", Date: "2024-01-16", Adults: 1, Cabin: models.CabinEconomy}
}

func leadPax() models.Passenger {
	return models.Passenger{
		FullName: "John Doe", DateOfBirth: "1990-01-15", Gender: "Male",
		Type: models.PassengerAdult, Phone: "9876543210", Email: "john@email.com",
	}
}

func mealSelection() []models.ServiceSelection {
	return []models.ServiceSelection{{Code: "VGML", Kind: models.ServiceMeal, Description: "Veg meal", Price: 200}}
}

func baggageSelection() []models.ServiceSelection {
	return []models.ServiceSelection{{Code: "BAG15", Kind: models.ServiceBaggage, Description: "15kg bag", Price: 500}}
}

// advanceToConfirm drives a fresh session to CONFIRMING_DETAILS on the
// non-LCC branch.
func advanceToConfirm(t *testing.T, env *testEnv, user string) {
	t.Helper()
	ctx := context.Background()
	_, _, err := env.svc.StartSearch(ctx, user, testParams())
	require.NoError(t, err)
	_, _, err = env.svc.SelectOffer(ctx, user, 0)
	require.NoError(t, err)
	_, _, err = env.svc.ConfirmFare(ctx, user)
	require.NoError(t, err)
	_, err = env.svc.AddServices(ctx, user, mealSelection())
	require.NoError(t, err)
	_, _, err = env.svc.AddPassenger(ctx, user, leadPax())
	require.NoError(t, err)
}

func TestFullBookingFlowNonLCC(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := "user-1"

	session, offers, err := env.svc.StartSearch(ctx, user, testParams())
	require.NoError(t, err)
	assert.Equal(t, models.StageShowingResults, session.Stage)
	assert.Len(t, offers, 3)
	assert.Equal(t, "trace-1", session.ProviderRefs.TraceID)

	session, offer, err := env.svc.SelectOffer(ctx, user, 0)
	require.NoError(t, err)
	assert.Equal(t, models.StageFlightSelected, session.Stage)
	assert.Equal(t, "AI-123", offer.FlightNumber)
	assert.False(t, session.IsLCC)
	assert.Equal(t, 5500.0, session.PriceSnapshot.Total)

	session, fare, err := env.svc.ConfirmFare(ctx, user)
	require.NoError(t, err)
	assert.Nil(t, fare.PriceIncreased)
	assert.Equal(t, models.StageAddingServices, session.Stage)
	assert.Equal(t, "quote-trace-1", session.QuoteTraceID)

	catalog, err := env.svc.ServiceCatalog(ctx, user)
	require.NoError(t, err)
	assert.Len(t, catalog.Meals, 1)

	session, err = env.svc.AddServices(ctx, user, mealSelection())
	require.NoError(t, err)
	assert.Equal(t, models.StageCollectingPassenger, session.Stage)
	assert.Equal(t, 5700.0, session.PriceSnapshot.Total)

	session, progress, err := env.svc.AddPassenger(ctx, user, leadPax())
	require.NoError(t, err)
	assert.True(t, progress.Complete())
	assert.Equal(t, models.StageConfirmingDetails, session.Stage)
	assert.True(t, session.Passengers[0].Lead)

	session, record, err := env.svc.Confirm(ctx, user, true)
	require.NoError(t, err)
	assert.Equal(t, models.StageCompleted, session.Stage)
	assert.Equal(t, "PNR123", record.PNR)
	assert.Equal(t, "TKT-9", record.TicketNumber)
	assert.Equal(t, models.BookingConfirmed, record.Status)
	assert.Equal(t, 5700.0, record.FareTotal)
	assert.Equal(t, "AI-123", record.FlightNumber)

	// Non-LCC books then tickets in two calls; the LCC path stays untouched.
	assert.Equal(t, 1, env.provider.bookCalls)
	assert.Equal(t, 1, env.provider.ticketCalls)
	assert.Equal(t, 0, env.provider.directCalls)

	stored, err := env.records.GetByPNR(ctx, "PNR123")
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, stored.Status)
}

func TestLCCDirectTicketing(t *testing.T) {
	env := newTestEnv(t)
	env.provider.quoteTotal = 4800
	ctx := context.Background()
	user := "user-lcc"

	_, _, err := env.svc.StartSearch(ctx, user, testParams())
	require.NoError(t, err)
	session, _, err := env.svc.SelectOffer(ctx, user, 1)
	require.NoError(t, err)
	assert.True(t, session.IsLCC)
	_, _, err = env.svc.ConfirmFare(ctx, user)
	require.NoError(t, err)

	// No free baggage on the low-cost branch.
	_, err = env.svc.AddServices(ctx, user, mealSelection())
	require.Error(t, err)
	assert.True(t, IsFlowCode(err, CodeMandatorySSRMissing))

	session, err = env.svc.AddServices(ctx, user, baggageSelection())
	require.NoError(t, err)
	assert.Equal(t, 5300.0, session.PriceSnapshot.Total)

	_, _, err = env.svc.AddPassenger(ctx, user, leadPax())
	require.NoError(t, err)

	session, record, err := env.svc.Confirm(ctx, user, true)
	require.NoError(t, err)
	assert.Equal(t, models.StageCompleted, session.Stage)
	assert.Equal(t, "TKT-9", record.TicketNumber)

	// One atomic call; never the two-step sequence.
	assert.Equal(t, 1, env.provider.directCalls)
	assert.Equal(t, 0, env.provider.bookCalls)
	assert.Equal(t, 0, env.provider.ticketCalls)
}

func TestPriceIncreaseBlocksAdvancement(t *testing.T) {
	env := newTestEnv(t)
	env.provider.quoteTotal = 6000
	ctx := context.Background()
	user := "user-price"

	_, _, err := env.svc.StartSearch(ctx, user, testParams())
	require.NoError(t, err)
	_, _, err = env.svc.SelectOffer(ctx, user, 0)
	require.NoError(t, err)

	session, fare, err := env.svc.ConfirmFare(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, fare.PriceIncreased)
	assert.Equal(t, 5500.0, fare.PriceIncreased.Old)
	assert.Equal(t, 6000.0, fare.PriceIncreased.New)
	assert.Equal(t, 500.0, fare.PriceIncreased.Diff)
	assert.Equal(t, models.StageFlightSelected, session.Stage)

	// Nothing advances until the change is acknowledged.
	_, err = env.svc.AddServices(ctx, user, mealSelection())
	var state *StateError
	require.ErrorAs(t, err, &state)

	session, err = env.svc.AcknowledgePriceChange(ctx, user, true)
	require.NoError(t, err)
	assert.Equal(t, models.StageAddingServices, session.Stage)
	assert.Equal(t, 6000.0, session.PriceSnapshot.Total)
	assert.Nil(t, session.PendingPriceChange)
}

func TestPriceDecreaseAdvancesWithNewTotal(t *testing.T) {
	env := newTestEnv(t)
	env.provider.quoteTotal = 5000
	ctx := context.Background()
	user := "user-drop"

	_, _, err := env.svc.StartSearch(ctx, user, testParams())
	require.NoError(t, err)
	_, _, err = env.svc.SelectOffer(ctx, user, 0)
	require.NoError(t, err)

	session, fare, err := env.svc.ConfirmFare(ctx, user)
	require.NoError(t, err)
	assert.Nil(t, fare.PriceIncreased)
	assert.Equal(t, models.StageAddingServices, session.Stage)
	assert.Equal(t, 5000.0, session.PriceSnapshot.Total)
}

func TestPriceIncreaseDeclinedReturnsToResults(t *testing.T) {
	env := newTestEnv(t)
	env.provider.quoteTotal = 6000
	ctx := context.Background()
	user := "user-decline"

	_, _, err := env.svc.StartSearch(ctx, user, testParams())
	require.NoError(t, err)
	_, _, err = env.svc.SelectOffer(ctx, user, 0)
	require.NoError(t, err)
	_, _, err = env.svc.ConfirmFare(ctx, user)
	require.NoError(t, err)

	session, err := env.svc.AcknowledgePriceChange(ctx, user, false)
	require.NoError(t, err)
	assert.Equal(t, models.StageShowingResults, session.Stage)
	assert.Nil(t, session.SelectedOffer)

	// The results are still live; another selection works.
	session, _, err = env.svc.SelectOffer(ctx, user, 2)
	require.NoError(t, err)
	assert.Equal(t, 6200.0, session.PriceSnapshot.Total)
}

func TestInvalidSelectionLeavesStateUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := "user-badsel"

	_, _, err := env.svc.StartSearch(ctx, user, testParams())
	require.NoError(t, err)

	_, _, err = env.svc.SelectOffer(ctx, user, 7)
	require.Error(t, err)
	assert.True(t, IsFlowCode(err, CodeInvalidSelection))

	session, err := env.svc.CurrentSession(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, models.StageShowingResults, session.Stage)

	_, _, err = env.svc.SelectOffer(ctx, user, 0)
	require.NoError(t, err)
}

func TestExpiredResultsRejectSelection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := "user-expired"

	_, _, err := env.svc.StartSearch(ctx, user, testParams())
	require.NoError(t, err)

	env.advance(16 * time.Minute) // past the fare TTL, inside the session TTL

	_, _, err = env.svc.SelectOffer(ctx, user, 0)
	require.Error(t, err)
	assert.True(t, IsFlowCode(err, CodeResultsExpired))
}

func TestSessionExpiryDiscardsState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := "user-ttl"

	_, _, err := env.svc.StartSearch(ctx, user, testParams())
	require.NoError(t, err)

	env.advance(31 * time.Minute)

	_, _, err = env.svc.SelectOffer(ctx, user, 0)
	assert.ErrorIs(t, err, ErrSessionExpired)

	// The expired session was discarded, not kept around.
	_, err = env.svc.CurrentSession(ctx, user)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// A fresh search starts over cleanly.
	session, _, err := env.svc.StartSearch(ctx, user, testParams())
	require.NoError(t, err)
	assert.Equal(t, models.StageShowingResults, session.Stage)
}

func TestSearchRejectedMidBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := "user-midflow"

	_, _, err := env.svc.StartSearch(ctx, user, testParams())
	require.NoError(t, err)
	_, _, err = env.svc.SelectOffer(ctx, user, 0)
	require.NoError(t, err)

	_, _, err = env.svc.StartSearch(ctx, user, testParams())
	var state *StateError
	require.ErrorAs(t, err, &state)
	assert.Equal(t, models.StageFlightSelected, state.Stage)
}

func TestConfirmDeclineRevisesPassengers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := "user-revise"
	advanceToConfirm(t, env, user)

	session, record, err := env.svc.Confirm(ctx, user, false)
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.Equal(t, models.StageCollectingPassenger, session.Stage)
	assert.Empty(t, session.Passengers)
	assert.Equal(t, 0, env.provider.bookCalls)
}

func TestConfirmIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := "user-idem"
	advanceToConfirm(t, env, user)

	_, first, err := env.svc.Confirm(ctx, user, true)
	require.NoError(t, err)

	// A re-sent yes replays the stored outcome, no second execution.
	_, second, err := env.svc.Confirm(ctx, user, true)
	require.NoError(t, err)
	assert.Equal(t, first.PNR, second.PNR)
	assert.Equal(t, 1, env.provider.bookCalls)
	assert.Equal(t, 1, env.provider.ticketCalls)
}

// saveFailingStore fails the first save of a completed session, simulating a
// store outage between record persistence and the final session write.
type saveFailingStore struct {
	SessionStore
	tripped bool
}

func (s *saveFailingStore) Save(ctx context.Context, session *models.Session) error {
	if !s.tripped && session.Stage == models.StageCompleted {
		s.tripped = true
		return errors.New("session store unavailable")
	}
	return s.SessionStore.Save(ctx, session)
}

func TestConfirmRetryAfterSaveFailureKeepsOneRecord(t *testing.T) {
	env := newTestEnv(t)
	store := &saveFailingStore{SessionStore: env.svc.Store}
	env.svc.Store = store
	ctx := context.Background()
	user := "user-savefail"
	advanceToConfirm(t, env, user)

	_, _, err := env.svc.Confirm(ctx, user, true)
	require.Error(t, err)

	_, record, err := env.svc.Confirm(ctx, user, true)
	require.NoError(t, err)
	require.NotNil(t, record)

	// Both attempts wrote the record under the same idempotency-derived ID,
	// so the retry overwrote the first write instead of duplicating it.
	session, err := env.svc.CurrentSession(ctx, user)
	require.NoError(t, err)
	require.Len(t, env.records.createdIDs, 2)
	assert.Equal(t, env.records.createdIDs[0], env.records.createdIDs[1])
	assert.Equal(t, session.IdempotencyKey, record.ID)
	assert.Len(t, env.records.bookings, 1)
}

func TestTicketFailureFlagsHeldBooking(t *testing.T) {
	env := newTestEnv(t)
	env.provider.ticketErr = provider.NewFatalError("ticketRejected", "airline rejected ticketing")
	ctx := context.Background()
	user := "user-tktfail"
	advanceToConfirm(t, env, user)

	_, _, err := env.svc.Confirm(ctx, user, true)
	require.Error(t, err)

	session, err := env.svc.CurrentSession(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, models.StageFailed, session.Stage)
	assert.Equal(t, ReasonTicketFailed, session.FailureReason)
	// The held PNR is preserved for reconciliation.
	assert.True(t, session.BookingExists)
	assert.Equal(t, "PNR123", session.ProviderRefs.PNR)
}

func TestLeadPassengerRequiresContact(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := "user-lead"

	_, _, err := env.svc.StartSearch(ctx, user, testParams())
	require.NoError(t, err)
	_, _, err = env.svc.SelectOffer(ctx, user, 0)
	require.NoError(t, err)
	_, _, err = env.svc.ConfirmFare(ctx, user)
	require.NoError(t, err)
	_, err = env.svc.AddServices(ctx, user, nil)
	require.NoError(t, err)

	bare := leadPax()
	bare.Phone = ""
	_, _, err = env.svc.AddPassenger(ctx, user, bare)
	require.Error(t, err)

	_, progress, err := env.svc.AddPassenger(ctx, user, leadPax())
	require.NoError(t, err)
	assert.True(t, progress.Complete())
}

func TestPassengerCollectionForMultipleTravellers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := "user-family"

	params := testParams()
	params.Adults = 2
	_, _, err := env.svc.StartSearch(ctx, user, params)
	require.NoError(t, err)
	_, _, err = env.svc.SelectOffer(ctx, user, 0)
	require.NoError(t, err)
	_, _, err = env.svc.ConfirmFare(ctx, user)
	require.NoError(t, err)
	_, err = env.svc.AddServices(ctx, user, nil)
	require.NoError(t, err)

	session, progress, err := env.svc.AddPassenger(ctx, user, leadPax())
	require.NoError(t, err)
	assert.Equal(t, PassengerProgress{Collected: 1, Required: 2}, progress)
	assert.Equal(t, models.StageCollectingPassenger, session.Stage)

	second := models.Passenger{FullName: "Jane Doe", DateOfBirth: "1992-03-10", Gender: "Female", Type: models.PassengerAdult}
	session, progress, err = env.svc.AddPassenger(ctx, user, second)
	require.NoError(t, err)
	assert.True(t, progress.Complete())
	assert.Equal(t, models.StageConfirmingDetails, session.Stage)
	assert.False(t, session.Passengers[1].Lead)

	// A third record is rejected.
	_, _, err = env.svc.AddPassenger(ctx, user, second)
	assert.True(t, IsFlowCode(err, CodePassengerLimit))
}

func TestRepeatedSearchHitsFareCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, _, err := env.svc.StartSearch(ctx, "user-a", testParams())
	require.NoError(t, err)
	_, _, err = env.svc.StartSearch(ctx, "user-b", testParams())
	require.NoError(t, err)

	assert.Equal(t, 1, env.provider.searchCalls)
}

func TestSearchRetriesTransientFailures(t *testing.T) {
	env := newTestEnv(t)
	env.provider.searchFailures = 2
	ctx := context.Background()

	session, offers, err := env.svc.StartSearch(ctx, "user-retry", testParams())
	require.NoError(t, err)
	assert.Len(t, offers, 3)
	assert.Equal(t, models.StageShowingResults, session.Stage)
	assert.Equal(t, 3, env.provider.searchCalls)
}

func TestCancellationFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := "user-cancel"
	advanceToConfirm(t, env, user)
	_, _, err := env.svc.Confirm(ctx, user, true)
	require.NoError(t, err)

	quote, err := env.svc.RequestCancellation(ctx, user, "PNR123")
	require.NoError(t, err)
	assert.Equal(t, 5700.0, quote.PaidTotal)
	assert.Equal(t, 1000.0, quote.CancellationCharge)
	assert.Equal(t, 4700.0, quote.RefundAmount)

	record, err := env.svc.ConfirmCancellation(ctx, user, true)
	require.NoError(t, err)
	assert.Equal(t, 4700.0, record.RefundAmount)
	assert.Equal(t, "PNR123", record.PNR)
	assert.Equal(t, 1, env.provider.cancelCalls)

	session, err := env.svc.CurrentSession(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, models.StageCancelled, session.Stage)

	stored, err := env.records.GetByPNR(ctx, "PNR123")
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, stored.Status)
	assert.Len(t, env.records.cancellations, 1)
}

func TestCancellationDeclinedKeepsBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := "user-keep"
	advanceToConfirm(t, env, user)
	_, _, err := env.svc.Confirm(ctx, user, true)
	require.NoError(t, err)
	_, err = env.svc.RequestCancellation(ctx, user, "")
	require.NoError(t, err)

	record, err := env.svc.ConfirmCancellation(ctx, user, false)
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.Equal(t, 0, env.provider.cancelCalls)

	session, err := env.svc.CurrentSession(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, models.StageCompleted, session.Stage)

	stored, err := env.records.GetByPNR(ctx, "PNR123")
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, stored.Status)
}

func TestCancellationProviderFailureKeepsBooking(t *testing.T) {
	env := newTestEnv(t)
	env.provider.cancelErr = provider.NewFatalError("cancelRejected", "airline rejected the cancellation")
	ctx := context.Background()
	user := "user-cancelfail"
	advanceToConfirm(t, env, user)
	_, _, err := env.svc.Confirm(ctx, user, true)
	require.NoError(t, err)
	_, err = env.svc.RequestCancellation(ctx, user, "")
	require.NoError(t, err)

	_, err = env.svc.ConfirmCancellation(ctx, user, true)
	require.Error(t, err)

	// The booking is never lost to a failed cancel call.
	session, err := env.svc.CurrentSession(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, models.StageCompleted, session.Stage)

	stored, err := env.records.GetByPNR(ctx, "PNR123")
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, stored.Status)
}

func TestCancellationWrongPNRRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := "user-wrongpnr"
	advanceToConfirm(t, env, user)
	_, _, err := env.svc.Confirm(ctx, user, true)
	require.NoError(t, err)

	_, err = env.svc.RequestCancellation(ctx, user, "XYZ999")
	assert.True(t, IsFlowCode(err, CodeInvalidSelection))
}
