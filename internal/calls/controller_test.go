package calls

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/devvault2026/revampai/internal/leads/domain"
	"github.com/devvault2026/revampai/internal/leads/repository"
	"github.com/devvault2026/revampai/platform/apperr"
	platformevents "github.com/devvault2026/revampai/platform/events"
	"github.com/devvault2026/revampai/platform/logger"

	"github.com/google/uuid"
)

type fakeTelephonyConfig struct {
	enabled bool
}

func (f fakeTelephonyConfig) GetTwilioAccountSID() string { return "ACtest" }
func (f fakeTelephonyConfig) GetTwilioAuthToken() string  { return "token" }
func (f fakeTelephonyConfig) GetTwilioFromNumber() string { return "+15125550000" }
func (f fakeTelephonyConfig) IsTelephonyEnabled() bool    { return f.enabled }

type pollResult struct {
	status CallStatus
	err    error
}

type fakeTelephony struct {
	mu         sync.Mutex
	placeErr   error
	placeDelay time.Duration
	placeCalls int
	sequence   []pollResult
	polls      int
}

func (f *fakeTelephony) PlaceCall(ctx context.Context, req CallRequest) (string, error) {
	if f.placeDelay > 0 {
		time.Sleep(f.placeDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placeCalls++
	if f.placeErr != nil {
		return "", f.placeErr
	}
	return "CA123", nil
}

func (f *fakeTelephony) placeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.placeCalls
}

func (f *fakeTelephony) PollStatus(ctx context.Context, callID string) (CallStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.polls
	if idx >= len(f.sequence) {
		idx = len(f.sequence) - 1
	}
	f.polls++
	result := f.sequence[idx]
	return result.status, result.err
}

type fakeCallLeadStore struct {
	mu      sync.Mutex
	lead    domain.Lead
	logs    map[string]domain.CallLog
	appends int
	status  string
}

func newFakeCallLeadStore(lead domain.Lead) *fakeCallLeadStore {
	return &fakeCallLeadStore{lead: lead, logs: make(map[string]domain.CallLog), status: lead.Status}
}

func (f *fakeCallLeadStore) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	if id != f.lead.ID {
		return domain.Lead{}, repository.ErrNotFound
	}
	return f.lead, nil
}

func (f *fakeCallLeadStore) AppendCallLog(ctx context.Context, log domain.CallLog) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.logs[log.CallSID]; exists {
		return false, nil
	}
	f.logs[log.CallSID] = log
	f.appends++
	return true, nil
}

func (f *fakeCallLeadStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	return nil
}

func (f *fakeCallLeadStore) appendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appends
}

func (f *fakeCallLeadStore) leadStatus() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeCallLeadStore) loggedStatus(sid string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logs[sid].Status
}

func fastOptions() Options {
	return Options{
		PollInterval:    5 * time.Millisecond,
		DurationTick:    2 * time.Millisecond,
		ResetDelay:      10 * time.Millisecond,
		MaxPollDuration: time.Minute,
	}
}

func testLead() domain.Lead {
	return domain.Lead{ID: uuid.New(), SessionID: uuid.New(), Name: "Austin Pipe Pros", Phone: "+15125550101", Status: domain.StatusOutreachReady}
}

func newCallController(gateway Gateway, store LeadStore, enabled bool, opts Options) *Controller {
	log := logger.New("development")
	return New(gateway, store, nil, fakeTelephonyConfig{enabled: enabled}, platformevents.NewInMemoryBus(log), log, opts)
}

func waitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestPlaceCallWithoutPhoneFailsBeforeGateway(t *testing.T) {
	lead := testLead()
	lead.Phone = ""
	gateway := &fakeTelephony{sequence: []pollResult{{status: CallStatus{Phase: PhaseQueued}}}}
	c := newCallController(gateway, newFakeCallLeadStore(lead), true, fastOptions())

	_, err := c.PlaceCall(context.Background(), lead.ID, nil)
	if !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("error = %v, want configuration error", err)
	}
	if gateway.placeCalls != 0 {
		t.Fatal("gateway was touched despite missing phone number")
	}
	if c.Status().State != StateIdle {
		t.Fatalf("state = %q, want idle", c.Status().State)
	}
}

func TestPlaceCallWithoutCredentials(t *testing.T) {
	lead := testLead()
	gateway := &fakeTelephony{sequence: []pollResult{{status: CallStatus{Phase: PhaseQueued}}}}
	c := newCallController(gateway, newFakeCallLeadStore(lead), false, fastOptions())

	_, err := c.PlaceCall(context.Background(), lead.ID, nil)
	if !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("error = %v, want configuration error", err)
	}
	if gateway.placeCalls != 0 {
		t.Fatal("gateway was touched despite missing credentials")
	}
}

func TestPlaceCallGatewayRejectionSurfacesMessageVerbatim(t *testing.T) {
	lead := testLead()
	gateway := &fakeTelephony{placeErr: errors.New("the number is unverified")}
	store := newFakeCallLeadStore(lead)
	c := newCallController(gateway, store, true, fastOptions())

	_, err := c.PlaceCall(context.Background(), lead.ID, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	var typed *apperr.Error
	if !errors.As(err, &typed) || typed.Message != "the number is unverified" {
		t.Fatalf("error = %v, want the provider's message verbatim", err)
	}
	if c.Status().State != StateIdle {
		t.Fatalf("state = %q, want idle after rejected placement", c.Status().State)
	}
	if store.appendCount() != 0 {
		t.Fatal("a call log was written for a rejected placement")
	}
}

func TestCallLifecycleWritesExactlyOneLog(t *testing.T) {
	lead := testLead()
	store := newFakeCallLeadStore(lead)
	gateway := &fakeTelephony{sequence: []pollResult{
		{status: CallStatus{Phase: PhaseQueued}},
		{status: CallStatus{Phase: PhaseInProgress}},
		{status: CallStatus{Phase: PhaseInProgress}},
		{status: CallStatus{Phase: PhaseEnded, DurationSeconds: 42, Summary: "Owner wants a callback."}},
	}}
	c := newCallController(gateway, store, true, fastOptions())

	snap, err := c.PlaceCall(context.Background(), lead.ID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.State != StateDialing {
		t.Fatalf("state = %q, want dialing", snap.State)
	}

	waitFor(t, time.Second, "call log", func() bool { return store.appendCount() == 1 })

	if store.leadStatus() != domain.StatusCalled {
		t.Errorf("lead status = %q, want Called", store.leadStatus())
	}
	if got := store.loggedStatus("CA123"); got != CallStatusCompleted {
		t.Errorf("call log status = %q, want completed", got)
	}

	waitFor(t, time.Second, "reset to idle", func() bool { return c.Status().State == StateIdle })
	if store.appendCount() != 1 {
		t.Fatalf("appends = %d, want exactly 1", store.appendCount())
	}
}

func TestTransientPollErrorsAreRetried(t *testing.T) {
	lead := testLead()
	store := newFakeCallLeadStore(lead)
	gateway := &fakeTelephony{sequence: []pollResult{
		{err: errors.New("connection reset")},
		{err: errors.New("connection reset")},
		{status: CallStatus{Phase: PhaseEnded, DurationSeconds: 5}},
	}}
	c := newCallController(gateway, store, true, fastOptions())

	if _, err := c.PlaceCall(context.Background(), lead.ID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitFor(t, time.Second, "call log despite transient errors", func() bool { return store.appendCount() == 1 })
}

func TestMarkConnectedTransitionsExactlyOnce(t *testing.T) {
	lead := testLead()
	c := newCallController(&fakeTelephony{sequence: []pollResult{{status: CallStatus{Phase: PhaseQueued}}}}, newFakeCallLeadStore(lead), true, fastOptions())

	c.mu.Lock()
	c.state = StateDialing
	c.mu.Unlock()

	c.markConnected()
	if c.Status().State != StateConnected {
		t.Fatalf("state = %q, want connected", c.Status().State)
	}

	c.mu.Lock()
	c.duration = 7
	c.mu.Unlock()

	// A second in-progress observation must not re-enter the transition
	// or reset the duration counter.
	c.markConnected()
	if got := c.Status().DurationSeconds; got != 7 {
		t.Fatalf("duration = %d after repeat observation, want 7", got)
	}
}

func TestDurationCountsOnlyWhileConnected(t *testing.T) {
	lead := testLead()
	store := newFakeCallLeadStore(lead)
	gateway := &fakeTelephony{sequence: []pollResult{
		{status: CallStatus{Phase: PhaseQueued}},
	}}
	opts := fastOptions()
	c := newCallController(gateway, store, true, opts)

	if _, err := c.PlaceCall(context.Background(), lead.ID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	time.Sleep(10 * opts.DurationTick)
	if got := c.Status().DurationSeconds; got != 0 {
		t.Fatalf("duration = %d while dialing, want 0", got)
	}

	c.markConnected()
	waitFor(t, time.Second, "duration to start counting", func() bool { return c.Status().DurationSeconds > 0 })

	c.Hangup(context.Background())
}

func TestHangupWritesSingleLog(t *testing.T) {
	lead := testLead()
	store := newFakeCallLeadStore(lead)
	gateway := &fakeTelephony{sequence: []pollResult{
		{status: CallStatus{Phase: PhaseInProgress}},
	}}
	c := newCallController(gateway, store, true, fastOptions())

	if _, err := c.PlaceCall(context.Background(), lead.ID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitFor(t, time.Second, "connected", func() bool { return c.Status().State == StateConnected })

	snap := c.Hangup(context.Background())
	if snap.State != StateEnded {
		t.Fatalf("state = %q, want ended", snap.State)
	}

	waitFor(t, time.Second, "hangup log", func() bool { return store.appendCount() == 1 })
	if got := store.loggedStatus("CA123"); got != CallStatusHangup {
		t.Errorf("call log status = %q, want hangup", got)
	}

	// A hangup while already ended is a no-op.
	c.Hangup(context.Background())
	if store.appendCount() != 1 {
		t.Fatalf("appends = %d after repeated hangup, want 1", store.appendCount())
	}
}

func TestMaxPollDurationAbandonsCall(t *testing.T) {
	lead := testLead()
	store := newFakeCallLeadStore(lead)
	gateway := &fakeTelephony{sequence: []pollResult{
		{status: CallStatus{Phase: PhaseQueued}},
	}}
	opts := fastOptions()
	opts.MaxPollDuration = 20 * time.Millisecond
	c := newCallController(gateway, store, true, opts)

	if _, err := c.PlaceCall(context.Background(), lead.ID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitFor(t, time.Second, "abandoned log", func() bool { return store.appendCount() == 1 })
	if got := store.loggedStatus("CA123"); got != CallStatusAbandoned {
		t.Errorf("call log status = %q, want abandoned", got)
	}
	waitFor(t, time.Second, "reset to idle", func() bool { return c.Status().State == StateIdle })
}

func TestSecondPlaceCallWhileActiveIsRejected(t *testing.T) {
	lead := testLead()
	store := newFakeCallLeadStore(lead)
	gateway := &fakeTelephony{sequence: []pollResult{
		{status: CallStatus{Phase: PhaseQueued}},
	}}
	c := newCallController(gateway, store, true, fastOptions())

	if _, err := c.PlaceCall(context.Background(), lead.ID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := c.PlaceCall(context.Background(), lead.ID, nil)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("error = %v, want conflict", err)
	}

	c.Hangup(context.Background())
}

func TestConcurrentPlaceCallDialsExactlyOnce(t *testing.T) {
	lead := testLead()
	store := newFakeCallLeadStore(lead)
	gateway := &fakeTelephony{
		placeDelay: 50 * time.Millisecond,
		sequence:   []pollResult{{status: CallStatus{Phase: PhaseQueued}}},
	}
	c := newCallController(gateway, store, true, fastOptions())

	errs := make(chan error, 2)
	for range 2 {
		go func() {
			_, err := c.PlaceCall(context.Background(), lead.ID, nil)
			errs <- err
		}()
	}

	var placed, conflicts int
	for range 2 {
		switch err := <-errs; {
		case err == nil:
			placed++
		case apperr.Is(err, apperr.KindConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if placed != 1 || conflicts != 1 {
		t.Fatalf("placed = %d, conflicts = %d, want exactly one of each", placed, conflicts)
	}
	if got := gateway.placeCount(); got != 1 {
		t.Fatalf("gateway placements = %d, want 1", got)
	}

	c.Hangup(context.Background())
}
