package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/example/flairbot/internal/ctxutil"
	"github.com/example/flairbot/internal/ports/primary"
	"github.com/example/flairbot/internal/ports/secondary"
)

// stubPass records its invocations and returns a canned outcome.
type stubPass struct {
	name   string
	calls  *[]string
	err    error
	panics bool
	cycles []string
}

func (p *stubPass) Name() string { return p.name }

func (p *stubPass) Run(ctx context.Context) (*primary.PassReport, error) {
	*p.calls = append(*p.calls, p.name)
	p.cycles = append(p.cycles, ctxutil.CycleFromContext(ctx))
	if p.panics {
		panic("boom")
	}
	return &primary.PassReport{Pass: p.name}, p.err
}

// recordingSleeper records requested pauses.
type recordingSleeper struct {
	pauses []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.pauses = append(s.pauses, d)
	return ctx.Err()
}

var testOrchestratorConfig = OrchestratorConfig{
	PassDelay:  2 * time.Second,
	ErrorPause: 60 * time.Second,
	Interval:   5 * time.Second,
}

func TestOrchestrator_RunOnceRunsPassesInOrder(t *testing.T) {
	var calls []string
	passes := []primary.Pass{
		&stubPass{name: primary.PassScan, calls: &calls},
		&stubPass{name: primary.PassReplies, calls: &calls},
		&stubPass{name: primary.PassReconcile, calls: &calls},
	}
	sleeper := &recordingSleeper{}
	store := NewTrackingStore(newMockSnapshotStore(), zap.NewNop())
	orch := NewOrchestrator(store, passes, testOrchestratorConfig, zap.NewNop(), sleeper.sleep)

	reports := orch.RunOnce(context.Background())

	if diff := cmp.Diff([]string{"scan", "replies", "reconcile"}, calls); diff != "" {
		t.Errorf("pass order mismatch (-want +got):\n%s", diff)
	}
	if len(reports) != 3 {
		t.Errorf("expected 3 reports, got %d", len(reports))
	}
	wantPauses := []time.Duration{2 * time.Second, 2 * time.Second}
	if diff := cmp.Diff(wantPauses, sleeper.pauses); diff != "" {
		t.Errorf("pauses mismatch (-want +got):\n%s", diff)
	}
}

func TestOrchestrator_FailingPassDoesNotBlockOthers(t *testing.T) {
	var calls []string
	failing := &stubPass{name: primary.PassScan, calls: &calls, err: &secondary.PlatformError{Op: "GET /new", StatusCode: 503}}
	panicking := &stubPass{name: primary.PassReplies, calls: &calls, panics: true}
	healthy := &stubPass{name: primary.PassReconcile, calls: &calls}

	core, logs := observer.New(zapcore.InfoLevel)
	sleeper := &recordingSleeper{}
	store := NewTrackingStore(newMockSnapshotStore(), zap.NewNop())
	orch := NewOrchestrator(store, []primary.Pass{failing, panicking, healthy}, testOrchestratorConfig, zap.New(core), sleeper.sleep)

	orch.RunOnce(context.Background())

	if diff := cmp.Diff([]string{"scan", "replies", "reconcile"}, calls); diff != "" {
		t.Errorf("pass order mismatch (-want +got):\n%s", diff)
	}
	if n := logs.FilterMessage("platform error during pass").Len(); n != 1 {
		t.Errorf("expected 1 platform error log, got %d", n)
	}
	if n := logs.FilterMessage("unexpected error during pass").Len(); n != 1 {
		t.Errorf("expected 1 panic log, got %d", n)
	}
	if n := logs.FilterMessage("pass complete").Len(); n != 1 {
		t.Errorf("expected 1 completed pass, got %d", n)
	}

	wantPauses := []time.Duration{60 * time.Second, 2 * time.Second, 60 * time.Second, 2 * time.Second}
	if diff := cmp.Diff(wantPauses, sleeper.pauses); diff != "" {
		t.Errorf("pauses mismatch (-want +got):\n%s", diff)
	}
}

func TestOrchestrator_ProtocolAnomalyIsLogged(t *testing.T) {
	var calls []string
	pass := &stubPass{name: primary.PassScan, calls: &calls, err: ErrPromptUnconfirmed}
	core, logs := observer.New(zapcore.InfoLevel)
	store := NewTrackingStore(newMockSnapshotStore(), zap.NewNop())
	orch := NewOrchestrator(store, []primary.Pass{pass}, testOrchestratorConfig, zap.New(core), noSleep)

	orch.RunOnce(context.Background())

	if n := logs.FilterMessage("protocol anomaly during pass").Len(); n != 1 {
		t.Errorf("expected 1 protocol anomaly log, got %d", n)
	}
}

func TestOrchestrator_EachCycleGetsItsOwnID(t *testing.T) {
	var calls []string
	pass := &stubPass{name: primary.PassScan, calls: &calls}
	store := NewTrackingStore(newMockSnapshotStore(), zap.NewNop())
	orch := NewOrchestrator(store, []primary.Pass{pass}, testOrchestratorConfig, zap.NewNop(), noSleep)
	ids := []string{"cycle-a", "cycle-b"}
	orch.newCycleID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	orch.RunOnce(context.Background())
	orch.RunOnce(context.Background())

	if diff := cmp.Diff([]string{"cycle-a", "cycle-b"}, pass.cycles); diff != "" {
		t.Errorf("cycle IDs mismatch (-want +got):\n%s", diff)
	}
}

func TestOrchestrator_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	snapshots := newMockSnapshotStore()
	snapshots.snapshot = map[string]string{"t3_a": "t4_x"}
	store := NewTrackingStore(snapshots, zap.NewNop())

	var calls []string
	pass := &stubPass{name: primary.PassScan, calls: &calls}
	orch := NewOrchestrator(store, []primary.Pass{pass}, OrchestratorConfig{Interval: time.Millisecond}, zap.NewNop(), SleepContext)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- orch.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil on cancellation, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	if !store.Contains("t3_a") {
		t.Error("expected tracking log to be loaded on start")
	}
	if len(calls) == 0 {
		t.Error("expected at least one cycle")
	}
}

func TestOrchestrator_RunContinuesWhenLoadFails(t *testing.T) {
	snapshots := newMockSnapshotStore()
	snapshots.loadErr = errors.New("corrupt snapshot")
	store := NewTrackingStore(snapshots, zap.NewNop())

	var calls []string
	pass := &stubPass{name: primary.PassScan, calls: &calls}
	core, logs := observer.New(zapcore.InfoLevel)
	orch := NewOrchestrator(store, []primary.Pass{pass}, testOrchestratorConfig, zap.New(core), func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	})

	if err := orch.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n := logs.FilterMessage("failed to load tracking log, starting empty").Len(); n != 1 {
		t.Errorf("expected load failure to be logged, got %d", n)
	}
	if len(calls) != 1 {
		t.Errorf("expected one cycle before stopping, got %d", len(calls))
	}
}

// End to end: every prompted submission is eventually resolved.
func TestOrchestrator_EventualResolution(t *testing.T) {
	f := newTestFixture(t)
	now := testNow
	clock := func() time.Time { return now }

	flairedByReply := submission("t3_reply", 0)
	flairedByHand := submission("t3_hand", 0)
	ignored := submission("t3_ignored", 0)
	f.forum.newSubmissions = []*secondary.SubmissionRecord{flairedByReply, flairedByHand, ignored}
	for _, s := range f.forum.newSubmissions {
		s.CreatedAt = now
		f.forum.byID[s.ID] = s
	}

	scanner := NewPostScanner(f.forum, f.store, testCatalog(), f.audit, PostScannerConfig{
		Community: "testsub", ScanLimit: 100, Timing: testTiming,
	}, zap.NewNop(), clock, noSleep)
	passes := []primary.Pass{
		scanner,
		f.correlator(),
		NewTimeoutReconciler(f.forum, f.store, f.executor, testTiming, zap.NewNop(), clock),
	}
	orch := NewOrchestrator(f.store, passes, OrchestratorConfig{}, zap.NewNop(), noSleep)

	// cycle 1: too young
	orch.RunOnce(context.Background())
	if f.store.Len() != 0 {
		t.Fatalf("expected nothing tracked yet, got %v", f.store.Snapshot())
	}

	// cycle 2: all three are prompted
	now = now.Add(2 * time.Minute)
	orch.RunOnce(context.Background())
	if f.store.Len() != 3 {
		t.Fatalf("expected 3 tracked, got %v", f.store.Snapshot())
	}

	// cycle 3: one replies, one flairs by hand
	messageID, _ := f.store.FindBySubmission(flairedByReply.ID)
	f.forum.unread = []*secondary.MessageRecord{privateMessage("t4_reply", messageID, "advice")}
	flairedByHand.FlairText = "Media"
	now = now.Add(time.Minute)
	orch.RunOnce(context.Background())
	if diff := cmp.Diff([]string{"t3_ignored"}, f.store.TrackedIDs()); diff != "" {
		t.Fatalf("tracked mismatch (-want +got):\n%s", diff)
	}

	// cycle 4: past the deadline
	now = now.Add(10 * time.Minute)
	orch.RunOnce(context.Background())
	if f.store.Len() != 0 {
		t.Errorf("expected every submission resolved, got %v", f.store.Snapshot())
	}
	if diff := cmp.Diff([]string{"t3_ignored"}, f.forum.removed); diff != "" {
		t.Errorf("removed mismatch (-want +got):\n%s", diff)
	}
}

func TestOrchestrator_PicksUpForgetBetweenCycles(t *testing.T) {
	ctx := context.Background()
	snapshots := newMockSnapshotStore()
	snapshots.snapshot = map[string]string{"t3_a": "t4_1", "t3_b": "t4_2"}
	store := NewTrackingStore(snapshots, zap.NewNop())

	var calls []string
	core, logs := observer.New(zapcore.InfoLevel)
	orch := NewOrchestrator(store, []primary.Pass{&stubPass{name: primary.PassScan, calls: &calls}},
		testOrchestratorConfig, zap.New(core), noSleep)

	orch.RunOnce(ctx)
	if store.Len() != 2 {
		t.Fatalf("expected 2 tracked after first cycle, got %v", store.Snapshot())
	}

	// an operator forgets t3_a from another process
	service := newTestTrackingService(snapshots, nil)
	if err := service.Forget(ctx, "t3_a"); err != nil {
		t.Fatalf("Forget failed: %v", err)
	}

	orch.RunOnce(ctx)
	if diff := cmp.Diff([]string{"t3_b"}, store.TrackedIDs()); diff != "" {
		t.Errorf("tracked mismatch (-want +got):\n%s", diff)
	}
	if n := logs.FilterMessage("merged outside changes to tracking log").Len(); n != 1 {
		t.Errorf("expected merge to be logged once, got %d", n)
	}

	// the daemon's next write keeps the forgotten entry gone
	store.Remove(ctx, "t3_b")
	if len(snapshots.snapshot) != 0 {
		t.Errorf("expected empty persisted log, got %v", snapshots.snapshot)
	}
}
