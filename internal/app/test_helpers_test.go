package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/flairbot/internal/core/flair"
	"github.com/example/flairbot/internal/ports/secondary"
)

// ============================================================================
// Forum mock
// ============================================================================

type flairCall struct {
	Community    string
	SubmissionID string
	Text         string
	CSSClass     string
}

type sentMessage struct {
	To      string
	Subject string
	Body    string
}

type replyCall struct {
	MessageID string
	Body      string
}

// mockForumClient implements secondary.ForumClient for testing.
type mockForumClient struct {
	newSubmissions []*secondary.SubmissionRecord
	byID           map[string]*secondary.SubmissionRecord
	unread         []*secondary.MessageRecord
	read           map[string]int

	sent      []sentMessage
	sentIDs   []string
	latestSet bool
	latest    *secondary.MessageRecord // overrides read-back when latestSet
	replies   []replyCall
	flairs    []flairCall
	removed   []string

	byIDCalls int

	newErr      error
	byIDErr     error
	sendErr     error
	latestErr   error
	unreadErr   error
	replyErr    error
	markReadErr error
	flairErr    error
	removeErr   error
}

func newMockForumClient() *mockForumClient {
	return &mockForumClient{
		byID: make(map[string]*secondary.SubmissionRecord),
		read: make(map[string]int),
	}
}

func (m *mockForumClient) NewSubmissions(ctx context.Context, community string, limit int) ([]*secondary.SubmissionRecord, error) {
	if m.newErr != nil {
		return nil, m.newErr
	}
	if limit > 0 && len(m.newSubmissions) > limit {
		return m.newSubmissions[:limit], nil
	}
	return m.newSubmissions, nil
}

func (m *mockForumClient) SubmissionsByID(ctx context.Context, ids []string) ([]*secondary.SubmissionRecord, error) {
	m.byIDCalls++
	if m.byIDErr != nil {
		return nil, m.byIDErr
	}
	var out []*secondary.SubmissionRecord
	for _, id := range ids {
		if rec, ok := m.byID[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockForumClient) SendMessage(ctx context.Context, to, subject, body string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMessage{To: to, Subject: subject, Body: body})
	m.sentIDs = append(m.sentIDs, fmt.Sprintf("t4_sent%d", len(m.sent)))
	return nil
}

func (m *mockForumClient) LatestSentMessage(ctx context.Context) (*secondary.MessageRecord, error) {
	if m.latestErr != nil {
		return nil, m.latestErr
	}
	if m.latestSet {
		return m.latest, nil
	}
	if len(m.sent) == 0 {
		return nil, nil
	}
	last := m.sent[len(m.sent)-1]
	return &secondary.MessageRecord{
		ID:      m.sentIDs[len(m.sentIDs)-1],
		Kind:    secondary.MessageKindPrivate,
		Subject: last.Subject,
		Body:    last.Body,
	}, nil
}

// UnreadMessages returns inbox items not yet marked read.
func (m *mockForumClient) UnreadMessages(ctx context.Context) ([]*secondary.MessageRecord, error) {
	if m.unreadErr != nil {
		return nil, m.unreadErr
	}
	var out []*secondary.MessageRecord
	for _, msg := range m.unread {
		if m.read[msg.ID] == 0 {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockForumClient) Reply(ctx context.Context, messageID, body string) error {
	if m.replyErr != nil {
		return m.replyErr
	}
	m.replies = append(m.replies, replyCall{MessageID: messageID, Body: body})
	return nil
}

func (m *mockForumClient) MarkRead(ctx context.Context, messageID string) error {
	if m.markReadErr != nil {
		return m.markReadErr
	}
	m.read[messageID]++
	return nil
}

func (m *mockForumClient) ApplyFlair(ctx context.Context, community, submissionID, text, cssClass string) error {
	if m.flairErr != nil {
		return m.flairErr
	}
	m.flairs = append(m.flairs, flairCall{Community: community, SubmissionID: submissionID, Text: text, CSSClass: cssClass})
	return nil
}

func (m *mockForumClient) RemoveSubmission(ctx context.Context, submissionID string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	m.removed = append(m.removed, submissionID)
	return nil
}

var _ secondary.ForumClient = (*mockForumClient)(nil)

// ============================================================================
// Persistence mocks
// ============================================================================

// mockSnapshotStore implements secondary.SnapshotStore for testing.
type mockSnapshotStore struct {
	snapshot map[string]string // nil means nothing saved yet
	saves    int
	loadErr  error
	saveErr  error
}

func newMockSnapshotStore() *mockSnapshotStore {
	return &mockSnapshotStore{}
}

func (m *mockSnapshotStore) LoadSnapshot(ctx context.Context) (map[string]string, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.snapshot == nil {
		return nil, secondary.ErrNoSnapshot
	}
	out := make(map[string]string, len(m.snapshot))
	for k, v := range m.snapshot {
		out[k] = v
	}
	return out, nil
}

func (m *mockSnapshotStore) SaveSnapshot(ctx context.Context, snapshot map[string]string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.snapshot = make(map[string]string, len(snapshot))
	for k, v := range snapshot {
		m.snapshot[k] = v
	}
	return nil
}

var _ secondary.SnapshotStore = (*mockSnapshotStore)(nil)

// mockAuditLog implements secondary.AuditLog for testing.
type mockAuditLog struct {
	entries   []*secondary.AuditRecord
	appendErr error
}

func (m *mockAuditLog) Append(ctx context.Context, entry *secondary.AuditRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditLog) List(ctx context.Context, filters secondary.AuditFilters) ([]*secondary.AuditRecord, error) {
	var out []*secondary.AuditRecord
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if filters.SubmissionID != "" && e.SubmissionID != filters.SubmissionID {
			continue
		}
		if filters.Action != "" && e.Action != filters.Action {
			continue
		}
		out = append(out, e)
		if filters.Limit > 0 && len(out) == filters.Limit {
			break
		}
	}
	return out, nil
}

func (m *mockAuditLog) actions() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Action
	}
	return out
}

var _ secondary.AuditLog = (*mockAuditLog)(nil)

// ============================================================================
// Fixtures
// ============================================================================

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

var testTiming = flair.Timing{PromptDelay: 60 * time.Second, RemovalDeadline: 600 * time.Second}

func fixedClock() Clock {
	return func() time.Time { return testNow }
}

func noSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

func testCatalog() *flair.Catalog {
	return flair.MustCatalog(flair.DefaultFlairs)
}

// submission builds an unflaired submission created ageSeconds before testNow.
func submission(id string, ageSeconds int) *secondary.SubmissionRecord {
	return &secondary.SubmissionRecord{
		ID:        id,
		Author:    "author_" + id,
		CreatedAt: testNow.Add(-time.Duration(ageSeconds) * time.Second),
		Shortlink: "https://redd.it/" + id[len("t3_"):],
	}
}

// privateMessage builds an unread private reply in the thread rooted at rootID.
func privateMessage(id, rootID, body string) *secondary.MessageRecord {
	return &secondary.MessageRecord{
		ID:             id,
		Kind:           secondary.MessageKindPrivate,
		Author:         "author",
		Body:           body,
		FirstMessageID: rootID,
	}
}

// testFixture bundles a store and mocks wired together.
type testFixture struct {
	forum     *mockForumClient
	snapshots *mockSnapshotStore
	audit     *mockAuditLog
	store     *TrackingStore
	executor  *DefaultEffectExecutor
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()
	logger := zap.NewNop()
	f := &testFixture{
		forum:     newMockForumClient(),
		snapshots: newMockSnapshotStore(),
		audit:     &mockAuditLog{},
	}
	f.store = NewTrackingStore(f.snapshots, logger)
	f.executor = NewEffectExecutor(f.forum, f.store, f.audit, "testsub", logger)
	return f
}

func (f *testFixture) track(t *testing.T, submissionID, messageID string) {
	t.Helper()
	if err := f.store.Put(context.Background(), submissionID, messageID); err != nil {
		t.Fatalf("failed to seed tracked submission: %v", err)
	}
}

func (f *testFixture) scanner() *PostScanner {
	return NewPostScanner(f.forum, f.store, testCatalog(), f.audit, PostScannerConfig{
		Community: "testsub",
		ScanLimit: 100,
		Timing:    testTiming,
		GuideURL:  "http://example.com/guide",
	}, zap.NewNop(), fixedClock(), noSleep)
}

func (f *testFixture) correlator() *ReplyCorrelator {
	return NewReplyCorrelator(f.forum, f.store, testCatalog(), f.executor, zap.NewNop())
}

func (f *testFixture) reconciler() *TimeoutReconciler {
	return NewTimeoutReconciler(f.forum, f.store, f.executor, testTiming, zap.NewNop(), fixedClock())
}

func forbiddenErr() error {
	return fmt.Errorf("POST /api/remove: %w", secondary.ErrForbidden)
}

func platformErr() error {
	return &secondary.PlatformError{Op: "POST /api/flair", StatusCode: 500, Message: "internal server error"}
}
