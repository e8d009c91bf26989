package app

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/example/flairbot/internal/ports/secondary"
)

func TestReplyCorrelator_AppliesRequestedFlair(t *testing.T) {
	f := newTestFixture(t)
	f.track(t, "t3_abc", "t4_x")
	f.forum.unread = []*secondary.MessageRecord{privateMessage("t4_r1", "t4_x", "meme please")}

	report, err := f.correlator().Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []flairCall{{Community: "testsub", SubmissionID: "t3_abc", Text: "Meme", CSSClass: "meme"}}
	if diff := cmp.Diff(want, f.forum.flairs); diff != "" {
		t.Errorf("flair calls mismatch (-want +got):\n%s", diff)
	}
	if f.store.Contains("t3_abc") {
		t.Error("expected t3_abc to be untracked")
	}
	if f.forum.read["t4_r1"] != 1 {
		t.Error("expected reply to be marked read")
	}
	if report.Flaired != 1 || report.Untracked != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestReplyCorrelator_MapsDisplayNameToCSSClass(t *testing.T) {
	f := newTestFixture(t)
	f.track(t, "t3_abc", "t4_x")
	f.forum.unread = []*secondary.MessageRecord{privateMessage("t4_r1", "t4_x", "it's a DISCUSSION")}

	if _, err := f.correlator().Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []flairCall{{Community: "testsub", SubmissionID: "t3_abc", Text: "Discussion", CSSClass: "discuss"}}
	if diff := cmp.Diff(want, f.forum.flairs); diff != "" {
		t.Errorf("flair calls mismatch (-want +got):\n%s", diff)
	}
}

func TestReplyCorrelator_RejectsUnknownFlair(t *testing.T) {
	f := newTestFixture(t)
	f.track(t, "t3_abc", "t4_x")
	f.forum.unread = []*secondary.MessageRecord{privateMessage("t4_r1", "t4_x", "banana")}

	report, err := f.correlator().Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []replyCall{{MessageID: "t4_r1", Body: "Unfortunately, 'banana' does not contain a valid flair."}}
	if diff := cmp.Diff(want, f.forum.replies); diff != "" {
		t.Errorf("reply calls mismatch (-want +got):\n%s", diff)
	}
	if len(f.forum.flairs) != 0 {
		t.Errorf("expected no flair calls, got %d", len(f.forum.flairs))
	}
	if !f.store.Contains("t3_abc") {
		t.Error("expected t3_abc to stay tracked")
	}
	if f.forum.read["t4_r1"] != 1 {
		t.Error("expected reply to be marked read")
	}
	if report.Rejected != 1 {
		t.Errorf("expected 1 rejection, got %d", report.Rejected)
	}
}

func TestReplyCorrelator_RetryAfterRejection(t *testing.T) {
	f := newTestFixture(t)
	f.track(t, "t3_abc", "t4_x")
	correlator := f.correlator()

	f.forum.unread = []*secondary.MessageRecord{privateMessage("t4_r1", "t4_x", "banana")}
	if _, err := correlator.Run(context.Background()); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}

	// second reply in the same thread still resolves through the root
	f.forum.unread = append(f.forum.unread, privateMessage("t4_r2", "t4_x", "ok, rant"))
	if _, err := correlator.Run(context.Background()); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	if len(f.forum.flairs) != 1 || f.forum.flairs[0].Text != "Rant" {
		t.Errorf("expected Rant flair, got %+v", f.forum.flairs)
	}
	if f.store.Contains("t3_abc") {
		t.Error("expected t3_abc to be untracked")
	}
}

func TestReplyCorrelator_IgnoresUnrelatedItems(t *testing.T) {
	f := newTestFixture(t)
	f.track(t, "t3_abc", "t4_x")

	commentReply := privateMessage("t1_c", "", "meme")
	commentReply.Kind = secondary.MessageKindOther
	f.forum.unread = []*secondary.MessageRecord{
		commentReply,
		privateMessage("t4_stranger", "", "meme"),
		privateMessage("t4_r9", "t4_unknown", "meme"),
	}

	report, err := f.correlator().Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(f.forum.flairs) != 0 || len(f.forum.replies) != 0 {
		t.Errorf("expected no actions, got flairs=%v replies=%v", f.forum.flairs, f.forum.replies)
	}
	for _, id := range []string{"t1_c", "t4_stranger", "t4_r9"} {
		if f.forum.read[id] != 1 {
			t.Errorf("expected %s to be marked read", id)
		}
	}
	if report.Seen != 3 {
		t.Errorf("expected 3 seen, got %d", report.Seen)
	}
	if !f.store.Contains("t3_abc") {
		t.Error("expected t3_abc to stay tracked")
	}
}

func TestReplyCorrelator_ForbiddenFlairKeepsTracking(t *testing.T) {
	f := newTestFixture(t)
	f.track(t, "t3_abc", "t4_x")
	f.forum.flairErr = forbiddenErr()
	f.forum.unread = []*secondary.MessageRecord{privateMessage("t4_r1", "t4_x", "meme")}

	report, err := f.correlator().Run(context.Background())
	if err != nil {
		t.Fatalf("forbidden flair should not fail the pass: %v", err)
	}

	if !f.store.Contains("t3_abc") {
		t.Error("expected t3_abc to stay tracked so the timeout still applies")
	}
	if f.forum.read["t4_r1"] != 1 {
		t.Error("expected reply to be marked read")
	}
	if report.Forbidden != 1 || report.Flaired != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestReplyCorrelator_FatalErrorLeavesReplyUnread(t *testing.T) {
	f := newTestFixture(t)
	f.track(t, "t3_abc", "t4_x")
	f.forum.flairErr = platformErr()
	f.forum.unread = []*secondary.MessageRecord{privateMessage("t4_r1", "t4_x", "meme")}
	correlator := f.correlator()

	if _, err := correlator.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if f.forum.read["t4_r1"] != 0 {
		t.Error("expected reply to stay unread for the next cycle")
	}

	// platform recovers; the reply is processed exactly once
	f.forum.flairErr = nil
	if _, err := correlator.Run(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if _, err := correlator.Run(context.Background()); err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if len(f.forum.flairs) != 1 {
		t.Errorf("expected exactly 1 flair call, got %d", len(f.forum.flairs))
	}
	if f.store.Contains("t3_abc") {
		t.Error("expected t3_abc to be untracked")
	}
}
