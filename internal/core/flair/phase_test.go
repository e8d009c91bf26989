package flair

import (
	"testing"
	"time"
)

func TestComputePhase(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	timing := Timing{PromptDelay: 60 * time.Second, RemovalDeadline: 600 * time.Second}
	ago := func(seconds int) time.Time { return now.Add(-time.Duration(seconds) * time.Second) }

	tests := []struct {
		name    string
		facts   SubmissionFacts
		tracked bool
		want    Phase
	}{
		{name: "30s old is too young", facts: SubmissionFacts{CreatedAt: ago(30)}, want: PhaseTooYoung},
		{name: "exactly the prompt delay is still too young", facts: SubmissionFacts{CreatedAt: ago(60)}, want: PhaseTooYoung},
		{name: "90s old untracked awaits a tag", facts: SubmissionFacts{CreatedAt: ago(90)}, want: PhaseAwaitingTag},
		{name: "exactly the deadline still awaits a tag", facts: SubmissionFacts{CreatedAt: ago(600)}, want: PhaseAwaitingTag},
		{name: "past the deadline untracked is expired", facts: SubmissionFacts{CreatedAt: ago(650)}, want: PhaseExpired},
		{name: "tracked is in flight", facts: SubmissionFacts{CreatedAt: ago(90)}, tracked: true, want: PhaseInFlight},
		{name: "tracked past deadline is still in flight", facts: SubmissionFacts{CreatedAt: ago(650)}, tracked: true, want: PhaseInFlight},
		{name: "flaired is resolved", facts: SubmissionFacts{CreatedAt: ago(90), Flaired: true}, want: PhaseResolved},
		{name: "flaired and tracked is resolved", facts: SubmissionFacts{CreatedAt: ago(90), Flaired: true}, tracked: true, want: PhaseResolved},
		{name: "vanished is resolved", facts: SubmissionFacts{CreatedAt: ago(10), Vanished: true}, want: PhaseResolved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputePhase(now, tt.facts, tt.tracked, timing); got != tt.want {
				t.Errorf("ComputePhase = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPastDeadline(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	timing := Timing{PromptDelay: time.Minute, RemovalDeadline: 10 * time.Minute}

	if PastDeadline(now, now.Add(-10*time.Minute), timing) {
		t.Error("age equal to deadline should not be past it")
	}
	if !PastDeadline(now, now.Add(-10*time.Minute-time.Second), timing) {
		t.Error("age beyond deadline should be past it")
	}
}
