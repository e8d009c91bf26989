package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/flairbot/internal/core/effects"
	"github.com/example/flairbot/internal/core/flair"
	"github.com/example/flairbot/internal/ports/primary"
	"github.com/example/flairbot/internal/ports/secondary"
	"github.com/example/flairbot/internal/templates"
)

// ErrPromptUnconfirmed is returned when the most recent sent message does
// not reference the submission just prompted. The platform's send call
// returns no message identity, so the prompt is confirmed by reading back
// the sent folder; a mismatch means the log cannot be written safely.
var ErrPromptUnconfirmed = errors.New("prompt send could not be confirmed")

// PostScannerConfig holds the scanner's policy settings.
type PostScannerConfig struct {
	Community    string
	ScanLimit    int
	Timing       flair.Timing
	GuideURL     string
	ConfirmDelay time.Duration // settle time before reading back the sent message
}

// PostScanner prompts the authors of unflaired submissions.
type PostScanner struct {
	forum   secondary.ForumClient
	store   *TrackingStore
	catalog *flair.Catalog
	config  PostScannerConfig
	audit   *auditor
	logger  *zap.Logger
	now     Clock
	sleep   Sleeper
}

// NewPostScanner creates a new PostScanner with injected dependencies.
func NewPostScanner(forum secondary.ForumClient, store *TrackingStore, catalog *flair.Catalog, auditLog secondary.AuditLog, config PostScannerConfig, logger *zap.Logger, now Clock, sleep Sleeper) *PostScanner {
	return &PostScanner{
		forum:   forum,
		store:   store,
		catalog: catalog,
		config:  config,
		audit:   newAuditor(auditLog, logger),
		logger:  logger,
		now:     now,
		sleep:   sleep,
	}
}

// Name returns the pass name.
func (s *PostScanner) Name() string { return primary.PassScan }

// Run inspects the newest submissions and prompts every qualifying author.
func (s *PostScanner) Run(ctx context.Context) (*primary.PassReport, error) {
	report := &primary.PassReport{Pass: s.Name()}

	submissions, err := s.forum.NewSubmissions(ctx, s.config.Community, s.config.ScanLimit)
	if err != nil {
		return report, fmt.Errorf("failed to list new submissions: %w", err)
	}

	now := s.now()
	for _, sub := range submissions {
		report.Seen++

		phase := flair.ComputePhase(now, factsOf(sub), s.store.Contains(sub.ID), s.config.Timing)
		guard := flair.CanPrompt(flair.PromptContext{
			SubmissionID: sub.ID,
			Author:       sub.Author,
			Phase:        phase,
		})
		if !guard.Allowed {
			continue
		}

		if err := s.prompt(ctx, sub); err != nil {
			return report, err
		}
		report.Prompted++
	}

	return report, nil
}

// prompt sends the flair prompt, confirms it by reading back the sent
// folder, and only then records the submission as tracked.
func (s *PostScanner) prompt(ctx context.Context, sub *secondary.SubmissionRecord) error {
	body, err := templates.RenderPrompt(templates.PromptData{
		Shortlink:       sub.Shortlink,
		DeadlineMinutes: wholeMinutes(s.config.Timing.RemovalDeadline),
		GuideURL:        s.config.GuideURL,
		Flairs:          s.catalog.DisplayNames(),
	})
	if err != nil {
		return err
	}

	if err := s.forum.SendMessage(ctx, sub.Author, templates.PromptSubject, body); err != nil {
		return fmt.Errorf("failed to send prompt for %s: %w", sub.ID, err)
	}

	// Once sent, the prompt is confirmed and recorded even if ctx is cancelled.
	ctx = context.WithoutCancel(ctx)

	if err := s.sleep(ctx, s.config.ConfirmDelay); err != nil {
		return err
	}

	sent, err := s.forum.LatestSentMessage(ctx)
	if err != nil {
		return fmt.Errorf("failed to read back prompt for %s: %w", sub.ID, err)
	}
	if sent == nil || !strings.Contains(sent.Body, sub.Shortlink) {
		latest := ""
		if sent != nil {
			latest = sent.ID
		}
		return fmt.Errorf("%w: submission %s, latest sent message %q", ErrPromptUnconfirmed, sub.ID, latest)
	}

	if err := s.store.Put(ctx, sub.ID, sent.ID); err != nil {
		return err
	}

	s.logger.Info("prompted author for flair",
		zap.String("submission", sub.ID),
		zap.String("author", sub.Author),
		zap.String("message", sent.ID),
	)
	s.audit.record(ctx, sub.ID, sent.ID, effects.AuditPrompted, "to "+sub.Author)
	return nil
}

// wholeMinutes rounds d up to whole minutes.
func wholeMinutes(d time.Duration) int {
	return int((d + time.Minute - 1) / time.Minute)
}

// factsOf extracts the phase-relevant facts from a platform record.
func factsOf(sub *secondary.SubmissionRecord) flair.SubmissionFacts {
	return flair.SubmissionFacts{
		CreatedAt: sub.CreatedAt,
		Flaired:   strings.TrimSpace(sub.FlairText) != "",
		Vanished:  sub.Removed,
	}
}

var _ primary.Pass = (*PostScanner)(nil)
