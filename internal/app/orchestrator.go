package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/flairbot/internal/ctxutil"
	"github.com/example/flairbot/internal/ports/primary"
	"github.com/example/flairbot/internal/ports/secondary"
)

// OrchestratorConfig holds the loop pacing.
type OrchestratorConfig struct {
	PassDelay  time.Duration // between passes
	ErrorPause time.Duration // after a failed pass
	Interval   time.Duration // after each cycle
}

// OrchestratorImpl runs the passes in a fixed order, one cycle at a time.
// A failure in one pass is logged and never prevents the others from running.
type OrchestratorImpl struct {
	store      *TrackingStore
	passes     []primary.Pass
	config     OrchestratorConfig
	logger     *zap.Logger
	sleep      Sleeper
	newCycleID func() string
	loaded     bool
}

// NewOrchestrator creates a new OrchestratorImpl. Passes run in the given order.
func NewOrchestrator(store *TrackingStore, passes []primary.Pass, config OrchestratorConfig, logger *zap.Logger, sleep Sleeper) *OrchestratorImpl {
	return &OrchestratorImpl{
		store:      store,
		passes:     passes,
		config:     config,
		logger:     logger,
		sleep:      sleep,
		newCycleID: uuid.NewString,
	}
}

// Run loops until ctx is done.
// It returns nil when ctx is cancelled.
func (o *OrchestratorImpl) Run(ctx context.Context) error {
	for {
		o.RunOnce(ctx)
		if err := o.sleep(ctx, o.config.Interval); err != nil {
			o.logger.Info("enforcement loop stopped", zap.Int("tracked", o.store.Len()))
			return nil
		}
	}
}

// loadStore reads the persisted tracking log on the first cycle and merges
// changes made by operator commands on every later one.
func (o *OrchestratorImpl) loadStore(ctx context.Context) {
	if o.loaded {
		changed, err := o.store.Refresh(ctx)
		if err != nil {
			o.logger.Warn("failed to reload tracking log", zap.Error(err))
			return
		}
		if changed > 0 {
			o.logger.Info("merged outside changes to tracking log",
				zap.Int("changed", changed),
				zap.Int("tracked", o.store.Len()),
			)
		}
		return
	}
	o.loaded = true
	if err := o.store.Load(ctx); err != nil {
		o.logger.Error("failed to load tracking log, starting empty", zap.Error(err))
		return
	}
	o.logger.Info("loaded tracking log", zap.Int("tracked", o.store.Len()))
}

// RunOnce executes a single cycle of all passes and returns their reports.
// Each cycle starts from the persisted tracking log. Reports of failed passes are partial.
func (o *OrchestratorImpl) RunOnce(ctx context.Context) []*primary.PassReport {
	o.loadStore(ctx)

	cycleID := o.newCycleID()
	ctx = ctxutil.WithCycleID(ctx, cycleID)
	logger := o.logger.With(zap.String("cycle", cycleID))

	reports := make([]*primary.PassReport, 0, len(o.passes))
	for i, pass := range o.passes {
		if ctx.Err() != nil {
			break
		}

		report, err := o.runPass(ctx, pass)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			o.logPassError(logger, pass.Name(), err)
			if o.sleep(ctx, o.config.ErrorPause) != nil {
				break
			}
		} else if report != nil {
			logger.Info("pass complete",
				zap.String("pass", report.Pass),
				zap.Int("seen", report.Seen),
				zap.Int("prompted", report.Prompted),
				zap.Int("flaired", report.Flaired),
				zap.Int("rejected", report.Rejected),
				zap.Int("removed", report.Removed),
				zap.Int("untracked", report.Untracked),
				zap.Int("forbidden", report.Forbidden),
			)
		}

		if i < len(o.passes)-1 {
			if o.sleep(ctx, o.config.PassDelay) != nil {
				break
			}
		}
	}
	return reports
}

// runPass is the isolation boundary: errors and panics stop here.
func (o *OrchestratorImpl) runPass(ctx context.Context, pass primary.Pass) (report *primary.PassReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s pass: %v", pass.Name(), r)
		}
	}()
	return pass.Run(ctx)
}

func (o *OrchestratorImpl) logPassError(logger *zap.Logger, pass string, err error) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Info("pass interrupted", zap.String("pass", pass), zap.Error(err))
	case secondary.IsPlatformError(err):
		logger.Error("platform error during pass", zap.String("pass", pass), zap.Error(err))
	case errors.Is(err, ErrPromptUnconfirmed):
		logger.Error("protocol anomaly during pass", zap.String("pass", pass), zap.Error(err))
	default:
		logger.Error("unexpected error during pass", zap.String("pass", pass), zap.Error(err))
	}
}

var _ primary.Orchestrator = (*OrchestratorImpl)(nil)
