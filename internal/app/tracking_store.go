package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/example/flairbot/internal/ports/secondary"
)

// ErrAlreadyTracked is returned by Put when the submission is already in flight.
var ErrAlreadyTracked = errors.New("submission already tracked")

// TrackingStore is the log of in-flight submissions: submission -> prompt
// message. Every mutation is written through to the snapshot store.
//
// Operator commands edit the same snapshot from another process. Before
// every mutation, and on Refresh, changes made there since this store last
// read or wrote the snapshot are merged in, so a wholesale write never
// resurrects an entry that was removed elsewhere.
//
// A TrackingStore is owned by a single goroutine and is not safe for
// concurrent use.
type TrackingStore struct {
	snapshots secondary.SnapshotStore
	logger    *zap.Logger

	bySubmission map[string]string
	byMessage    map[string]string

	// persisted is the snapshot as last read or written by this store.
	persisted map[string]string
}

// NewTrackingStore creates an empty TrackingStore backed by snapshots.
func NewTrackingStore(snapshots secondary.SnapshotStore, logger *zap.Logger) *TrackingStore {
	return &TrackingStore{
		snapshots:    snapshots,
		logger:       logger,
		bySubmission: make(map[string]string),
		byMessage:    make(map[string]string),
	}
}

// Load replaces the in-memory log with the persisted snapshot.
// A missing snapshot leaves the store empty and is not an error.
func (s *TrackingStore) Load(ctx context.Context) error {
	snapshot, err := s.snapshots.LoadSnapshot(ctx)
	if errors.Is(err, secondary.ErrNoSnapshot) {
		s.reset(nil)
		s.persisted = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load tracking log: %w", err)
	}
	s.reset(snapshot)
	s.persisted = snapshot
	return nil
}

// Refresh merges changes written to the snapshot by another process since
// this store last read or wrote it, and returns how many entries changed.
// Local changes that were never persisted are kept.
func (s *TrackingStore) Refresh(ctx context.Context) (int, error) {
	snapshot, err := s.snapshots.LoadSnapshot(ctx)
	if errors.Is(err, secondary.ErrNoSnapshot) {
		snapshot, err = nil, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to reload tracking log: %w", err)
	}

	changed := 0
	for submissionID, messageID := range s.persisted {
		if current, ok := snapshot[submissionID]; ok && current == messageID {
			continue
		}
		if s.bySubmission[submissionID] == messageID {
			s.drop(submissionID)
			changed++
		}
	}
	for submissionID, messageID := range snapshot {
		if previous, ok := s.persisted[submissionID]; ok && previous == messageID {
			continue
		}
		if s.bySubmission[submissionID] != messageID {
			s.drop(submissionID)
			s.bySubmission[submissionID] = messageID
			s.byMessage[messageID] = submissionID
			changed++
		}
	}
	s.persisted = snapshot
	return changed, nil
}

// sync runs Refresh before a mutation. A failed read leaves the in-memory
// log as it is.
func (s *TrackingStore) sync(ctx context.Context) {
	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn("failed to check tracking log for outside changes", zap.Error(err))
	}
}

func (s *TrackingStore) drop(submissionID string) {
	if messageID, ok := s.bySubmission[submissionID]; ok {
		delete(s.bySubmission, submissionID)
		delete(s.byMessage, messageID)
	}
}

func (s *TrackingStore) reset(snapshot map[string]string) {
	s.bySubmission = make(map[string]string, len(snapshot))
	s.byMessage = make(map[string]string, len(snapshot))
	for submissionID, messageID := range snapshot {
		s.bySubmission[submissionID] = messageID
		s.byMessage[messageID] = submissionID
	}
}

// Put starts tracking a submission. Entries are write-once: an already
// tracked submission is rejected with ErrAlreadyTracked.
func (s *TrackingStore) Put(ctx context.Context, submissionID, messageID string) error {
	s.sync(ctx)
	if _, exists := s.bySubmission[submissionID]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyTracked, submissionID)
	}
	s.bySubmission[submissionID] = messageID
	s.byMessage[messageID] = submissionID
	s.persist(ctx)
	return nil
}

// Remove stops tracking a submission. Removing an untracked submission is a no-op.
func (s *TrackingStore) Remove(ctx context.Context, submissionID string) {
	s.sync(ctx)
	if !s.Contains(submissionID) {
		return
	}
	s.drop(submissionID)
	s.persist(ctx)
}

// Contains reports whether a submission is tracked.
func (s *TrackingStore) Contains(submissionID string) bool {
	_, ok := s.bySubmission[submissionID]
	return ok
}

// FindBySubmission returns the prompt message sent about a submission.
func (s *TrackingStore) FindBySubmission(submissionID string) (string, bool) {
	messageID, ok := s.bySubmission[submissionID]
	return messageID, ok
}

// FindByMessage returns the submission a prompt message was sent about.
func (s *TrackingStore) FindByMessage(messageID string) (string, bool) {
	submissionID, ok := s.byMessage[messageID]
	return submissionID, ok
}

// TrackedIDs returns the tracked submission IDs in sorted order.
func (s *TrackingStore) TrackedIDs() []string {
	ids := make([]string, 0, len(s.bySubmission))
	for id := range s.bySubmission {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of tracked submissions.
func (s *TrackingStore) Len() int {
	return len(s.bySubmission)
}

// Snapshot returns a copy of the submission -> message mapping.
func (s *TrackingStore) Snapshot() map[string]string {
	out := make(map[string]string, len(s.bySubmission))
	for k, v := range s.bySubmission {
		out[k] = v
	}
	return out
}

// persist writes the whole log. A failed write is logged and the in-memory
// state is kept; the next successful write brings persistence back in line.
func (s *TrackingStore) persist(ctx context.Context) {
	snapshot := s.Snapshot()
	if err := s.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		s.logger.Warn("failed to persist tracking log",
			zap.Int("tracked", len(s.bySubmission)),
			zap.Error(err),
		)
		return
	}
	s.persisted = snapshot
}
