package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"awareness-game/internal/model"
	"awareness-game/internal/store"
)

const (
	// maxCASRetries bounds how often one update re-reads after losing a race.
	maxCASRetries = 16
	// appliedWindow is how long a folded attempt id is remembered. It must
	// outlast the gap between an attempt insert and its RecordResult.
	appliedWindow = 24 * time.Hour
)

var ErrConflict = errors.New("progress update conflict")

// Store is the slice of the persistence gateway progress needs.
type Store interface {
	Insert(ctx context.Context, collection string, doc store.Record) (string, error)
	FindOne(ctx context.Context, collection string, filter store.Filter, dest any) error
	FindMany(ctx context.Context, collection string, filter store.Filter, limit int, dest any) error
	UpdateOne(ctx context.Context, collection string, filter store.Filter, patch store.Patch) (bool, error)
	Distinct(ctx context.Context, collection, column string, filter store.Filter) ([]string, error)
}

// TokenResolver maps a session token to its user.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (model.User, error)
}

type Service struct {
	store Store
	users TokenResolver
	now   func() time.Time
}

func NewService(st Store, users TokenResolver) *Service {
	return &Service{
		store: st,
		users: users,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Apply folds one score into a category summary.
func Apply(stats model.CategoryStats, score float64) model.CategoryStats {
	stats.Attempts++
	if score > stats.BestScore {
		stats.BestScore = score
	}
	stats.LastScore = score
	return stats
}

// Aggregate replays attempts in order into per-category summaries.
func Aggregate(attempts []model.Attempt) map[string]model.CategoryStats {
	out := make(map[string]model.CategoryStats)
	for _, attempt := range attempts {
		out[attempt.Category] = Apply(out[attempt.Category], attempt.Score)
	}
	return out
}

// RecordResult folds a logged attempt into the user's summary for its
// category. Concurrent writers are serialised by a compare-and-swap on the
// record version; only the attempt's category changes. An attempt already
// folded, by an earlier call or by Rebuild, is not counted again and the
// current stats are returned.
func (s *Service) RecordResult(ctx context.Context, attempt model.Attempt) (model.CategoryStats, error) {
	createdAt := attempt.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	var stats model.CategoryStats
	err := s.update(ctx, attempt.UserID, func(sum *summary) (bool, error) {
		if _, done := sum.applied[attempt.ID]; done && attempt.ID != "" {
			stats = sum.byCategory[attempt.Category]
			return false, nil
		}
		stats = Apply(sum.byCategory[attempt.Category], attempt.Score)
		sum.byCategory[attempt.Category] = stats
		if attempt.ID != "" {
			sum.applied[attempt.ID] = createdAt
		}
		return true, nil
	})
	if err != nil {
		return model.CategoryStats{}, err
	}
	return stats, nil
}

// GetProgress returns the caller's per-category summary; empty when the user
// has no attempts yet.
func (s *Service) GetProgress(ctx context.Context, token string) (map[string]model.CategoryStats, error) {
	user, err := s.users.ResolveToken(ctx, token)
	if err != nil {
		return nil, err
	}

	var record model.Progress
	if err := s.store.FindOne(ctx, model.CollectionProgress, store.Filter{"user_id": user.ID}, &record); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return map[string]model.CategoryStats{}, nil
		}
		return nil, err
	}
	return record.Stats(), nil
}

// Rebuild recomputes the user's summary from the attempt log and stores it.
// Every attempt read is marked as folded, so a RecordResult still in flight
// for one of them leaves the rebuilt summary alone.
func (s *Service) Rebuild(ctx context.Context, userID string) (map[string]model.CategoryStats, error) {
	var rebuilt map[string]model.CategoryStats
	err := s.update(ctx, userID, func(sum *summary) (bool, error) {
		attempts := make([]model.Attempt, 0)
		if err := s.store.FindMany(ctx, model.CollectionAttempt, store.Filter{"user_id": userID}, 0, &attempts); err != nil {
			return false, err
		}
		rebuilt = Aggregate(attempts)

		sum.byCategory = make(map[string]model.CategoryStats, len(rebuilt))
		for category, stats := range rebuilt {
			sum.byCategory[category] = stats
		}
		sum.applied = make(map[string]time.Time, len(attempts))
		for _, attempt := range attempts {
			sum.applied[attempt.ID] = attempt.CreatedAt
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return rebuilt, nil
}

// RebuildAll rebuilds every user that has at least one attempt and returns
// how many were processed.
func (s *Service) RebuildAll(ctx context.Context) (int, error) {
	userIDs, err := s.store.Distinct(ctx, model.CollectionAttempt, "user_id", nil)
	if err != nil {
		return 0, err
	}
	for idx, userID := range userIDs {
		if _, err := s.Rebuild(ctx, userID); err != nil {
			return idx, fmt.Errorf("rebuild %s: %w", userID, err)
		}
	}
	return len(userIDs), nil
}

// summary is the mutable part of a Progress record.
type summary struct {
	byCategory map[string]model.CategoryStats
	applied    map[string]time.Time
}

// prune forgets folded attempts older than appliedWindow.
func (sum *summary) prune(now time.Time) {
	cutoff := now.Add(-appliedWindow)
	for id, createdAt := range sum.applied {
		if createdAt.Before(cutoff) {
			delete(sum.applied, id)
		}
	}
}

// update runs mutate against a fresh copy of the user's summary and writes
// it back only if no other writer got there first. mutate returning false
// skips the write.
func (s *Service) update(ctx context.Context, userID string, mutate func(*summary) (bool, error)) error {
	for try := 0; try < maxCASRetries; try++ {
		var current model.Progress
		err := s.store.FindOne(ctx, model.CollectionProgress, store.Filter{"user_id": userID}, &current)
		exists := true
		switch {
		case errors.Is(err, store.ErrNotFound):
			exists = false
		case err != nil:
			return err
		}

		sum := &summary{byCategory: current.Stats(), applied: current.AppliedAttempts()}
		changed, err := mutate(sum)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		now := s.now()
		sum.prune(now)

		if !exists {
			record := &model.Progress{
				UserID:     userID,
				ByCategory: datatypes.NewJSONType(sum.byCategory),
				Applied:    datatypes.NewJSONType(sum.applied),
			}
			if _, err := s.store.Insert(ctx, model.CollectionProgress, record); err != nil {
				if errors.Is(err, store.ErrDuplicate) {
					continue
				}
				return err
			}
			return nil
		}

		swapped, err := s.store.UpdateOne(ctx, model.CollectionProgress,
			store.Filter{"user_id": userID, "version": current.Version},
			store.Patch{
				"by_category": datatypes.NewJSONType(sum.byCategory),
				"applied":     datatypes.NewJSONType(sum.applied),
				"version":     current.Version + 1,
				"updated_at":  now,
			},
		)
		if err != nil {
			return err
		}
		if swapped {
			return nil
		}
	}
	return ErrConflict
}
