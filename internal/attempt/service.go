package attempt

import (
	"context"
	"errors"
	"fmt"

	"awareness-game/internal/model"
	"awareness-game/internal/store"
)

var ErrNoContent = errors.New("no questions available for this category")

// Store is the slice of the persistence gateway attempts need.
type Store interface {
	Insert(ctx context.Context, collection string, doc store.Record) (string, error)
}

type QuestionSource interface {
	QuestionsForCategory(ctx context.Context, category string) ([]model.Question, error)
}

type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (model.User, error)
}

type ProgressRecorder interface {
	RecordResult(ctx context.Context, attempt model.Attempt) (model.CategoryStats, error)
}

type Result struct {
	AttemptID string  `json:"attempt_id"`
	Score     float64 `json:"score"`
	Correct   int     `json:"correct"`
	Total     int     `json:"total"`
}

type Service struct {
	store     Store
	questions QuestionSource
	users     TokenResolver
	progress  ProgressRecorder
}

func NewService(st Store, questions QuestionSource, users TokenResolver, progress ProgressRecorder) *Service {
	return &Service{
		store:     st,
		questions: questions,
		users:     users,
		progress:  progress,
	}
}

// Submit scores answers against every question in category, appends the
// attempt to the log and folds the score into the user's progress.
//
// The attempt insert and the progress update are separate writes. If the
// second fails the attempt stays recorded and the error is returned; the
// periodic progress rebuild brings the summary back in line with the log.
func (s *Service) Submit(ctx context.Context, token, category string, answers []int) (Result, error) {
	questions, err := s.questions.QuestionsForCategory(ctx, category)
	if err != nil {
		return Result{}, err
	}
	if len(questions) == 0 {
		return Result{}, ErrNoContent
	}

	user, err := s.users.ResolveToken(ctx, token)
	if err != nil {
		return Result{}, err
	}

	correct, total, score := Score(questions, answers)

	recorded := make([]int, len(answers))
	copy(recorded, answers)
	attempt := &model.Attempt{
		UserID:       user.ID,
		Category:     category,
		Answers:      recorded,
		CorrectCount: correct,
		Total:        total,
		Score:        score,
	}
	attemptID, err := s.store.Insert(ctx, model.CollectionAttempt, attempt)
	if err != nil {
		return Result{}, err
	}

	if _, err := s.progress.RecordResult(ctx, *attempt); err != nil {
		return Result{}, fmt.Errorf("attempt %s recorded, progress update failed: %w", attemptID, err)
	}

	return Result{
		AttemptID: attemptID,
		Score:     score,
		Correct:   correct,
		Total:     total,
	}, nil
}
