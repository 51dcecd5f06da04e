package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"awareness-game/internal/model"
	"awareness-game/internal/store"
)

const DefaultListLimit = 20

var ErrInvalidQuestion = errors.New("invalid question")

// Store is the slice of the persistence gateway content needs.
type Store interface {
	Insert(ctx context.Context, collection string, doc store.Record) (string, error)
	FindMany(ctx context.Context, collection string, filter store.Filter, limit int, dest any) error
	Count(ctx context.Context, collection string, filter store.Filter) (int64, error)
	Distinct(ctx context.Context, collection, column string, filter store.Filter) ([]string, error)
}

// NewQuestion is the input for CreateQuestion.
type NewQuestion struct {
	Category     string
	Prompt       string
	Options      []string
	CorrectIndex int
	Explanation  *string
	Difficulty   string
}

type SeedResult struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

type Service struct {
	store Store
}

func NewService(st Store) *Service {
	return &Service{store: st}
}

func (s *Service) CreateQuestion(ctx context.Context, input NewQuestion) (string, error) {
	question, err := buildQuestion(input)
	if err != nil {
		return "", err
	}
	return s.store.Insert(ctx, model.CollectionQuestion, question)
}

// ListQuestions returns at most limit questions, optionally for one category.
func (s *Service) ListQuestions(ctx context.Context, category string, limit int) ([]model.Question, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	filter := store.Filter{}
	if category = strings.TrimSpace(category); category != "" {
		filter["category"] = category
	}

	questions := make([]model.Question, 0)
	if err := s.store.FindMany(ctx, model.CollectionQuestion, filter, limit, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// QuestionsForCategory returns every question in category in store order.
func (s *Service) QuestionsForCategory(ctx context.Context, category string) ([]model.Question, error) {
	questions := make([]model.Question, 0)
	if err := s.store.FindMany(ctx, model.CollectionQuestion, store.Filter{"category": category}, 0, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// Categories lists the distinct categories that have questions.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.store.Distinct(ctx, model.CollectionQuestion, "category", nil)
}

// Seed inserts the starter questions unless any question already exists.
func (s *Service) Seed(ctx context.Context) (SeedResult, error) {
	count, err := s.store.Count(ctx, model.CollectionQuestion, nil)
	if err != nil {
		return SeedResult{}, err
	}
	if count > 0 {
		return SeedResult{Message: "Questions already seeded", Count: count}, nil
	}

	samples := starterQuestions()
	for _, sample := range samples {
		question, err := buildQuestion(sample)
		if err != nil {
			return SeedResult{}, err
		}
		if _, err := s.store.Insert(ctx, model.CollectionQuestion, question); err != nil {
			return SeedResult{}, fmt.Errorf("seed %s: %w", sample.Category, err)
		}
	}
	return SeedResult{Message: "Seeded", Count: int64(len(samples))}, nil
}

// buildQuestion enforces the write-time invariants on a question.
func buildQuestion(input NewQuestion) (*model.Question, error) {
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrInvalidQuestion)
	}
	if strings.TrimSpace(input.Prompt) == "" {
		return nil, fmt.Errorf("%w: prompt is required", ErrInvalidQuestion)
	}
	if len(input.Options) < 2 {
		return nil, fmt.Errorf("%w: at least 2 options are required", ErrInvalidQuestion)
	}
	for idx, option := range input.Options {
		if strings.TrimSpace(option) == "" {
			return nil, fmt.Errorf("%w: option %d is empty", ErrInvalidQuestion, idx)
		}
	}
	if input.CorrectIndex < 0 || input.CorrectIndex >= len(input.Options) {
		return nil, fmt.Errorf("%w: correct_index %d out of range [0, %d)", ErrInvalidQuestion, input.CorrectIndex, len(input.Options))
	}

	difficulty := strings.ToLower(strings.TrimSpace(input.Difficulty))
	switch difficulty {
	case "":
		difficulty = model.DifficultyEasy
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
	default:
		return nil, fmt.Errorf("%w: difficulty must be easy, medium or hard", ErrInvalidQuestion)
	}

	options := make([]string, len(input.Options))
	copy(options, input.Options)

	return &model.Question{
		Category:     category,
		Prompt:       input.Prompt,
		Options:      options,
		CorrectIndex: input.CorrectIndex,
		Explanation:  input.Explanation,
		Difficulty:   difficulty,
	}, nil
}
