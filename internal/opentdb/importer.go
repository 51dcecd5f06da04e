package opentdb

import (
	"context"
	"errors"
	"fmt"
	"html"
	"math/rand"
	"strings"

	"awareness-game/internal/content"
)

type Fetcher interface {
	FetchQuestions(ctx context.Context, query Query) ([]RawQuestion, error)
}

type QuestionCreator interface {
	CreateQuestion(ctx context.Context, input content.NewQuestion) (string, error)
}

// ImportResult counts what happened to each fetched question.
type ImportResult struct {
	Created int
	Skipped int
}

// Import fetches a batch and stores each question under category. Questions
// the bank rejects as invalid are skipped; any other error stops the import.
func Import(ctx context.Context, fetcher Fetcher, creator QuestionCreator, query Query, category string, shuffle func(n int, swap func(i, j int))) (ImportResult, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return ImportResult{}, errors.New("category is required")
	}
	if shuffle == nil {
		shuffle = rand.Shuffle
	}

	raw, err := fetcher.FetchQuestions(ctx, query)
	if err != nil {
		return ImportResult{}, fmt.Errorf("fetch questions: %w", err)
	}

	var result ImportResult
	for _, item := range raw {
		if _, err := creator.CreateQuestion(ctx, ToNewQuestion(item, category, shuffle)); err != nil {
			if errors.Is(err, content.ErrInvalidQuestion) {
				result.Skipped++
				continue
			}
			return result, err
		}
		result.Created++
	}
	return result, nil
}

// ToNewQuestion unescapes the HTML-encoded payload and shuffles the correct
// answer in among the incorrect ones.
func ToNewQuestion(raw RawQuestion, category string, shuffle func(n int, swap func(i, j int))) content.NewQuestion {
	type choice struct {
		text      string
		isCorrect bool
	}

	choices := make([]choice, 0, len(raw.IncorrectAnswers)+1)
	for _, incorrect := range raw.IncorrectAnswers {
		choices = append(choices, choice{
			text:      html.UnescapeString(incorrect),
			isCorrect: false,
		})
	}

	choices = append(choices, choice{
		text:      html.UnescapeString(raw.CorrectAnswer),
		isCorrect: true,
	})

	shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})

	options := make([]string, len(choices))
	correctIndex := -1
	for idx, candidate := range choices {
		options[idx] = candidate.text
		if candidate.isCorrect {
			correctIndex = idx
		}
	}

	return content.NewQuestion{
		Category:     category,
		Prompt:       html.UnescapeString(raw.Question),
		Options:      options,
		CorrectIndex: correctIndex,
		Difficulty:   strings.ToLower(strings.TrimSpace(raw.Difficulty)),
	}
}
