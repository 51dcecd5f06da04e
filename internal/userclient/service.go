package userclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

const (
	defaultServer            = "http://127.0.0.1:8000"
	defaultQuestionLimit     = 500
	defaultHTTPTimeout       = 5 * time.Second
	defaultMaxInvalidAnswers = 3
)

type Config struct {
	ServerURL string
	// QuestionLimit bounds how many questions a play session asks. Questions
	// past it are still scored by the server, as wrong answers.
	QuestionLimit     int
	MaxInvalidAnswers int
	HTTPTimeout       time.Duration
}

// session is the signed-in state of one terminal run.
type session struct {
	client            *HTTPClient
	reader            *bufio.Reader
	out               io.Writer
	serverURL         string
	questionLimit     int
	maxInvalidAnswers int

	token string
	user  publicUser
}

func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = defaultServer
	}

	questionLimit := cfg.QuestionLimit
	if questionLimit <= 0 {
		questionLimit = defaultQuestionLimit
	}
	maxInvalidAnswers := cfg.MaxInvalidAnswers
	if maxInvalidAnswers <= 0 {
		maxInvalidAnswers = defaultMaxInvalidAnswers
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	s := &session{
		client:            NewHTTPClient(serverURL, &http.Client{Timeout: timeout}),
		reader:            bufio.NewReader(in),
		out:               out,
		serverURL:         serverURL,
		questionLimit:     questionLimit,
		maxInvalidAnswers: maxInvalidAnswers,
	}

	fmt.Fprintf(out, "awareness-cli\nserver=%s\n\n", serverURL)
	printHelp(out)

	for {
		fmt.Fprint(out, "\n> ")
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		args := strings.Fields(line)
		command := strings.ToLower(args[0])

		var cmdErr error
		switch command {
		case "help":
			printHelp(out)
		case "exit", "quit":
			return nil
		case "register":
			cmdErr = s.register(ctx)
		case "login":
			cmdErr = s.login(ctx)
		case "logout":
			cmdErr = s.logout(ctx)
		case "seed":
			cmdErr = s.seed(ctx)
		case "categories":
			cmdErr = s.categories(ctx)
		case "play":
			if len(args) != 2 {
				fmt.Fprintln(out, "usage: play <category>")
				continue
			}
			cmdErr = s.play(ctx, args[1])
		case "progress":
			cmdErr = s.progress(ctx)
		default:
			fmt.Fprintln(out, "unknown command. type 'help' for usage.")
		}

		if cmdErr != nil {
			fmt.Fprintf(out, "error: %v\n", describeClientError(cmdErr, serverURL))
		}
	}
}

func (s *session) register(ctx context.Context) error {
	name, err := promptLine(s.reader, s.out, "Name: ")
	if err != nil {
		return err
	}
	email, err := promptLine(s.reader, s.out, "Email: ")
	if err != nil {
		return err
	}
	password, err := promptLine(s.reader, s.out, "Password: ")
	if err != nil {
		return err
	}

	userID, err := s.client.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Registered successfully (user_id=%s). Use 'login' to start.\n", userID)
	return nil
}

func (s *session) login(ctx context.Context) error {
	email, err := promptLine(s.reader, s.out, "Email: ")
	if err != nil {
		return err
	}
	password, err := promptLine(s.reader, s.out, "Password: ")
	if err != nil {
		return err
	}

	payload, err := s.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	s.token = payload.Token
	s.user = payload.User
	fmt.Fprintf(s.out, "Welcome, %s.\n", payload.User.Name)
	return nil
}

func (s *session) logout(ctx context.Context) error {
	if s.token == "" {
		fmt.Fprintln(s.out, "Not logged in.")
		return nil
	}
	if err := s.client.Logout(ctx, s.token); err != nil {
		return err
	}
	s.token = ""
	s.user = publicUser{}
	fmt.Fprintln(s.out, "Logged out.")
	return nil
}

func (s *session) seed(ctx context.Context) error {
	payload, err := s.client.Seed(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s (%d questions)\n", payload.Message, payload.Count)
	return nil
}

func (s *session) categories(ctx context.Context) error {
	names, err := s.client.Categories(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(s.out, "No questions yet. Try 'seed'.")
		return nil
	}

	fmt.Fprintln(s.out, "Categories:")
	for _, name := range names {
		fmt.Fprintf(s.out, "  %s\n", name)
	}
	return nil
}

// play walks through every question of a category, then submits the whole
// answer set. Unanswered questions are sent as -1 so positions stay aligned.
func (s *session) play(ctx context.Context, category string) error {
	if s.token == "" {
		fmt.Fprintln(s.out, "Please 'login' first.")
		return nil
	}

	// One extra question reveals a category larger than the limit.
	questions, err := s.client.ListQuestions(ctx, category, s.questionLimit+1)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		fmt.Fprintf(s.out, "No questions available for %s.\n", category)
		return nil
	}
	if len(questions) > s.questionLimit {
		questions = questions[:s.questionLimit]
		fmt.Fprintf(s.out, "Warning: %s has more than %d questions. Only the first %d are asked; the rest count as wrong.\n",
			category, s.questionLimit, s.questionLimit)
	}

	answers := make([]int, 0, len(questions))
	for idx, question := range questions {
		fmt.Fprintln(s.out)
		fmt.Fprintf(s.out, "[%d/%d] %s\n\n", idx+1, len(questions), question.Prompt)
		for optionIdx, option := range question.Options {
			fmt.Fprintf(s.out, "%c. %s\n", 'A'+optionIdx, option)
		}
		fmt.Fprintln(s.out)

		answers = append(answers, s.askQuestion(question))
	}

	result, err := s.client.Submit(ctx, s.token, category, answers)
	if err != nil {
		return err
	}

	fmt.Fprintln(s.out)
	fmt.Fprintf(s.out, "Score: %s%% (%d/%d correct)\n", formatScore(result.Score), result.Correct, result.Total)
	return nil
}

func (s *session) askQuestion(question questionItem) int {
	invalidCount := 0
	for {
		answerIndex, ok := promptAnswer(s.reader, s.out, len(question.Options))
		if !ok {
			invalidCount++
			if invalidCount >= s.maxInvalidAnswers {
				fmt.Fprintln(s.out, "Skipping question after multiple invalid responses.")
				return -1
			}
			fmt.Fprintf(s.out, "Invalid input. Attempts remaining: %d\n", s.maxInvalidAnswers-invalidCount)
			continue
		}

		if answerIndex == question.CorrectIndex {
			fmt.Fprintln(s.out, "Correct!")
		} else {
			fmt.Fprintf(s.out, "Wrong. Correct answer: %s\n", correctAnswerDisplay(question))
		}
		if question.Explanation != nil && strings.TrimSpace(*question.Explanation) != "" {
			fmt.Fprintln(s.out, *question.Explanation)
		}
		return answerIndex
	}
}

func (s *session) progress(ctx context.Context) error {
	if s.token == "" {
		fmt.Fprintln(s.out, "Please 'login' first.")
		return nil
	}

	byCategory, err := s.client.Progress(ctx, s.token)
	if err != nil {
		return err
	}
	if len(byCategory) == 0 {
		fmt.Fprintln(s.out, "No attempts yet.")
		return nil
	}

	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(s.out, "Progress:")
	for _, name := range names {
		stats := byCategory[name]
		fmt.Fprintf(s.out, "  %s attempts=%d best=%s last=%s\n",
			name,
			stats.Attempts,
			formatScore(stats.BestScore),
			formatScore(stats.LastScore),
		)
	}
	return nil
}
