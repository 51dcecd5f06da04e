package userclient

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// promptAnswer reads a letter answer and returns its zero-based option index.
func promptAnswer(reader *bufio.Reader, out io.Writer, optionCount int) (int, bool) {
	if optionCount < 1 || optionCount > 26 {
		return 0, false
	}

	maxLetter := byte('A' + optionCount - 1)
	fmt.Fprintf(out, "Your answer (A-%c): ", maxLetter)

	line, err := reader.ReadString('\n')
	if err != nil {
		return 0, false
	}

	answer := strings.ToUpper(strings.TrimSpace(line))
	if len(answer) != 1 {
		return 0, false
	}
	letter := answer[0]
	if letter < 'A' || letter > maxLetter {
		return 0, false
	}

	return int(letter - 'A'), true
}

func promptLine(reader *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "  register")
	fmt.Fprintln(out, "  login")
	fmt.Fprintln(out, "  logout")
	fmt.Fprintln(out, "  seed")
	fmt.Fprintln(out, "  categories")
	fmt.Fprintln(out, "  play <category>")
	fmt.Fprintln(out, "  progress")
	fmt.Fprintln(out, "  exit")
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func describeClientError(err error, serverURL string) error {
	if errors.Is(err, ErrServiceUnavailable) {
		return fmt.Errorf("awareness service unavailable at %s", serverURL)
	}
	return err
}

func correctAnswerDisplay(question questionItem) string {
	if question.CorrectIndex < 0 || question.CorrectIndex >= len(question.Options) {
		return "unknown"
	}
	return fmt.Sprintf("%c. %s", 'A'+question.CorrectIndex, question.Options[question.CorrectIndex])
}
