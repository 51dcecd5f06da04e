// Package opentdb imports multiple-choice questions from the Open Trivia
// Database into the question bank.
package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultAPIURL = "https://opentdb.com/api.php"
	defaultAmount = 10
	// maxAmount is the largest batch the API serves per call.
	maxAmount = 50

	// CategoryComputers is the "Science: Computers" category id.
	CategoryComputers = 18
)

// RawQuestion mirrors the OpenTriviaDB question payload.
type RawQuestion struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type apiResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []RawQuestion `json:"results"`
}

// Query selects which questions to fetch. Zero values leave the filter off.
type Query struct {
	Amount     int
	Category   int
	Difficulty string
}

type Client struct {
	apiURL     string
	httpClient *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{apiURL: defaultAPIURL, httpClient: httpClient}
}

func (c *Client) FetchQuestions(ctx context.Context, query Query) ([]RawQuestion, error) {
	amount := query.Amount
	if amount <= 0 {
		amount = defaultAmount
	}
	if amount > maxAmount {
		amount = maxAmount
	}

	params := url.Values{}
	params.Set("amount", strconv.Itoa(amount))
	if query.Category > 0 {
		params.Set("category", strconv.Itoa(query.Category))
	}
	if difficulty := strings.ToLower(strings.TrimSpace(query.Difficulty)); difficulty != "" {
		params.Set("difficulty", difficulty)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("opentdb returned status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	if payload.ResponseCode != 0 {
		return nil, fmt.Errorf("opentdb response_code=%d", payload.ResponseCode)
	}

	return payload.Results, nil
}
