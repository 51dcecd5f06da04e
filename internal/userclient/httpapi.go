package userclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

var ErrServiceUnavailable = errors.New("awareness service unavailable")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

type publicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  publicUser `json:"user"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type questionItem struct {
	ID           string   `json:"id"`
	Category     string   `json:"category"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  *string  `json:"explanation"`
	Difficulty   string   `json:"difficulty"`
}

type seedResponse struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

type submitRequest struct {
	Token    string `json:"token"`
	Category string `json:"category"`
	Answers  []int  `json:"answers"`
}

type submitResponse struct {
	AttemptID string  `json:"attempt_id"`
	Score     float64 `json:"score"`
	Correct   int     `json:"correct"`
	Total     int     `json:"total"`
}

type categoryStats struct {
	Attempts  int     `json:"attempts"`
	BestScore float64 `json:"best_score"`
	LastScore float64 `json:"last_score"`
}

type progressResponse struct {
	ByCategory map[string]categoryStats `json:"by_category"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultServer
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string) (string, error) {
	var payload registerResponse
	request := registerRequest{Name: name, Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", request, &payload); err != nil {
		return "", err
	}
	return payload.UserID, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (loginResponse, error) {
	var payload loginResponse
	request := loginRequest{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", request, &payload); err != nil {
		return loginResponse{}, err
	}
	return payload, nil
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/logout", tokenRequest{Token: token}, nil)
}

func (c *HTTPClient) Seed(ctx context.Context) (seedResponse, error) {
	var payload seedResponse
	if err := c.doJSON(ctx, http.MethodPost, "/content/seed", nil, &payload); err != nil {
		return seedResponse{}, err
	}
	return payload, nil
}

func (c *HTTPClient) Categories(ctx context.Context) ([]string, error) {
	var payload categoriesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/content/categories", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Categories, nil
}

func (c *HTTPClient) ListQuestions(ctx context.Context, category string, limit int) ([]questionItem, error) {
	query := url.Values{}
	if trimmed := strings.TrimSpace(category); trimmed != "" {
		query.Set("category", trimmed)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	path := "/content/questions"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var payload []questionItem
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *HTTPClient) Submit(ctx context.Context, token, category string, answers []int) (submitResponse, error) {
	if answers == nil {
		answers = []int{}
	}

	var payload submitResponse
	request := submitRequest{Token: token, Category: category, Answers: answers}
	if err := c.doJSON(ctx, http.MethodPost, "/attempt/submit", request, &payload); err != nil {
		return submitResponse{}, err
	}
	return payload, nil
}

func (c *HTTPClient) Progress(ctx context.Context, token string) (map[string]categoryStats, error) {
	query := url.Values{}
	query.Set("token", token)

	var payload progressResponse
	if err := c.doJSON(ctx, http.MethodGet, "/progress?"+query.Encode(), nil, &payload); err != nil {
		return nil, err
	}
	if payload.ByCategory == nil {
		payload.ByCategory = map[string]categoryStats{}
	}
	return payload.ByCategory, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Detail) != "" {
			apiErr.Message = payload.Detail
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}
