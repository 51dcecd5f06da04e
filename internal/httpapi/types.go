package httpapi

import "awareness-game/internal/model"

type messageResponse struct {
	Message string `json:"message"`
}

type diagnosticsResponse struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
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
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

type logoutRequest struct {
	Token string `json:"token"`
}

type createQuestionRequest struct {
	Category     string   `json:"category"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex *int     `json:"correct_index"`
	Explanation  *string  `json:"explanation"`
	Difficulty   *string  `json:"difficulty"`
}

type createQuestionResponse struct {
	ID string `json:"id"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

type submitAttemptRequest struct {
	Token    string `json:"token"`
	Category string `json:"category"`
	Answers  []int  `json:"answers"`
}

type progressResponse struct {
	ByCategory map[string]model.CategoryStats `json:"by_category"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}
