package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"awareness-game/internal/content"
	"awareness-game/internal/model"
	"awareness-game/internal/schema"
	"awareness-game/internal/store"
)

const (
	maxDiagnosticCollections = 10
	maxDiagnosticErrorRunes  = 80
)

func (a *API) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Cybersecurity Awareness Game API running"})
}

// HandleDiagnostics reports configuration and connectivity. It always
// answers 200; failures are described in the body.
func (a *API) HandleDiagnostics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	response := diagnosticsResponse{
		Backend:          "✅ Running",
		Database:         "❌ Not Available",
		DatabaseURL:      setMarker(a.diagnostics.DatabaseURLSet),
		DatabaseName:     setMarker(a.diagnostics.DatabaseNameSet),
		ConnectionStatus: "Not Connected",
		Collections:      []string{},
	}

	if openErr := a.diagnostics.OpenError; openErr != nil {
		response.Database = "❌ Error: " + truncate(openErr.Error(), maxDiagnosticErrorRunes)
		writeJSON(w, http.StatusOK, response)
		return
	}
	if a.database == nil {
		writeJSON(w, http.StatusOK, response)
		return
	}

	collections, err := a.database.CollectionNames(r.Context())
	switch {
	case errors.Is(err, store.ErrUnavailable):
		response.Database = "⚠️ Available but not initialized"
	case err != nil:
		response.Database = "⚠️ Connected but Error: " + truncate(err.Error(), maxDiagnosticErrorRunes)
	default:
		if len(collections) > maxDiagnosticCollections {
			collections = collections[:maxDiagnosticCollections]
		}
		if collections != nil {
			response.Collections = collections
		}
		response.Database = "✅ Connected & Working"
		response.ConnectionStatus = "Connected"
	}

	writeJSON(w, http.StatusOK, response)
}

func setMarker(set bool) string {
	if set {
		return "✅ Set"
	}
	return "❌ Not Set"
}

func (a *API) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var request registerRequest
	if err := decodeJSON(r, &request); err != nil {
		writeInvalidBody(w, err.Error())
		return
	}

	userID, err := a.identity.Register(r.Context(), request.Name, request.Email, request.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, registerResponse{UserID: userID, Message: "Registered successfully"})
}

func (a *API) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var request loginRequest
	if err := decodeJSON(r, &request); err != nil {
		writeInvalidBody(w, err.Error())
		return
	}

	token, user, err := a.identity.Login(r.Context(), request.Email, request.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (a *API) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var request logoutRequest
	if err := decodeJSON(r, &request); err != nil {
		writeInvalidBody(w, err.Error())
		return
	}

	if err := a.identity.Logout(r.Context(), request.Token); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
}

func (a *API) HandleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var request createQuestionRequest
	if err := decodeJSON(r, &request); err != nil {
		writeInvalidBody(w, err.Error())
		return
	}
	if request.CorrectIndex == nil {
		writeInvalidBody(w, "correct_index is required")
		return
	}

	input := content.NewQuestion{
		Category:     request.Category,
		Prompt:       request.Prompt,
		Options:      request.Options,
		CorrectIndex: *request.CorrectIndex,
		Explanation:  request.Explanation,
	}
	if request.Difficulty != nil {
		input.Difficulty = *request.Difficulty
	}

	questionID, err := a.content.CreateQuestion(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createQuestionResponse{ID: questionID})
}

func (a *API) HandleListQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	limit, err := parseIntParam(r, "limit", content.DefaultListLimit)
	if err != nil {
		writeInvalidBody(w, err.Error())
		return
	}
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	questions, err := a.content.ListQuestions(r.Context(), category, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if questions == nil {
		questions = []model.Question{}
	}

	writeJSON(w, http.StatusOK, questions)
}

func (a *API) HandleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	categories, err := a.content.Categories(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}

	writeJSON(w, http.StatusOK, categoriesResponse{Categories: categories})
}

func (a *API) HandleSeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	result, err := a.content.Seed(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (a *API) HandleSubmitAttempt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var request submitAttemptRequest
	if err := decodeJSON(r, &request); err != nil {
		writeInvalidBody(w, err.Error())
		return
	}
	if request.Answers == nil {
		writeInvalidBody(w, "answers is required")
		return
	}

	result, err := a.attempts.Submit(r.Context(), request.Token, request.Category, request.Answers)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (a *API) HandleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	query := r.URL.Query()
	if !query.Has("token") {
		writeInvalidBody(w, "token is required")
		return
	}

	byCategory, err := a.progress.GetProgress(r.Context(), query.Get("token"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, progressResponse{ByCategory: byCategory})
}

func (a *API) HandleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, schema.All())
}
