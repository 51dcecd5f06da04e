package httpapi

import (
	"net/http"
	"time"
)

// Options tunes the middleware around the routes.
type Options struct {
	RequestTimeout time.Duration
	// MaxLogBytes bounds how much of an error response body is logged.
	MaxLogBytes int
}

const defaultMaxLogBytes = 512

func NewRouter(services Services, diagnostics Diagnostics, opts Options) http.Handler {
	api := NewAPI(services, diagnostics)

	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", api.HandleRoot)
	mux.HandleFunc("/test", api.HandleDiagnostics)
	mux.HandleFunc("/auth/register", api.HandleRegister)
	mux.HandleFunc("/auth/login", api.HandleLogin)
	mux.HandleFunc("/auth/logout", api.HandleLogout)
	mux.HandleFunc("/content/question", api.HandleCreateQuestion)
	mux.HandleFunc("/content/questions", api.HandleListQuestions)
	mux.HandleFunc("/content/categories", api.HandleCategories)
	mux.HandleFunc("/content/seed", api.HandleSeed)
	mux.HandleFunc("/attempt/submit", api.HandleSubmitAttempt)
	mux.HandleFunc("/progress", api.HandleProgress)
	mux.HandleFunc("/schema", api.HandleSchema)

	maxLogBytes := opts.MaxLogBytes
	if maxLogBytes <= 0 {
		maxLogBytes = defaultMaxLogBytes
	}

	var handler http.Handler = mux
	handler = withTimeout(opts.RequestTimeout)(handler)
	handler = withCORS(handler)
	handler = withRequestLog(maxLogBytes)(handler)
	return handler
}
