package httpapi

import (
	"context"

	"awareness-game/internal/attempt"
	"awareness-game/internal/content"
	"awareness-game/internal/model"
)

type IdentityService interface {
	Register(ctx context.Context, name, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, model.PublicUser, error)
	Logout(ctx context.Context, token string) error
}

type ContentService interface {
	CreateQuestion(ctx context.Context, input content.NewQuestion) (string, error)
	ListQuestions(ctx context.Context, category string, limit int) ([]model.Question, error)
	Seed(ctx context.Context) (content.SeedResult, error)
	Categories(ctx context.Context) ([]string, error)
}

type AttemptService interface {
	Submit(ctx context.Context, token, category string, answers []int) (attempt.Result, error)
}

type ProgressService interface {
	GetProgress(ctx context.Context, token string) (map[string]model.CategoryStats, error)
}

// Database is what the diagnostics endpoint inspects.
type Database interface {
	CollectionNames(ctx context.Context) ([]string, error)
}

// Services groups the domain services the handlers call.
type Services struct {
	Identity IdentityService
	Content  ContentService
	Attempts AttemptService
	Progress ProgressService
	Database Database
}

// Diagnostics reports which persistence settings were supplied and why the
// store could not be opened, if it failed.
type Diagnostics struct {
	DatabaseURLSet  bool
	DatabaseNameSet bool
	OpenError       error
}

type API struct {
	identity    IdentityService
	content     ContentService
	attempts    AttemptService
	progress    ProgressService
	database    Database
	diagnostics Diagnostics
}

func NewAPI(services Services, diagnostics Diagnostics) *API {
	return &API{
		identity:    services.Identity,
		content:     services.Content,
		attempts:    services.Attempts,
		progress:    services.Progress,
		database:    services.Database,
		diagnostics: diagnostics,
	}
}
