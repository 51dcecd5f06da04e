// Package schema describes the persisted entities as JSON Schema objects so
// tooling can discover the document shapes at runtime.
package schema

import "sort"

type Property struct {
	Title       string    `json:"title"`
	Type        string    `json:"type,omitempty"`
	Format      string    `json:"format,omitempty"`
	Description string    `json:"description,omitempty"`
	Items       *Property `json:"items,omitempty"`
	MinItems    *int      `json:"minItems,omitempty"`
	Minimum     *float64  `json:"minimum,omitempty"`
	Maximum     *float64  `json:"maximum,omitempty"`
	Nullable    bool      `json:"nullable,omitempty"`
	Default     any       `json:"default,omitempty"`
	Enum        []string  `json:"enum,omitempty"`

	Properties           map[string]Property `json:"properties,omitempty"`
	AdditionalProperties *Property           `json:"additionalProperties,omitempty"`
}

type Entity struct {
	Title       string              `json:"title"`
	Type        string              `json:"type"`
	Description string              `json:"description"`
	Properties  map[string]Property `json:"properties"`
	Required    []string            `json:"required"`
}

// field pairs a property with whether it must be present.
type field struct {
	name     string
	required bool
	prop     Property
}

func entity(title, description string, fields ...field) Entity {
	out := Entity{
		Title:       title,
		Type:        "object",
		Description: description,
		Properties:  make(map[string]Property, len(fields)),
		Required:    []string{},
	}
	for _, f := range fields {
		if f.prop.Title == "" {
			f.prop.Title = titleFor(f.name)
		}
		out.Properties[f.name] = f.prop
		if f.required {
			out.Required = append(out.Required, f.name)
		}
	}
	sort.Strings(out.Required)
	return out
}

func titleFor(name string) string {
	out := []byte(name)
	upper := true
	for idx, ch := range out {
		if ch == '_' {
			out[idx] = ' '
			upper = true
			continue
		}
		if upper && ch >= 'a' && ch <= 'z' {
			out[idx] = ch - 'a' + 'A'
		}
		upper = false
	}
	return string(out)
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func str(description string) Property {
	return Property{Type: "string", Description: description}
}

// All returns the description of every collection keyed by collection name.
func All() map[string]Entity {
	return map[string]Entity{
		"user":     User(),
		"question": Question(),
		"attempt":  Attempt(),
		"progress": Progress(),
	}
}

func User() Entity {
	return entity("User", `Users collection schema -> collection: "user"`,
		field{"name", true, str("Full name")},
		field{"email", true, Property{Type: "string", Format: "email", Description: "User email (unique)"}},
		field{"password_hash", true, str("Password hash (server-side only)")},
		field{"token", false, Property{Type: "string", Nullable: true, Description: "Session token for simple auth"}},
		field{"token_expires_at", false, Property{Type: "string", Format: "date-time", Nullable: true, Description: "Session token expiry"}},
	)
}

func Question() Entity {
	return entity("Question", `Questions for quizzes -> collection: "question"`,
		field{"category", true, str("Module category, e.g., phishing, credential, rogueapps")},
		field{"prompt", true, str("Question text or scenario")},
		field{"options", true, Property{
			Type:        "array",
			Items:       &Property{Title: "Option", Type: "string"},
			MinItems:    intPtr(2),
			Description: "Multiple choice options",
		}},
		field{"correct_index", true, Property{Type: "integer", Minimum: floatPtr(0), Description: "Index of correct option in options list"}},
		field{"explanation", false, Property{Type: "string", Nullable: true, Description: "Explanation shown after answering"}},
		field{"difficulty", false, Property{
			Type:        "string",
			Default:     "easy",
			Enum:        []string{"easy", "medium", "hard"},
			Description: "Difficulty level: easy/medium/hard",
		}},
	)
}

func Attempt() Entity {
	return entity("Attempt", `Quiz attempts -> collection: "attempt"`,
		field{"user_id", true, str("Reference to user id as string")},
		field{"category", true, str("Which module the attempt belongs to")},
		field{"answers", true, Property{
			Type:        "array",
			Items:       &Property{Title: "Answer", Type: "integer"},
			Description: "Selected option index for each question in order",
		}},
		field{"correct_count", true, Property{Type: "integer", Minimum: floatPtr(0), Description: "Number of correct answers"}},
		field{"total", true, Property{Type: "integer", Minimum: floatPtr(1), Description: "Total number of questions in the attempt"}},
		field{"score", true, Property{Type: "number", Minimum: floatPtr(0), Maximum: floatPtr(100), Description: "Score percentage 0-100"}},
	)
}

func Progress() Entity {
	stats := &Property{
		Title: "Category Stats",
		Type:  "object",
		Properties: map[string]Property{
			"attempts":   {Title: "Attempts", Type: "integer", Minimum: floatPtr(0)},
			"best_score": {Title: "Best Score", Type: "number", Minimum: floatPtr(0), Maximum: floatPtr(100)},
			"last_score": {Title: "Last Score", Type: "number", Minimum: floatPtr(0), Maximum: floatPtr(100)},
		},
	}
	return entity("Progress", `Aggregated progress per user -> collection: "progress"`,
		field{"user_id", true, str("Reference to user id as string")},
		field{"by_category", false, Property{
			Type:                 "object",
			AdditionalProperties: stats,
			Description:          "Per-category stats: attempts, best_score, last_score",
		}},
	)
}
