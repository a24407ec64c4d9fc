// Package models contains data types and constants for the idea generator.
package models

import "strings"

// Endpoints for the Generative Language API
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// generateContentPath is appended to BaseURL after the model name
	generateContentPath = ":generateContent"
)

// Model identifies a Generative Language model
type Model struct {
	Name  string
	Alias string
}

// Available models
var (
	Model25Flash = Model{Name: "gemini-2.5-flash", Alias: "fast"}
	Model25Pro   = Model{Name: "gemini-2.5-pro", Alias: "pro"}
	Model20Flash = Model{Name: "gemini-2.0-flash", Alias: "lite"}

	// DefaultModel is the recommended default
	DefaultModel = Model25Flash
)

// AllModels returns a list of the known models
func AllModels() []Model {
	return []Model{Model25Flash, Model25Pro, Model20Flash}
}

// ModelFromName resolves an alias or a full model name.
// Unknown names are passed through so newer models can be used without a release.
func ModelFromName(name string) Model {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultModel
	}
	for _, m := range AllModels() {
		if m.Name == name || m.Alias == name {
			return m
		}
	}
	name = strings.TrimPrefix(name, "models/")
	return Model{Name: name}
}

// GenerateURL returns the generateContent endpoint for the model under baseURL
func (m Model) GenerateURL(baseURL string) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return strings.TrimRight(baseURL, "/") + "/models/" + m.Name + generateContentPath
}

// Fixed conversation texts
const (
	// GreetingText opens every session
	GreetingText = "Hello! I can help you with a business idea, brand names, and marketing copy. " +
		"Tell me about your industry, budget, and desired tone (e.g., 'funny', 'professional')."

	// FallbackText replaces the reply when the model call fails
	FallbackText = "Sorry, something went wrong. Please try again."

	// SystemInstruction is sent with every request
	SystemInstruction = `You are a creative marketing expert. Based on the provided industry, budget, and tone, create a new business idea, 3 brand names, and 2 catchy marketing slogans. Provide all information in English. The format should be as follows:

**Business Idea:**
[Concept in one paragraph]

**Brand Names:**
[3 distinct names]

**Marketing Slogans:**
[2 short and catchy slogans]
`
)
