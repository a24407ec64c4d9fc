package api

import (
	"context"
	"sync"

	"github.com/diogo/ideagen/internal/models"
)

// MockGeminiClient is a mock implementation of GeminiClientInterface for testing
type MockGeminiClient struct {
	// Mock return values
	Model              models.Model
	GenerateContentVal *models.ModelOutput
	GenerateContentErr error

	// GenerateFunc overrides the static values when set
	GenerateFunc func(ctx context.Context, prompt string, opts *GenerateOptions) (*models.ModelOutput, error)

	mu          sync.Mutex
	calls       int
	lastPrompt  string
	lastOptions *GenerateOptions
	closeCalled bool
}

// Ensure MockGeminiClient implements GeminiClientInterface
var _ GeminiClientInterface = (*MockGeminiClient)(nil)

// NewMockClientWithText returns a mock that always answers with text
func NewMockClientWithText(text string) *MockGeminiClient {
	return &MockGeminiClient{
		Model: models.DefaultModel,
		GenerateContentVal: &models.ModelOutput{
			Candidates: []models.Candidate{{Text: text, FinishReason: "STOP"}},
		},
	}
}

func (m *MockGeminiClient) GenerateContent(ctx context.Context, prompt string, opts *GenerateOptions) (*models.ModelOutput, error) {
	m.mu.Lock()
	m.calls++
	m.lastPrompt = prompt
	m.lastOptions = opts
	fn := m.GenerateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt, opts)
	}
	return m.GenerateContentVal, m.GenerateContentErr
}

func (m *MockGeminiClient) GetModel() models.Model {
	return m.Model
}

func (m *MockGeminiClient) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCalled = true
}

// Calls returns how many times GenerateContent was called
func (m *MockGeminiClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastPrompt returns the prompt of the latest call
func (m *MockGeminiClient) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPrompt
}

// LastOptions returns the options of the latest call
func (m *MockGeminiClient) LastOptions() *GenerateOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastOptions
}

// CloseCalled reports whether Close was called
func (m *MockGeminiClient) CloseCalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCalled
}
