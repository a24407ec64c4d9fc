package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	apierrors "github.com/diogo/ideagen/internal/errors"
	"github.com/diogo/ideagen/internal/models"
)

// Doer is the subset of tls_client.HttpClient the client needs
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// GeminiClientInterface is what the conversation engine needs from a client
type GeminiClientInterface interface {
	GenerateContent(ctx context.Context, prompt string, opts *GenerateOptions) (*models.ModelOutput, error)
	GetModel() models.Model
	Close()
}

// GeminiClient talks to the generateContent endpoint
type GeminiClient struct {
	httpClient Doer
	apiKey     string
	model      models.Model
	baseURL    string
	timeout    time.Duration
	mu         sync.RWMutex
	closed     bool
}

var _ GeminiClientInterface = (*GeminiClient)(nil)

// ClientOption is a function that configures the client
type ClientOption func(*GeminiClient)

// WithModel sets the default model for the client
func WithModel(model models.Model) ClientOption {
	return func(c *GeminiClient) {
		c.model = model
	}
}

// WithBaseURL points the client at another API root (proxies, tests)
func WithBaseURL(baseURL string) ClientOption {
	return func(c *GeminiClient) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithTimeout bounds every request made by the client
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *GeminiClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the TLS client
func WithHTTPClient(doer Doer) ClientOption {
	return func(c *GeminiClient) {
		c.httpClient = doer
	}
}

// NewClient creates a new GeminiClient
func NewClient(apiKey string, opts ...ClientOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, apierrors.NewConfigError("api_key", apierrors.ErrMissingAPIKey)
	}

	client := &GeminiClient{
		apiKey:  apiKey,
		model:   models.DefaultModel,
		baseURL: models.DefaultBaseURL,
		timeout: defaultTimeoutInSec * time.Second,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(client.timeout / time.Second)),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Close marks the client closed; later calls fail fast
func (c *GeminiClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	if idle, ok := c.httpClient.(interface{ CloseIdleConnections() }); ok {
		idle.CloseIdleConnections()
	}
}

// GetModel returns the default model
func (c *GeminiClient) GetModel() models.Model {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// IsClosed returns whether the client is closed
func (c *GeminiClient) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Timeout returns the per-request timeout
func (c *GeminiClient) Timeout() time.Duration {
	return c.timeout
}
