package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/ideagen/internal/errors"
	"github.com/diogo/ideagen/internal/models"
)

// GenerateOptions contains options for content generation
type GenerateOptions struct {
	Model             models.Model
	SystemInstruction string
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

// generateRequest is the generateContent request body
type generateRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
}

// GenerateContent sends a prompt and returns the parsed response
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, opts *GenerateOptions) (*models.ModelOutput, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}

	if c.IsClosed() {
		return nil, fmt.Errorf("client is closed")
	}

	model := c.GetModel()
	var system string
	if opts != nil {
		if opts.Model.Name != "" {
			model = opts.Model
		}
		system = opts.SystemInstruction
	}

	payload, err := buildPayload(prompt, system)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := model.GenerateURL(c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apierrors.NewTimeoutError(fmt.Sprintf("no response from %s within %s", model.Name, c.timeout))
		}
		return nil, apierrors.NewNetworkErrorWithEndpoint("generate content", endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, newStatusError(resp.StatusCode, endpoint, errorBody)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apierrors.NewTimeoutError("reading response body")
		}
		return nil, apierrors.NewNetworkErrorWithEndpoint("read response", endpoint, err)
	}

	return parseResponse(body)
}

// buildPayload creates the JSON body for a single-turn request
func buildPayload(prompt, systemInstruction string) ([]byte, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	if systemInstruction != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: systemInstruction}}}
	}
	return json.Marshal(req)
}

// newStatusError converts a non-success status into a typed error
func newStatusError(status int, endpoint string, body []byte) error {
	message := gjson.GetBytes(body, PathErrorMessage).String()
	if message == "" {
		message = http.StatusText(status)
	}
	if apiStatus := gjson.GetBytes(body, PathErrorStatus).String(); apiStatus != "" {
		message = apiStatus + ": " + message
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return apierrors.NewAuthError(message)
	}
	return apierrors.NewAPIErrorWithBody(status, endpoint, message, string(body))
}

// parseResponse extracts candidates from a generateContent response.
// A response without text at candidates[0].content.parts[0] is an error.
func parseResponse(body []byte) (*models.ModelOutput, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response is not valid JSON", "")
	}

	parsed := gjson.ParseBytes(body)

	first := parsed.Get(PathFirstText)
	if !first.Exists() || first.String() == "" {
		reason := "no text in first candidate"
		if block := parsed.Get(PathBlockReason).String(); block != "" {
			reason = "prompt blocked: " + block
		} else if finish := parsed.Get(PathCandidates + ".0." + PathCandFinish).String(); finish != "" {
			reason = "no text in first candidate (finish reason " + finish + ")"
		}
		return nil, fmt.Errorf("%w: %s", apierrors.ErrNoContent, reason)
	}

	output := &models.ModelOutput{
		ModelVersion: parsed.Get(PathModelVersion).String(),
	}

	parsed.Get(PathCandidates).ForEach(func(_, cand gjson.Result) bool {
		output.Candidates = append(output.Candidates, models.Candidate{
			Text:         cand.Get(PathCandText).String(),
			FinishReason: cand.Get(PathCandFinish).String(),
		})
		return true
	})

	return output, nil
}
