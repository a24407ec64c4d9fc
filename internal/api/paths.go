// Package api provides the Generative Language API client implementation.
package api

// GJSON paths for extracting values from generateContent responses.
const (
	PathCandidates      = "candidates"
	PathFirstText       = "candidates.0.content.parts.0.text"
	PathModelVersion    = "modelVersion"
	PathBlockReason     = "promptFeedback.blockReason"
	PathErrorMessage    = "error.message"
	PathErrorStatus     = "error.status"
	PathCandText        = "content.parts.0.text"
	PathCandFinish      = "finishReason"
	maxErrorBodyBytes   = 4096
	apiKeyHeader        = "x-goog-api-key"
	contentTypeJSON     = "application/json"
	defaultTimeoutInSec = 120
)
