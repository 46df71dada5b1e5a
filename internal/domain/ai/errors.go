package ai

import "errors"

var (
	// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
	ErrQuotaExceeded = errors.New("ai quota exceeded")
	// ErrProviderAuth indicates the provider rejected our credentials.
	ErrProviderAuth = errors.New("ai provider authentication failed")
	ErrEmptyResponse = errors.New("no analysis content received")
	// ErrUnparseable means the model answered without a JSON object.
	ErrUnparseable = errors.New("failed to parse analysis results")
)
