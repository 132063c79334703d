package ai

import (
	"context"
	"errors"
)

// ErrNoResult signals that the extraction collaborator could not produce
// a usable result. Callers fall back to default metadata; this error is
// never fatal to a registration.
var ErrNoResult = errors.New("no extraction result")

// ExtractionInput carries the raw material handed to the extractor. Both
// fields are optional, but at least one should be present for a useful
// result.
type ExtractionInput struct {
	Text      string
	ImageData []byte
	ImageMIME string
}

// ExtractionResult is the best-effort structured metadata guessed by the
// model. Every field is untrusted: callers must validate or clamp before
// use.
type ExtractionResult struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Category string   `json:"category"`
	Service  string   `json:"service"`
	Tags     []string `json:"tags"`
}

// Extractor describes an AI model capable of inferring document metadata
// from text and/or a scanned image.
type Extractor interface {
	Extract(ctx context.Context, input ExtractionInput) (ExtractionResult, error)
}

// Unavailable is the extractor used when no provider is configured.
type Unavailable struct{}

// Extract always reports that no result is available.
func (Unavailable) Extract(ctx context.Context, input ExtractionInput) (ExtractionResult, error) {
	return ExtractionResult{}, ErrNoResult
}
