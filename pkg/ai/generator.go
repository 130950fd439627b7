package ai

import (
	"context"
	"errors"
)

// Generator turns a prompt string into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrNoGeneration reports an upstream reply whose shape did not match the
// expected array of generations. Callers fall back to a fixed message
// instead of failing the request.
var ErrNoGeneration = errors.New("no generation in upstream response")
