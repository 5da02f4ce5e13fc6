// Package llm provides a uniform contract over interchangeable
// OpenAI-compatible chat-completion backends: Groq (fast free tier) and
// OpenAI (higher capability). Callers depend on the Provider interface
// and never on a concrete backend.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingCredential is returned at construction when no API key is
// supplied. This is fatal at startup; the backend never serves without one.
var ErrMissingCredential = errors.New("llm: missing API credential")

// ProviderError carries an upstream failure (timeout, rate limit, non-2xx)
// to the caller with the HTTP status. There is no retry inside the
// abstraction; retry policy belongs to the caller.
type ProviderError struct {
	Backend string
	Status  int
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s api error (status %d): %s", e.Backend, e.Status, e.Message)
	}
	return fmt.Sprintf("%s api error: %s", e.Backend, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Message is one turn of an OpenAI-shaped chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Provider is the capability set every LLM backend implements.
type Provider interface {
	// Complete returns a single synchronous answer.
	Complete(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error)
	// StreamComplete returns incremental answer segments. The stream is
	// finite, not restartable, and may be abandoned early via Close.
	StreamComplete(ctx context.Context, messages []Message, temperature float64) (*Stream, error)
}
