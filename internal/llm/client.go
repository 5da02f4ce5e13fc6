package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const requestTimeout = 30 * time.Second

// chatClient speaks the OpenAI-compatible chat-completions wire shape
// shared by both backends.
type chatClient struct {
	backend string
	baseURL string
	apiKey  string
	model   string

	client *http.Client
	// Streams outlive the 30s request timeout; this client bounds only
	// the initial connection (response headers), not the body.
	streamClient *http.Client
}

func newChatClient(backend, baseURL, apiKey, model string) (*chatClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w for %s", ErrMissingCredential, backend)
	}
	return &chatClient{
		backend: backend,
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: requestTimeout},
		streamClient: &http.Client{
			Transport: &http.Transport{ResponseHeaderTimeout: requestTimeout},
		},
	}, nil
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *chatClient) complete(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error) {
	resp, err := c.post(ctx, c.client, chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.statusError(resp)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ProviderError{Backend: c.backend, Message: "malformed completion response", Err: err}
	}
	if len(result.Choices) == 0 {
		return "", &ProviderError{Backend: c.backend, Message: "completion returned no choices"}
	}
	return result.Choices[0].Message.Content, nil
}

func (c *chatClient) stream(ctx context.Context, messages []Message, temperature float64) (*Stream, error) {
	resp, err := c.post(ctx, c.streamClient, chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		Stream:      true,
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, c.statusError(resp)
	}

	return newStream(resp.Body), nil
}

func (c *chatClient) post(ctx context.Context, client *http.Client, body chatRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &ProviderError{Backend: c.backend, Message: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, &ProviderError{Backend: c.backend, Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &ProviderError{Backend: c.backend, Message: "request failed", Err: err}
	}
	return resp, nil
}

func (c *chatClient) statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := string(bytes.TrimSpace(data))
	if msg == "" {
		msg = resp.Status
	}
	return &ProviderError{Backend: c.backend, Status: resp.StatusCode, Message: msg}
}
