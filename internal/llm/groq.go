package llm

import "context"

const (
	groqBaseURL      = "https://api.groq.com/openai/v1"
	DefaultGroqModel = "mixtral-8x7b-32768"
)

// Groq is the fast free-tier backend.
type Groq struct {
	client *chatClient
}

func NewGroq(apiKey, model string) (*Groq, error) {
	if model == "" {
		model = DefaultGroqModel
	}
	client, err := newChatClient("groq", groqBaseURL, apiKey, model)
	if err != nil {
		return nil, err
	}
	return &Groq{client: client}, nil
}

// SetBaseURL overrides the API endpoint; used by tests.
func (g *Groq) SetBaseURL(url string) { g.client.baseURL = url }

func (g *Groq) Complete(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error) {
	return g.client.complete(ctx, messages, temperature, maxTokens)
}

func (g *Groq) StreamComplete(ctx context.Context, messages []Message, temperature float64) (*Stream, error) {
	return g.client.stream(ctx, messages, temperature)
}
