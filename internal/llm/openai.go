package llm

import "context"

const (
	openAIBaseURL      = "https://api.openai.com/v1"
	DefaultOpenAIModel = "gpt-4-turbo-preview"
)

// OpenAI is the higher-capability paid backend.
type OpenAI struct {
	client *chatClient
}

func NewOpenAI(apiKey, model string) (*OpenAI, error) {
	if model == "" {
		model = DefaultOpenAIModel
	}
	client, err := newChatClient("openai", openAIBaseURL, apiKey, model)
	if err != nil {
		return nil, err
	}
	return &OpenAI{client: client}, nil
}

// SetBaseURL overrides the API endpoint; used by tests.
func (o *OpenAI) SetBaseURL(url string) { o.client.baseURL = url }

func (o *OpenAI) Complete(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error) {
	return o.client.complete(ctx, messages, temperature, maxTokens)
}

func (o *OpenAI) StreamComplete(ctx context.Context, messages []Message, temperature float64) (*Stream, error) {
	return o.client.stream(ctx, messages, temperature)
}
