package translator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/valpere/mdtran/internal/postprocess"
)

const DefaultOpenAIModel = "gpt-4"

// OpenAIService translates through the OpenAI chat completions API or any
// endpoint compatible with it.
type OpenAIService struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewOpenAIService creates a client for apiKey. An empty baseURL targets
// api.openai.com; an empty model selects DefaultOpenAIModel.
func NewOpenAIService(apiKey, baseURL, model string, timeout time.Duration) *OpenAIService {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIService{
		apiKey: apiKey,
		model:  model,
		client: openai.NewClientWithConfig(cfg),
	}
}

func (s *OpenAIService) Name() string {
	return "openai"
}

func (s *OpenAIService) Translate(ctx context.Context, fragment, instructions, glossary string) (result Result) {
	start := time.Now()
	defer func() {
		result.Service = s.Name()
		result.Latency = time.Since(start)
	}()

	if s.apiKey == "" {
		return Failed(KindAuth, errors.New("OpenAI API key required"))
	}

	msgs := BuildMessages(fragment, instructions, glossary)
	chat := make([]openai.ChatCompletionMessage, len(msgs))
	for i, m := range msgs {
		chat[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: chat,
	})
	if err != nil {
		return Failed(classifyOpenAIError(err), err)
	}

	if len(resp.Choices) == 0 {
		return Failed(KindAPI, errors.New("empty response from API"))
	}

	text := postprocess.Clean(resp.Choices[0].Message.Content)
	if text == "" {
		return Failed(KindAPI, errEmptyTranslation)
	}
	return Success(text)
}

// IsAvailable verifies the API key by listing the models it can access.
func (s *OpenAIService) IsAvailable(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("OpenAI API error: %w", err)
	}
	return nil
}

func classifyOpenAIError(err error) FailureKind {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return classifyStatus(reqErr.HTTPStatusCode)
	}
	return classifyError(err)
}
