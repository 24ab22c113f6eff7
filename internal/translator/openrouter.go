package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/valpere/mdtran/internal/postprocess"
)

const (
	DefaultOpenRouterURL   = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel = "google/gemini-2.0-flash-exp:free"
)

type OpenRouterService struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewOpenRouterService(apiKey, baseURL, model string, timeout time.Duration) *OpenRouterService {
	if baseURL == "" {
		baseURL = DefaultOpenRouterURL
	}
	if model == "" {
		model = DefaultOpenRouterModel
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenRouterService{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *OpenRouterService) Name() string {
	return "openrouter"
}

type chatRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (s *OpenRouterService) Translate(ctx context.Context, fragment, instructions, glossary string) (result Result) {
	start := time.Now()
	defer func() {
		result.Service = s.Name()
		result.Latency = time.Since(start)
	}()

	if s.apiKey == "" {
		return Failed(KindAuth, errors.New("OpenRouter API key required"))
	}

	jsonData, err := json.Marshal(chatRequest{
		Model:     s.model,
		Messages:  BuildMessages(fragment, instructions, glossary),
		MaxTokens: 4096,
	})
	if err != nil {
		return Failed(KindUnexpected, fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return Failed(KindUnexpected, fmt.Errorf("failed to create request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("HTTP-Referer", "https://mdtran.local")
	httpReq.Header.Set("X-Title", "mdtran")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return Failed(classifyError(err), fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Failed(classifyStatus(resp.StatusCode),
			fmt.Errorf("API returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body)))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return Failed(KindAPI, fmt.Errorf("failed to decode response: %w", err))
	}

	if len(chatResp.Choices) == 0 {
		return Failed(KindAPI, errors.New("empty response from API"))
	}

	text := postprocess.Clean(chatResp.Choices[0].Message.Content)
	if text == "" {
		return Failed(KindAPI, errEmptyTranslation)
	}
	return Success(text)
}

// IsAvailable checks the API key against the /key endpoint.
func (s *OpenRouterService) IsAvailable(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("OpenRouter API key not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/key", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("OpenRouter not reachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("OpenRouter rejected the API key: status %d", resp.StatusCode)
	}
	return nil
}
