package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/valpere/mdtran/internal/postprocess"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "llama3.2"
)

// OllamaTranslator talks to a self-hosted Ollama server through /api/chat.
type OllamaTranslator struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaTranslator(baseURL, model string, timeout time.Duration) *OllamaTranslator {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaTranslator{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *OllamaTranslator) Name() string {
	return "ollama"
}

type ollamaChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type ollamaChatResponse struct {
	Message Message `json:"message"`
	Error   string  `json:"error,omitempty"`
}

func (s *OllamaTranslator) Translate(ctx context.Context, fragment, instructions, glossary string) (result Result) {
	start := time.Now()
	defer func() {
		result.Service = s.Name()
		result.Latency = time.Since(start)
	}()

	jsonData, err := json.Marshal(ollamaChatRequest{
		Model:    s.model,
		Messages: BuildMessages(fragment, instructions, glossary),
		Stream:   false,
	})
	if err != nil {
		return Failed(KindUnexpected, fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/chat", bytes.NewBuffer(jsonData))
	if err != nil {
		return Failed(KindUnexpected, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return Failed(classifyError(err), fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	var ollamaResp ollamaChatResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&ollamaResp)

	if resp.StatusCode != http.StatusOK {
		msg := ollamaResp.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return Failed(classifyStatus(resp.StatusCode), fmt.Errorf("API returned status %d: %s", resp.StatusCode, msg))
	}
	if decodeErr != nil {
		return Failed(KindAPI, fmt.Errorf("failed to decode response: %w", decodeErr))
	}

	text := postprocess.Clean(ollamaResp.Message.Content)
	if text == "" {
		return Failed(KindAPI, errEmptyTranslation)
	}
	return Success(text)
}

func (s *OllamaTranslator) IsAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("Ollama not available: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}
	return nil
}
