package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lizet96/medibot-backend/ai/httpx"
)

var ErrNotConfigured = errors.New("provider not configured")

type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// GroqClient usa chat completions compatible con OpenAI con la imagen como data URL
type GroqClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	retry      httpx.RetryConfig
}

func NewGroqClient(apiKey, baseURL, model string) *GroqClient {
	return &GroqClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		retry:      httpx.NoRetry(),
	}
}

// WithRetry reemplaza la política de reintentos (por defecto un solo intento)
func (c *GroqClient) WithRetry(cfg httpx.RetryConfig) *GroqClient {
	c.retry = cfg
	return c
}

func (c *GroqClient) Name() string { return "groq" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *GroqClient) Analyze(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageURL{
					URL: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image),
				}},
			}},
		},
		MaxTokens:   1000,
		Temperature: 0.7,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	var result chatResponse
	err = httpx.WithRetry(ctx, c.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return httpx.NewStatusError("groq", resp)
		}
		if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("empty response from groq")
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
