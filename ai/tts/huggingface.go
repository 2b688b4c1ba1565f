package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HuggingFace usa la Inference API con HF_TOKEN
type HuggingFace struct {
	token      string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewHuggingFace(token, model string) *HuggingFace {
	return NewHuggingFaceWithURL(token, model, "https://api-inference.huggingface.co")
}

func NewHuggingFaceWithURL(token, model, baseURL string) *HuggingFace {
	return &HuggingFace{
		token:      token,
		model:      model,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (h *HuggingFace) Name() string { return "huggingface" }

func (h *HuggingFace) Synthesize(ctx context.Context, text string) (Audio, error) {
	if h.token == "" {
		return Audio{}, ErrNotConfigured
	}

	body, err := json.Marshal(map[string]string{"inputs": truncate(text, 500)})
	if err != nil {
		return Audio{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/models/"+h.model, bytes.NewReader(body))
	if err != nil {
		return Audio{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/*")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return Audio{}, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	return readAudio(h.Name(), resp, "audio/flac")
}
