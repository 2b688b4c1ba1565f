package tts

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type VoiceRSS struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func NewVoiceRSS(apiKey string) *VoiceRSS {
	return NewVoiceRSSWithURL(apiKey, "http://api.voicerss.org/")
}

func NewVoiceRSSWithURL(apiKey, endpoint string) *VoiceRSS {
	return &VoiceRSS{
		apiKey:     apiKey,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *VoiceRSS) Name() string { return "voicerss" }

func (v *VoiceRSS) Synthesize(ctx context.Context, text string) (Audio, error) {
	if v.apiKey == "" {
		return Audio{}, ErrNotConfigured
	}

	params := url.Values{
		"key": {v.apiKey},
		"hl":  {"en-us"},
		"src": {truncate(text, 300)},
		"r":   {"0"},
		"c":   {"mp3"},
		"f":   {"44khz_16bit_stereo"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return Audio{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "audio/*")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return Audio{}, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	// VoiceRSS responde 200 con un texto "ERROR: ..." cuando falla; la regla de tamaño lo descarta
	return readAudio(v.Name(), resp, "audio/mpeg")
}
