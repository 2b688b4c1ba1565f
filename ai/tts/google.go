package tts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// GoogleTranslate usa el endpoint público translate_tts. No requiere key,
// por eso se prueban varias variantes de la petición antes de rendirse.
type GoogleTranslate struct {
	endpoint   string
	httpClient *http.Client
}

func NewGoogleTranslate() *GoogleTranslate {
	return NewGoogleTranslateWithURL("https://translate.google.com/translate_tts")
}

func NewGoogleTranslateWithURL(endpoint string) *GoogleTranslate {
	return &GoogleTranslate{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *GoogleTranslate) Name() string { return "google" }

type googleVariant struct {
	name    string
	params  url.Values
	headers map[string]string
}

func googleVariants(text string) []googleVariant {
	return []googleVariant{
		{
			name: "primary",
			params: url.Values{
				"ie":      {"UTF-8"},
				"q":       {text},
				"tl":      {"en"},
				"client":  {"tw-ob"},
				"idx":     {"0"},
				"total":   {"1"},
				"textlen": {strconv.Itoa(len([]rune(text)))},
			},
			headers: map[string]string{
				"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Referer":         "https://translate.google.com/",
				"Accept":          "audio/mpeg, audio/wav, audio/*",
				"Accept-Language": "en-US,en;q=0.9",
			},
		},
		{
			name: "alternative",
			params: url.Values{
				"ie":     {"UTF-8"},
				"q":      {text},
				"tl":     {"en-us"},
				"client": {"gtx"},
				"idx":    {"0"},
				"total":  {"1"},
			},
			headers: map[string]string{
				"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Accept":          "audio/*",
				"Accept-Language": "en-US,en;q=0.8",
				"Cache-Control":   "no-cache",
			},
		},
		{
			name: "minimal",
			params: url.Values{
				"ie":     {"UTF-8"},
				"q":      {clip(text, 200)},
				"tl":     {"en"},
				"client": {"gtx"},
			},
			headers: map[string]string{
				"User-Agent": "curl/7.68.0",
				"Accept":     "*/*",
			},
		},
	}
}

func (g *GoogleTranslate) Synthesize(ctx context.Context, text string) (Audio, error) {
	text = truncate(text, 500)

	var errs []error
	for _, v := range googleVariants(text) {
		audio, err := g.request(ctx, v)
		if err == nil {
			return audio, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", v.name, err))
		if ctx.Err() != nil {
			break
		}
	}
	return Audio{}, errors.Join(errs...)
}

func (g *GoogleTranslate) request(ctx context.Context, v googleVariant) (Audio, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+v.params.Encode(), nil)
	if err != nil {
		return Audio{}, fmt.Errorf("creating request: %w", err)
	}
	for k, val := range v.headers {
		req.Header.Set(k, val)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Audio{}, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	return readAudio(g.Name(), resp, "audio/mpeg")
}
