package stt_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lizet96/medibot-backend/ai/httpx"
	"github.com/lizet96/medibot-backend/ai/stt"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWhisperClient_Transcribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-large-v3", r.FormValue("model"))
		assert.Equal(t, "en", r.FormValue("language"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "recording.mp3", header.Filename)
		data, _ := io.ReadAll(file)
		assert.Equal(t, []byte("fake-audio"), data)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": "  I have a rash on my arm. "})
	}))
	defer server.Close()

	client := stt.NewWhisperClient("groq", "gsk-test", server.URL, "whisper-large-v3", "en")

	text, err := client.Transcribe(context.Background(), []byte("fake-audio"), "uploads/recording.mp3")
	require.NoError(t, err)
	assert.Equal(t, "I have a rash on my arm.", text)
}

func TestWhisperClient_NotConfigured(t *testing.T) {
	client := stt.NewWhisperClient("openai", "", "http://unused", "whisper-1", "")

	_, err := client.Transcribe(context.Background(), []byte("x"), "a.wav")
	assert.ErrorIs(t, err, stt.ErrNotConfigured)
}

func TestWhisperClient_PermanentErrorNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := stt.NewWhisperClient("groq", "bad", server.URL, "whisper-large-v3", "en")

	_, err := client.Transcribe(context.Background(), []byte("x"), "a.mp3")
	var statusErr *httpx.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.Code)
	assert.Equal(t, 1, calls)
}

func TestWhisperClient_ServerErrorSingleAttempt(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "upstream down", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := stt.NewWhisperClient("groq", "gsk-test", server.URL, "whisper-large-v3", "en")

	_, err := client.Transcribe(context.Background(), []byte("x"), "a.mp3")
	var statusErr *httpx.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Equal(t, 1, calls, "the chain falls through to the next provider instead of retrying")
}

type fakeTranscriber struct {
	name  string
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Name() string { return f.name }

func (f *fakeTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestChain_FirstSuccessWins(t *testing.T) {
	failing := &fakeTranscriber{name: "groq", err: errors.New("timeout")}
	skipped := &fakeTranscriber{name: "openai", err: stt.ErrNotConfigured}
	empty := &fakeTranscriber{name: "empty"}
	good := &fakeTranscriber{name: "backup", text: "my eye is red"}
	never := &fakeTranscriber{name: "never", text: "unused"}

	chain := stt.NewChain(discardLogger(), time.Second, failing, skipped, empty, good, never)

	res := chain.Transcribe(context.Background(), []byte("audio"), "a.mp3")
	assert.Equal(t, stt.Result{Text: "my eye is red", Source: "backup"}, res)
	assert.Equal(t, 0, never.calls)
}

func TestChain_AllFailReturnsPlaceholder(t *testing.T) {
	chain := stt.NewChain(discardLogger(), time.Second,
		&fakeTranscriber{name: "groq", err: errors.New("boom")},
	)

	res := chain.Transcribe(context.Background(), []byte("audio"), "a.mp3")
	assert.Equal(t, stt.Placeholder, res.Text)
	assert.Equal(t, stt.SourcePlaceholder, res.Source)
}

func TestChain_EmptyAudioSkipsProviders(t *testing.T) {
	p := &fakeTranscriber{name: "groq", text: "should not be used"}
	chain := stt.NewChain(discardLogger(), time.Second, p)

	res := chain.Transcribe(context.Background(), nil, "a.mp3")
	assert.Equal(t, stt.Placeholder, res.Text)
	assert.Equal(t, 0, p.calls)
}
