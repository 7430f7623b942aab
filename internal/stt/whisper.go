package stt

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// WhisperClient implements the Client interface using OpenAI's audio
// transcription API.
type WhisperClient struct {
	client *openai.Client
	model  string
}

// WhisperConfig holds configuration for the Whisper client.
type WhisperConfig struct {
	APIKey     string
	Model      string       // e.g., "whisper-1"
	BaseURL    string       // override for tests, empty for the real API
	HTTPClient *http.Client // optional shared client with connection pooling
}

// NewWhisperClient creates a new Whisper transcription client.
func NewWhisperClient(cfg WhisperConfig) *WhisperClient {
	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	return &WhisperClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

// Transcribe uploads the spooled audio file and returns the raw transcript.
// An empty transcript is not an error; the cleanup step decides what to do
// with it.
func (c *WhisperClient) Transcribe(ctx context.Context, req Request) (string, error) {
	if req.FilePath == "" {
		return "", fmt.Errorf("no audio file path")
	}

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: req.FilePath,
	})
	if err != nil {
		return "", fmt.Errorf("create transcription: %w", err)
	}
	return resp.Text, nil
}
