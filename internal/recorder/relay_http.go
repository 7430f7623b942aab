package recorder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// HTTPRelay implements the Relay interface against the relay server's HTTP
// surface: multipart audio to /transcribe, JSON text to /summarize.
type HTTPRelay struct {
	baseURL    string
	httpClient *http.Client
}

// HTTPRelayConfig holds configuration for the HTTP relay client.
type HTTPRelayConfig struct {
	BaseURL    string // e.g., "http://localhost:3000"
	HTTPClient *http.Client
}

// NewHTTPRelay creates a relay client.
func NewHTTPRelay(cfg HTTPRelayConfig) *HTTPRelay {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPRelay{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}
}

type relayResponse struct {
	Text    string `json:"text"`
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Transcribe posts the packaged audio blob as one multipart file field.
func (c *HTTPRelay) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("audio", "recording"+extForMIME(mimeType))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/transcribe", &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req)
}

// Summarize posts text as JSON.
func (c *HTTPRelay) Summarize(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/summarize", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *HTTPRelay) do(req *http.Request) (string, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		var relayErr relayResponse
		if json.Unmarshal(respBody, &relayErr) == nil && relayErr.Error != "" {
			return "", fmt.Errorf("relay error: %s - %s", resp.Status, relayErr.Error)
		}
		return "", fmt.Errorf("relay error: %s - %s", resp.Status, string(respBody))
	}

	var result relayResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return result.Text, nil
}

func extForMIME(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "audio/webm"):
		return ".webm"
	case strings.HasPrefix(mimeType, "audio/ogg"):
		return ".ogg"
	case strings.HasPrefix(mimeType, "audio/wav"):
		return ".wav"
	case strings.HasPrefix(mimeType, "audio/mp4"):
		return ".mp4"
	default:
		return ".bin"
	}
}
