package stt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWhisperClient_DefaultModel(t *testing.T) {
	client := NewWhisperClient(WhisperConfig{APIKey: "test-key"})

	if client.model != "whisper-1" {
		t.Errorf("model = %q, want %q", client.model, "whisper-1")
	}
}

func TestNewWhisperClient_CustomModel(t *testing.T) {
	client := NewWhisperClient(WhisperConfig{APIKey: "test-key", Model: "whisper-large"})

	if client.model != "whisper-large" {
		t.Errorf("model = %q, want %q", client.model, "whisper-large")
	}
}

func TestTranscribe_EmptyPath(t *testing.T) {
	client := NewWhisperClient(WhisperConfig{APIKey: "test-key"})

	if _, err := client.Transcribe(context.Background(), Request{}); err == nil {
		t.Error("Transcribe with empty path should fail")
	}
}

func TestTranscribe_UploadsFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("request is missing the file part: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"hello there"}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "clip.webm")
	if err := os.WriteFile(path, []byte("fake-webm-bytes"), 0o644); err != nil {
		t.Fatalf("write temp audio: %v", err)
	}

	client := NewWhisperClient(WhisperConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"})

	text, err := client.Transcribe(context.Background(), Request{FilePath: path, MIMEType: "audio/webm"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello there" {
		t.Errorf("Transcribe = %q, want %q", text, "hello there")
	}
}

func TestTranscribe_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad audio"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "clip.webm")
	if err := os.WriteFile(path, []byte("junk"), 0o644); err != nil {
		t.Fatalf("write temp audio: %v", err)
	}

	client := NewWhisperClient(WhisperConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"})

	if _, err := client.Transcribe(context.Background(), Request{FilePath: path}); err == nil {
		t.Error("Transcribe should surface upstream errors")
	}
}
