package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewOpenAIClient_DefaultModel(t *testing.T) {
	client := NewOpenAIClient(OpenAIConfig{APIKey: "test-key"})

	if client.model != "gpt-4o" {
		t.Errorf("model = %q, want %q", client.model, "gpt-4o")
	}
}

func TestNewOpenAIClient_CustomModel(t *testing.T) {
	client := NewOpenAIClient(OpenAIConfig{APIKey: "test-key", Model: "gpt-4o-mini"})

	if client.model != "gpt-4o-mini" {
		t.Errorf("model = %q, want %q", client.model, "gpt-4o-mini")
	}
}

func TestCleanupPromptContainsFallbackSentence(t *testing.T) {
	// The fallback sentence is a contract with the widget: it must appear
	// verbatim inside the cleanup instructions.
	if !strings.Contains(CleanupSystemPrompt, FallbackText) {
		t.Error("CleanupSystemPrompt must embed FallbackText verbatim")
	}
	if FallbackText != `Sorry, I didn't catch that. Could you please repeat?` {
		t.Errorf("FallbackText = %q", FallbackText)
	}
}

func TestSummaryPromptFirstPerson(t *testing.T) {
	if !strings.Contains(SummarySystemPrompt, "first person") {
		t.Error("SummarySystemPrompt must demand first-person voice")
	}
}

// newChatTestServer returns a server that records the last chat request and
// answers with the given content.
func newChatTestServer(t *testing.T, content string, lastSystem *string, lastUser *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		for _, m := range req.Messages {
			switch m.Role {
			case "system":
				*lastSystem = m.Content
			case "user":
				*lastUser = m.Content
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":` + mustJSON(content) + `}}]}`))
	}))
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestRefine_SendsCleanupPromptAndRawText(t *testing.T) {
	var gotSystem, gotUser string
	srv := newChatTestServer(t, "Hello world.", &gotSystem, &gotUser)
	defer srv.Close()

	client := NewOpenAIClient(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"})

	out, err := client.Refine(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if out != "Hello world." {
		t.Errorf("Refine = %q, want %q", out, "Hello world.")
	}
	if gotSystem != CleanupSystemPrompt {
		t.Error("Refine must use CleanupSystemPrompt as the system message")
	}
	if gotUser != "hello world" {
		t.Errorf("user message = %q, want raw transcript", gotUser)
	}
}

func TestRefine_ForwardsEmptyTranscript(t *testing.T) {
	// Empty raw text still goes to the model; the fallback sentence is
	// the model's responsibility.
	var gotSystem, gotUser string
	srv := newChatTestServer(t, FallbackText, &gotSystem, &gotUser)
	defer srv.Close()

	client := NewOpenAIClient(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"})

	out, err := client.Refine(context.Background(), "")
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if out != FallbackText {
		t.Errorf("Refine = %q, want fallback sentence", out)
	}
	if gotUser != "" {
		t.Errorf("user message = %q, want empty", gotUser)
	}
}

func TestSummarize_SendsSummaryPrompt(t *testing.T) {
	var gotSystem, gotUser string
	srv := newChatTestServer(t, "I went to the store.", &gotSystem, &gotUser)
	defer srv.Close()

	client := NewOpenAIClient(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"})

	out, err := client.Summarize(context.Background(), "So I went to the store and...")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if out != "I went to the store." {
		t.Errorf("Summarize = %q", out)
	}
	if gotSystem != SummarySystemPrompt {
		t.Error("Summarize must use SummarySystemPrompt as the system message")
	}
}

func TestComplete_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limit"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewOpenAIClient(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"})

	if _, err := client.Refine(context.Background(), "hi"); err == nil {
		t.Error("Refine should surface upstream errors")
	}
}
