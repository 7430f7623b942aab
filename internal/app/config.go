package app

import (
	"os"
	"strconv"
)

type Config struct {
	HTTPAddr  string
	LogLevel  string
	SentryDSN string

	// Speech and language providers
	OpenAIAPIKey    string
	TranscribeModel string
	ChatModel       string
	OpenAIBaseURL   string // override for local gateways, empty for the real API

	// Upload spool
	UploadDir      string
	MaxUploadBytes int64
}

func LoadConfigFromEnv() Config {
	return Config{
		HTTPAddr:  getenv("HTTP_ADDR", ":3000"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		SentryDSN: getenv("SENTRY_DSN", ""),

		// Speech and language providers
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"), // Required - no fallback
		TranscribeModel: getenv("TRANSCRIBE_MODEL", "whisper-1"),
		ChatModel:       getenv("CHAT_MODEL", "gpt-4o"),
		OpenAIBaseURL:   getenv("OPENAI_BASE_URL", ""),

		// Upload spool
		UploadDir:      getenv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: getenvInt64Clamped("MAX_UPLOAD_BYTES", 25<<20, 1<<10, 100<<20),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt64Clamped(k string, def, min, max int64) int64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
