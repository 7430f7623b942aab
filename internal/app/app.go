package app

import (
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/voiyce/voiyce/internal/eventlog"
	"github.com/voiyce/voiyce/internal/httpapi"
	"github.com/voiyce/voiyce/internal/llm"
	"github.com/voiyce/voiyce/internal/relay"
	"github.com/voiyce/voiyce/internal/stt"
	"github.com/voiyce/voiyce/internal/upload"
)

type App struct {
	cfg        Config
	logger     *log.Logger
	spool      *upload.Spool
	service    *relay.Service
	httpClient *http.Client // Shared HTTP client with connection pooling for both OpenAI APIs
}

func New(cfg Config, logger *log.Logger) (*App, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}

	spool, err := upload.NewSpool(cfg.UploadDir, logger)
	if err != nil {
		return nil, err
	}

	// Shared HTTP client with connection pooling. Both providers hit the
	// same host, so keeping connections alive saves a handshake per request.
	httpClient := &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	sttClient := stt.NewWhisperClient(stt.WhisperConfig{
		APIKey:     cfg.OpenAIAPIKey,
		Model:      cfg.TranscribeModel,
		BaseURL:    cfg.OpenAIBaseURL,
		HTTPClient: httpClient,
	})
	llmClient := llm.NewOpenAIClient(llm.OpenAIConfig{
		APIKey:     cfg.OpenAIAPIKey,
		Model:      cfg.ChatModel,
		BaseURL:    cfg.OpenAIBaseURL,
		HTTPClient: httpClient,
	})

	service := relay.NewService(sttClient, llmClient, spool, eventlog.New(logger), logger)

	return &App{
		cfg:        cfg,
		logger:     logger,
		spool:      spool,
		service:    service,
		httpClient: httpClient,
	}, nil
}

func (a *App) Router(requests *httpapi.RequestRegistry) http.Handler {
	routerCfg := httpapi.RouterConfig{
		MaxUploadBytes: a.cfg.MaxUploadBytes,
	}
	return httpapi.NewRouter(routerCfg, a.logger, a.service, requests)
}

func (a *App) Close() error {
	a.httpClient.CloseIdleConnections()
	return nil
}
