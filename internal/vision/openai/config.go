package openai

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/expensio/receipt-scan/internal/common"
)

// Client talks to an OpenAI-compatible chat/completions endpoint with an
// attached image. It implements vision.Capability.
type Client struct {
	cfg        common.VisionConfig
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg common.VisionConfig, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger,
	}
}
