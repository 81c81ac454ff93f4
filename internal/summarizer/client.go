// Package summarizer asks the Gemini generateContent API for a short summary
// of an ingestion batch.
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vaultcapture/internal/config"
	"vaultcapture/internal/logging"
	"vaultcapture/internal/services"
)

const (
	component          = "summarizer"
	defaultBaseURL     = "https://generativelanguage.googleapis.com/v1beta"
	defaultHTTPTimeout = 60 * time.Second
	defaultTemperature = 0.2
	maxErrorBodyBytes  = 2048
)

// Config captures the endpoint and sampling settings.
type Config struct {
	BaseURL        string
	TimeoutSeconds int
	Temperature    float64
}

// Client calls generateContent.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger routes summarizer logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a Client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, component)
	return client
}

// NewFromConfig applies the [summarizer] config section.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Client {
	return NewClient(Config{
		BaseURL:        cfg.Summarizer.BaseURL,
		TimeoutSeconds: cfg.Summarizer.TimeoutSeconds,
		Temperature:    cfg.Summarizer.Temperature,
	}, WithLogger(logger))
}

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini returned http %d: %s", e.StatusCode, e.Body)
}

type part struct {
	Text string `json:"text,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content *content `json:"content"`
	} `json:"candidates"`
}

// BuildPrompt renders the summary prompt for the given source file names.
func BuildPrompt(sourceFiles []string) string {
	var b strings.Builder
	b.WriteString("Summarize this ingestion batch for an Obsidian note.\n")
	b.WriteString("Return exactly 3 concise bullet points.\n")
	b.WriteString("Source files:\n")
	for _, name := range sourceFiles {
		b.WriteString("- ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// GenerateSummary returns the model's summary of sourceFiles. It fails on a
// blank key, a transport error, a non-2xx response, or a response without text.
func (c *Client) GenerateSummary(ctx context.Context, apiKey, model string, sourceFiles []string) (string, error) {
	apiKey = strings.TrimSpace(apiKey)
	model = strings.TrimSpace(model)
	if apiKey == "" {
		return "", services.Wrap(services.ErrConfiguration, component, "generate", "missing Gemini API key", nil)
	}
	if model == "" {
		return "", services.Wrap(services.ErrConfiguration, component, "generate", "model is empty", nil)
	}

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "models", model+":generateContent")
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, component, "generate", "build url", err)
	}
	encoded, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: BuildPrompt(sourceFiles)}}}},
		GenerationConfig: generationConfig{Temperature: c.cfg.Temperature},
	})
	if err != nil {
		return "", fmt.Errorf("summarizer: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("summarizer: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, component, "generate",
			fmt.Sprintf("http error (timeout=%s)", c.httpClient.Timeout), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, component, "generate", "read body", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxErrorBodyBytes {
			snippet = snippet[:maxErrorBodyBytes] + "..."
		}
		return "", services.Wrap(services.ErrExternalTool, component, "generate", "request rejected",
			&StatusError{StatusCode: resp.StatusCode, Body: snippet})
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", services.Wrap(services.ErrExternalTool, component, "generate", "decode response", err)
	}
	text := firstText(decoded)
	if text == "" {
		return "", services.Wrap(services.ErrExternalTool, component, "generate",
			"response did not contain text output", nil)
	}
	logging.WithContext(ctx, c.logger).Debug("summary generated",
		logging.String("model", model),
		logging.Int("source_files", len(sourceFiles)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return text, nil
}

func firstText(resp generateResponse) string {
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, p := range candidate.Content.Parts {
			if text := strings.TrimSpace(p.Text); text != "" {
				return text
			}
		}
	}
	return ""
}
