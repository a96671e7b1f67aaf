package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
	openrouterx "github.com/tanpawarit/transfer-orchestrator/pkg/openrouter"
)

const (
	BackendOpenAI = "openai"
	BackendEino   = "eino"
)

// Config is loaded once per process and treated as read-only.
type Config struct {
	Backend            string        `envconfig:"BACKEND" split_words:"true" default:"openai"`
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.openai.com/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"gpt-4o-mini"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"60s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	ExtractTemperature float64 `envconfig:"EXTRACT_TEMPERATURE" split_words:"true" default:"0"`
	ReviewTemperature  float64 `envconfig:"REVIEW_TEMPERATURE" split_words:"true" default:"0.2"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: model api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: model name is required", contractx.ErrValidation)
	}
	switch c.backend() {
	case BackendOpenAI, BackendEino:
	default:
		return fmt.Errorf("%w: unsupported llm backend %q", contractx.ErrValidation, c.Backend)
	}
	if c.ExtractTemperature < 0 || c.ReviewTemperature < 0 {
		return fmt.Errorf("%w: temperatures must be >= 0", contractx.ErrValidation)
	}
	return nil
}

func (c Config) backend() string {
	b := strings.ToLower(strings.TrimSpace(c.Backend))
	if b == "" {
		return BackendOpenAI
	}
	return b
}

func (c Config) OpenRouter() openrouterx.Config {
	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              strings.TrimSpace(c.Model),
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        float32(c.ExtractTemperature),
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
		JSONObject:         true,
	}
}

// NewChatModel builds the configured backend. Both backends request
// JSON-object output; the per-call temperature overrides the default.
func NewChatModel(ctx context.Context, cfg Config) (contractx.ChatModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	orCfg := cfg.OpenRouter()
	switch cfg.backend() {
	case BackendEino:
		m, err := orCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create chat model: %w", contractx.ErrModelInvoke, err)
		}
		return m, nil
	default:
		client := openrouterx.NewClient(orCfg)
		if client == nil {
			return nil, fmt.Errorf("%w: openai client not initialized", contractx.ErrValidation)
		}
		return NewOpenAIChatModel(client, orCfg.Model, cfg.MaxCompletionToken)
	}
}
