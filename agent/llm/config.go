package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/contact-assistant/agent/contract"
	openrouterx "github.com/tanpawarit/contact-assistant/pkg/openrouter"
)

type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderAnthropic  Provider = "anthropic"
	ProviderOpenRouter Provider = "openrouter"
)

var defaultModels = map[Provider]string{
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderAnthropic:  "claude-sonnet-4-5",
	ProviderOpenRouter: "openai/gpt-4o-mini",
}

type Config struct {
	Provider           string        `envconfig:"PROVIDER" split_words:"true" default:"openai"`
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"1024"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.2"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	MaxRetries         int           `envconfig:"MAX_RETRIES" split_words:"true" default:"2"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`
}

// Validate reports missing or inconsistent settings as contract.ErrConfiguration.
func (c Config) Validate() error {
	switch c.provider() {
	case ProviderOpenAI, ProviderAnthropic, ProviderOpenRouter:
	default:
		return fmt.Errorf("%w: unsupported llm provider %q", contractx.ErrConfiguration, c.Provider)
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: %s api key is required", contractx.ErrConfiguration, c.provider())
	}
	if c.MaxCompletionToken <= 0 {
		return fmt.Errorf("%w: max completion tokens must be positive", contractx.ErrConfiguration)
	}
	if c.Timeout < 0 || c.MaxRetries < 0 {
		return fmt.Errorf("%w: timeout and retries must not be negative", contractx.ErrConfiguration)
	}
	return nil
}

// ModelName returns the configured model or the provider default.
func (c Config) ModelName() string {
	if m := strings.TrimSpace(c.Model); m != "" {
		return m
	}
	return defaultModels[c.provider()]
}

// New builds the model client for the configured provider.
func New(ctx context.Context, cfg Config) (contractx.ModelClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.provider() {
	case ProviderAnthropic:
		return NewAnthropicClient(cfg)
	case ProviderOpenRouter:
		routerCfg := cfg.OpenRouter()
		chatModel, err := routerCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", contractx.ErrConfiguration, err)
		}
		return NewEinoClient(chatModel, "openrouter")
	default:
		return NewOpenAIClient(cfg)
	}
}

// OpenRouter maps the settings onto an OpenAI-compatible endpoint config.
func (c Config) OpenRouter() openrouterx.Config {
	baseURL := strings.TrimSpace(c.BaseURL)
	if baseURL == "" && c.provider() == ProviderOpenRouter {
		baseURL = openrouterx.DefaultBaseURL
	}
	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            baseURL,
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              c.ModelName(),
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        c.Temperature,
		Timeout:            c.Timeout,
		MaxRetries:         c.MaxRetries,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}

func (c Config) provider() Provider {
	return Provider(strings.ToLower(strings.TrimSpace(c.Provider)))
}
