package gateway

import (
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/petasbytes/mathtutor/internal/config"
	"github.com/petasbytes/mathtutor/internal/provider"
)

// New builds the gateway selected by cfg.Mode.
func New(cfg *config.Config) (Gateway, error) {
	switch cfg.Mode {
	case config.ModeMock:
		return &Mock{GatingMessage: cfg.Prompt.GatingMessage, PromptVersion: cfg.Prompt.Version}, nil
	case config.ModeAnthropic:
		if os.Getenv("ANTHROPIC_API_KEY") == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set; export it or use mode %q", config.ModeMock)
		}
		return &Anthropic{
			Client:        provider.NewAnthropicClient(provider.Options{}),
			Model:         anthropic.Model(cfg.Model),
			MaxTokens:     cfg.MaxTokens,
			Timeout:       cfg.ModelTimeout,
			TokenBudget:   cfg.TokenBudget,
			PromptVersion: cfg.Prompt.Version,
		}, nil
	}
	return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
}
