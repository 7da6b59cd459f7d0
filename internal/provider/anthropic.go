package provider

import (
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultModel = anthropic.ModelClaudeSonnet4_5
const APIVersion = "2023-06-01"

// Options tweak client construction. The zero value reads ANTHROPIC_API_KEY
// and ANTHROPIC_BASE_URL from the environment.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	// MaxRetries overrides the SDK default when non-nil.
	MaxRetries *int
}

// NewAnthropicClient returns a Messages API client.
func NewAnthropicClient(o Options) *anthropic.Client {
	var opts []option.RequestOption
	if o.APIKey != "" {
		opts = append(opts, option.WithAPIKey(o.APIKey))
	}
	if o.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(o.BaseURL))
	}
	if o.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(o.HTTPClient))
	}
	if o.MaxRetries != nil {
		opts = append(opts, option.WithMaxRetries(*o.MaxRetries))
	}
	c := anthropic.NewClient(opts...)
	return &c
}
