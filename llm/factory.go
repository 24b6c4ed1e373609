// Provider factory.

package llm

import (
	"fmt"
	"strings"
)

// Options configure provider construction.
type Options struct {
	APIKey      string
	Model       string
	MaxTokens   uint32
	Temperature float32
}

// New creates a provider by canonical name. Supported names: openai,
// anthropic, deepseek, gemini.
func New(provider string, opts Options) (Provider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("API key required for provider %q", provider)
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 4096
	}

	switch strings.ToLower(provider) {
	case "openai":
		return NewOpenAIProvider(opts.APIKey, opts.Model, opts.MaxTokens, opts.Temperature), nil
	case "anthropic":
		return NewAnthropicProvider(opts.APIKey, opts.Model, opts.MaxTokens, opts.Temperature), nil
	case "deepseek":
		return NewDeepSeekProvider(opts.APIKey, opts.Model, opts.MaxTokens, opts.Temperature), nil
	case "gemini":
		return NewGeminiProvider(opts.APIKey, opts.Model, opts.MaxTokens, opts.Temperature), nil
	default:
		return nil, fmt.Errorf("unknown provider: %q", provider)
	}
}
