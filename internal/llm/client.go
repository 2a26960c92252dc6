// Package llm provides text-generation clients for the sentiment agents.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/user/ticker-sentiment/pkg/config"
)

// systemPrompt is sent with every request regardless of provider.
const systemPrompt = "You are a financial sentiment analyst. Always respond with valid JSON when asked."

// maxAttempts bounds the retry loop for rate-limited requests.
const maxAttempts = 4

// Client defines the interface for text-generation providers.
type Client interface {
	// Name returns the provider name.
	Name() string

	// Generate sends a prompt and returns the raw text response.
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewClient creates a new text-generation client based on configuration.
func NewClient(cfg *config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case "groq":
		if cfg.Groq.APIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY is required when LLM_PROVIDER=groq")
		}
		return NewGroqClient(cfg.Groq.APIKey, cfg.Groq.Model), nil
	case "deepseek":
		if cfg.DeepSeek.APIKey == "" {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY is required when LLM_PROVIDER=deepseek")
		}
		return NewDeepSeekClient(cfg.DeepSeek.APIKey, cfg.DeepSeek.Model), nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
		return NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.Model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: groq, deepseek, gemini)", cfg.Provider)
	}
}

// GenerateJSON sends a prompt and parses the response into v. It fails with
// an error when the response contains no parseable JSON, so the calling
// stage's failure isolation can catch it.
func GenerateJSON(ctx context.Context, c Client, prompt string, v interface{}) error {
	raw, err := c.Generate(ctx, prompt)
	if err != nil {
		return err
	}
	if err := parseJSONResponse(raw, v); err != nil {
		return fmt.Errorf("invalid JSON from %s: %w", c.Name(), err)
	}
	return nil
}

// parseJSONResponse extracts and parses JSON from an LLM response, stripping
// any markdown code fences the model wrapped around it.
func parseJSONResponse(response string, v interface{}) error {
	response = strings.ReplaceAll(response, "```json", "")
	response = strings.ReplaceAll(response, "```", "")
	response = strings.TrimSpace(response)

	// Look for JSON object
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")

	if start == -1 || end == -1 || end < start {
		return fmt.Errorf("no JSON found in response: %s", truncate(response, 500))
	}

	jsonStr := response[start : end+1]

	if err := json.Unmarshal([]byte(jsonStr), v); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w (json: %s)", err, truncate(jsonStr, 500))
	}

	return nil
}

// isRateLimited reports whether an error looks like a quota/rate-limit
// response from any of the supported providers.
func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(strings.ToLower(msg), "rate")
}

// generateWithRetry runs fn, retrying with exponential backoff when the
// provider signals a rate limit. The delay doubles per attempt starting
// from base. Non-rate-limit errors propagate immediately.
func generateWithRetry(ctx context.Context, provider string, base time.Duration, fn func(context.Context) (string, error)) (string, error) {
	delay := base
	for attempt := 0; attempt < maxAttempts; attempt++ {
		out, err := fn(ctx)
		if err == nil {
			return strings.TrimSpace(out), nil
		}
		if !isRateLimited(err) || attempt == maxAttempts-1 {
			return "", err
		}

		log.Warn().
			Str("provider", provider).
			Int("attempt", attempt+1).
			Int("max_attempts", maxAttempts).
			Dur("wait", delay).
			Msg("rate limit hit, backing off")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		delay *= 2
	}
	return "", fmt.Errorf("%s: retries exhausted", provider)
}

// truncate shortens s for log/error output.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
