// Package llm talks to an OpenAI-compatible chat completion gateway.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"call-insights-go/internal/config"
	"call-insights-go/internal/logger"
)

type Client struct {
	cfg  config.LLMConfig
	http *http.Client
	log  *logger.Logger
}

func New(cfg config.LLMConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		log:  logger.New(),
	}
}

const mockDialogue = "Agent: Good afternoon, this is the Iguazio Internet support line, how can I help?\n" +
	"Client: Hi... my internet has been really slow since yesterday.\n" +
	"Agent: I am sorry to hear that, let me check the line for you.\n" +
	"Client: Thank you, that would be great.\n" +
	"Agent: The line looks congested, I have reset it on our side. Anything else I can do?\n" +
	"Client: No, that is all. Thanks for the help.\n"

// Complete sends one user prompt and returns the assistant's text.
// Transient gateway errors are retried with exponential backoff.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.cfg.Mock {
		return mockDialogue, nil
	}
	if c.cfg.GatewayURL == "" {
		return "", fmt.Errorf("llm gateway not configured")
	}

	reqBody := map[string]interface{}{
		"model": c.cfg.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.7,
	}
	data, _ := json.Marshal(reqBody)

	log := c.log.WithField("component", "llm-client")

	var content string
	var lastErr error
	op := func() error {
		reqCtx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutSec)*time.Second)
		defer cancel()

		req, _ := http.NewRequestWithContext(reqCtx, "POST", c.cfg.GatewayURL, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			log.WithError(err).Warn("llm request failed")
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("llm gateway status %d: %s", resp.StatusCode, string(body))
			return lastErr
		}
		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("llm gateway status %d: %s", resp.StatusCode, string(body))
			return backoff.Permanent(lastErr)
		}

		var parsed struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Choices) == 0 {
			lastErr = fmt.Errorf("unexpected llm response: %s", string(body))
			return lastErr
		}
		content = parsed.Choices[0].Message.Content
		lastErr = nil
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = time.Duration(c.cfg.MaxRetrySec) * time.Second
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return "", fmt.Errorf("llm completion failed: %w", lastErr)
	}
	return content, nil
}
