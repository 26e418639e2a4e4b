package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/velours-studio/reflet/internal/features"
)

// Client talks to the completion service that produces assistant text.
// The service contract is {systemPrompt, priorTurns, userText} → {assistantText}.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client

	maxRetries int
	backoff    time.Duration
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: 30 * time.Second},
		maxRetries: 2,
		backoff:    500 * time.Millisecond,
	}
}

type request struct {
	SystemPrompt string          `json:"system_prompt"`
	PriorTurns   []features.Turn `json:"prior_turns,omitempty"`
	UserText     string          `json:"user_text"`
}

type response struct {
	AssistantText string `json:"assistant_text"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete requests assistant text. Retries transient failures with a bounded
// backoff; the caller is expected to fall back on error rather than surface it.
func (c *Client) Complete(ctx context.Context, systemPrompt string, priorTurns []features.Turn, userText string) (string, error) {
	body, err := json.Marshal(request{
		SystemPrompt: systemPrompt,
		PriorTurns:   priorTurns,
		UserText:     userText,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
		}

		text, retryable, err := c.doRequest(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return "", lastErr
}

func (c *Client) doRequest(ctx context.Context, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/complete", bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("completion call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			return "", retryable, fmt.Errorf("completion error %d: %s: %s", resp.StatusCode, errResp.Error.Type, errResp.Error.Message)
		}
		return "", retryable, fmt.Errorf("completion error %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", false, fmt.Errorf("unmarshal response: %w", err)
	}
	if apiResp.AssistantText == "" {
		return "", false, fmt.Errorf("empty assistant text")
	}
	return apiResp.AssistantText, false, nil
}
