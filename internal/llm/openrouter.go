package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxResponseBytes = 1 << 20

// OpenRouterClient talks to an OpenAI-compatible chat-completions endpoint.
type OpenRouterClient struct {
	apiKey   string
	model    string
	endpoint string
	title    string
	http     *http.Client
}

func NewOpenRouterClient(apiKey, model, endpoint, title string, timeout time.Duration) *OpenRouterClient {
	return &OpenRouterClient{
		apiKey:   apiKey,
		model:    model,
		endpoint: endpoint,
		title:    title,
		http:     &http.Client{Timeout: timeout},
	}
}

func (c *OpenRouterClient) Configured() bool {
	return c.apiKey != ""
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenRouterClient) Analyze(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	if len(image) == 0 {
		return "", errors.New("empty image")
	}

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: prompt},
					{Type: "image_url", ImageURL: &imageURL{
						URL: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image),
					}},
				},
			},
		},
		Temperature: 0,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.title != "" {
		req.Header.Set("X-Title", c.title)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", &ServiceError{Duration: time.Since(start), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &ServiceError{Status: resp.StatusCode, Duration: time.Since(start), Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ServiceError{
			Status:   resp.StatusCode,
			Duration: time.Since(start),
			Err:      fmt.Errorf("unexpected response: %s", truncate(raw, 512)),
		}
	}

	var result chatResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", &ServiceError{Status: resp.StatusCode, Duration: time.Since(start), Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(result.Choices) == 0 {
		return "", &ServiceError{Status: resp.StatusCode, Duration: time.Since(start), Err: errors.New("empty choices")}
	}

	return result.Choices[0].Message.Content, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
