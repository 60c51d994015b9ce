// Package ollama implements ports.Inference against a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "http://localhost:11434"

// Client talks to the Ollama chat API.
type Client struct {
	baseURL string
	model   string
	http    *http.Client

	temperature float64
	numPredict  int
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Client) {
		c.temperature = t
	}
}

// WithNumPredict caps the number of generated tokens.
func WithNumPredict(n int) Option {
	return func(c *Client) {
		c.numPredict = n
	}
}

// New creates a client for the given server and model.
func New(baseURL, model string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		model:   model,
		http: &http.Client{
			Timeout: 2 * time.Minute, // Local inference can be slow
		},
		temperature: 0.1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatRequest struct {
	Model    string          `json:"model"`
	Messages []chatMessage   `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   json.RawMessage `json:"format,omitempty"`
	Options  *chatOptions    `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// Infer produces free text for the given prompt.
func (c *Client) Infer(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return c.chat(ctx, prompt, systemPrompt, nil)
}

// InferWithGrammar approximates grammar-constrained decoding with Ollama's
// JSON mode. The grammar path itself is not transferable to the chat API, so
// any non-empty path enables structured output and callers validate the rest.
func (c *Client) InferWithGrammar(ctx context.Context, prompt, systemPrompt, grammarPath string) (string, error) {
	var format json.RawMessage
	if grammarPath != "" {
		format = json.RawMessage(`"json"`)
	}
	return c.chat(ctx, prompt, systemPrompt, format)
}

// IsModelReady reports whether the server answers its tags endpoint.
func (c *Client) IsModelReady(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

func (c *Client) chat(ctx context.Context, prompt, systemPrompt string, format json.RawMessage) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	body := chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
		Format:   format,
	}
	if c.temperature != 0 || c.numPredict != 0 {
		body.Options = &chatOptions{Temperature: c.temperature, NumPredict: c.numPredict}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("ollama returned %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}

	return out.Message.Content, nil
}
