// Package llm talks to the DeepSeek chat API and builds the bounded
// codebase context that accompanies every prompt.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lexcodex/cartograph/persistence"
)

// Supported models. The reasoner gets a leaner prompt shape than the chat
// model.
const (
	ModelChat     = "deepseek-chat"
	ModelReasoner = "deepseek-reasoner"
)

const (
	defaultBaseURL = "https://api.deepseek.com"

	maxResponseTokens = 2000
	historyWindow     = 10

	chatTemperature     = 0.7
	reasonerTemperature = 0.6
)

// ErrNoAPIKey is returned when no key is configured via settings or the
// environment.
var ErrNoAPIKey = errors.New("DEEPSEEK_API_KEY not set: configure it via settings or the environment")

// Client calls the DeepSeek chat-completions endpoint.
type Client struct {
	APIKey  string
	BaseURL string
	client  *http.Client
}

// NewClient builds a client with the default endpoint.
func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: 3 * time.Minute,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Chat sends one user turn with codebase context and recent history and
// returns the assistant reply. History is windowed to the last ten turns.
func (c *Client) Chat(ctx context.Context, model, message, codebaseContext string, history []persistence.ChatMessage) (string, error) {
	if c.APIKey == "" {
		return "", ErrNoAPIKey
	}
	if model == "" {
		model = ModelChat
	}

	var messages []chatMessage
	temperature := chatTemperature
	userMessage := message
	if model == ModelReasoner {
		// The reasoner performs better with no system prompt and an
		// explicit task format.
		temperature = reasonerTemperature
		userMessage = reasonerPrompt(message, codebaseContext)
	} else {
		messages = append(messages, chatMessage{Role: "system", Content: architectPrompt(codebaseContext)})
	}

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	for _, m := range history {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userMessage})

	payload := chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxResponseTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("deepseek: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("deepseek: unexpected status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("deepseek: empty response")
	}
	return parsed.Choices[0].Message.Content, nil
}

func reasonerPrompt(message, codebaseContext string) string {
	return fmt.Sprintf(`Task: %s

Codebase Context:
%s

Output Format:
1. Analysis (explain the issue/requirement)
2. Code changes (show as code diffs with file paths like `+"`// File: path/to/file.ext`"+`)
3. Testing plan (how to verify the changes)

Use markdown code blocks with file paths for all code suggestions.`, message, codebaseContext)
}

func architectPrompt(codebaseContext string) string {
	return fmt.Sprintf(`You are a senior software architect analyzing a codebase and proposing code changes.

Codebase Context:
%s

When proposing code changes:
1. Use markdown code blocks with file paths: `+"```lang\n// File: path/to/file.ext\ncode here\n```"+`
2. Show clear before/after diffs when modifying existing code
3. Reference specific files, risk scores, and patterns from the context
4. Be concise but actionable
5. Include file paths in every code block for easy copying`, codebaseContext)
}
