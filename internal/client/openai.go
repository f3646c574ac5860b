package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const openAIAPI = "https://api.openai.com/v1"

// Chat roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one chat completion message
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a function call requested by the model
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the function name and its JSON encoded arguments
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition describes a function the model may call
type ToolDefinition struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition is the JSON schema of a callable function
type FunctionDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// OpenAIConfig configures OpenAIClient
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
}

// OpenAIClient client for the OpenAI chat completions and embeddings APIs
type OpenAIClient struct {
	baseURL        string
	apiKey         string
	chatModel      string
	embeddingModel string
	client         *http.Client
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("no API key provided (OPENAI_API_KEY)")
	}
	if strings.TrimSpace(cfg.ChatModel) == "" {
		return nil, errors.New("no chat model configured")
	}
	if strings.TrimSpace(cfg.EmbeddingModel) == "" {
		return nil, errors.New("no embedding model configured")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = openAIAPI
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIClient{
		baseURL:        baseURL,
		apiKey:         apiKey,
		chatModel:      cfg.ChatModel,
		embeddingModel: cfg.EmbeddingModel,
		client:         &http.Client{Timeout: timeout},
	}, nil
}

// Model returns the chat model name
func (c *OpenAIClient) Model() string {
	return c.chatModel
}

type chatRequest struct {
	Model    string           `json:"model"`
	Messages []Message        `json:"messages"`
	Tools    []ToolDefinition `json:"tools,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

// Chat sends the conversation and returns the model's next message
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message, tools []ToolDefinition) (Message, error) {
	if len(messages) == 0 {
		return Message{}, fmt.Errorf("empty prompt")
	}

	var parsed chatResponse
	err := c.post(ctx, "/chat/completions", chatRequest{
		Model:    c.chatModel,
		Messages: messages,
		Tools:    tools,
	}, &parsed)
	if err != nil {
		return Message{}, err
	}
	if len(parsed.Choices) == 0 {
		return Message{}, fmt.Errorf("openai response had no choices")
	}
	return parsed.Choices[0].Message, nil
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns one embedding vector per input, in input order
func (c *OpenAIClient) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	var parsed embeddingResponse
	err := c.post(ctx, "/embeddings", embeddingRequest{
		Model: c.embeddingModel,
		Input: inputs,
	}, &parsed)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(inputs))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(inputs) {
			return nil, fmt.Errorf("openai embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("openai response had no embedding for input %d", i)
		}
	}
	return vectors, nil
}

type errorResponse struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *OpenAIClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		var e errorResponse
		if json.Unmarshal(respBody, &e) == nil && e.Error != nil && e.Error.Message != "" {
			return fmt.Errorf("openai error (%d): %s", resp.StatusCode, e.Error.Message)
		}
		return fmt.Errorf("openai error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return json.Unmarshal(respBody, out)
}
