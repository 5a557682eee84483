package llm

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

const defaultOpenAIURL = "https://api.openai.com/v1/responses"

// OpenAIClient implements Client using the OpenAI Responses API.
type OpenAIClient struct {
	apiKey     string
	endpoint   string
	config     *Config
	httpClient *http.Client
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(config *Config, apiKey string) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultOpenAIConfig()
	}
	return &OpenAIClient{
		apiKey:     apiKey,
		endpoint:   defaultOpenAIURL,
		config:     config,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// WithEndpoint points the client at a different Responses API URL.
func (c *OpenAIClient) WithEndpoint(url string) *OpenAIClient {
	c.endpoint = url
	return c
}

type responsesRequest struct {
	Model       string   `json:"model"`
	Input       string   `json:"input"`
	Temperature *float64 `json:"temperature,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// GenerateContent generates text content using the specified model tier
func (c *OpenAIClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	temp := 0.1
	payload, err := json.Marshal(responsesRequest{Model: modelName, Input: prompt, Temperature: &temp})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("openai request timeout: %w", err)
		}
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read openai response: %w", err)
	}

	var parsed responsesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("openai response parse (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai returned status %d", resp.StatusCode)
	}

	var sb strings.Builder
	for _, item := range parsed.Output {
		if item.Type != "message" {
			continue
		}
		for _, content := range item.Content {
			if content.Type == "output_text" {
				sb.WriteString(content.Text)
			}
		}
	}
	// An empty reply is not a call failure.
	return sb.String(), nil
}

// GetModel returns the model name for a tier
func (c *OpenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the HTTP client holds no per-client resources.
func (c *OpenAIClient) Close() error {
	return nil
}
