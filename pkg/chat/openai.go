package chat

import (
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// NewOpenAIClient creates an OpenAI client. An empty baseURL uses the public API.
func NewOpenAIClient(httpClient *http.Client, baseURL string, apiKey string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	config.HTTPClient = httpClient
	if baseURL != "" {
		config.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	return openai.NewClientWithConfig(config)
}
