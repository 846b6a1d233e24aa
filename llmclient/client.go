package llmclient

import (
	"context"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"newsgraph/config"
	apperrors "newsgraph/errors"
	"newsgraph/rag"
)

const (
	answerTemperature = 0.2
	answerMaxTokens   = 1024

	defaultOllamaURL = "http://localhost:11434"
)

// contentModel is the slice of the langchaingo client surface the answer
// path needs. Both openai.LLM and ollama.LLM satisfy it.
type contentModel interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Client produces grounded answers through a hosted or local chat model.
type Client struct {
	model    contentModel
	provider string
	timeout  time.Duration
	logger   *zap.Logger
}

// New builds a Client for the configured provider. Supported providers are
// "openai" (including any OpenAI-compatible endpoint via LLM_BASE_URL) and
// "ollama".
func New(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.LLMProvider))

	var (
		model contentModel
		err   error
	)
	switch provider {
	case "openai":
		opts := []openai.Option{openai.WithToken(cfg.LLMAPIKey)}
		if cfg.LLMModel != "" {
			opts = append(opts, openai.WithModel(cfg.LLMModel))
		}
		if cfg.LLMBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.LLMBaseURL))
		}
		model, err = openai.New(opts...)
	case "ollama":
		serverURL := cfg.LLMBaseURL
		if serverURL == "" {
			serverURL = defaultOllamaURL
		}
		opts := []ollama.Option{ollama.WithServerURL(serverURL)}
		if cfg.LLMModel != "" {
			opts = append(opts, ollama.WithModel(cfg.LLMModel))
		}
		model, err = ollama.New(opts...)
	default:
		return nil, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "unsupported llm provider %q", cfg.LLMProvider)
	}
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "create %s client: %v", provider, err)
	}

	return &Client{
		model:    model,
		provider: provider,
		timeout:  cfg.LLMRequestTimeout,
		logger:   logger,
	}, nil
}

// GenerateAnswer asks the model to answer query using only the retrieved
// sources. The sources are rendered into the user turn as a numbered context
// block so the model can cite them.
func (c *Client) GenerateAnswer(ctx context.Context, query string, sources []rag.SourceContext) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	messages := buildMessages(query, sources)
	resp, err := c.model.GenerateContent(ctx, messages,
		llms.WithTemperature(answerTemperature),
		llms.WithMaxTokens(answerMaxTokens),
	)
	if err != nil {
		return "", apperrors.WrapErrorf(apperrors.ErrLLMCommunication, "generate answer: %v", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.WrapError(apperrors.ErrLLMCommunication, "completion had no choices")
	}

	answer := strings.TrimSpace(resp.Choices[0].Content)
	if answer == "" {
		return "", apperrors.WrapError(apperrors.ErrLLMCommunication, "completion was empty")
	}

	c.logger.Debug("Generated answer",
		zap.String("provider", c.provider),
		zap.Int("sources", len(sources)),
		zap.Int("answer_length", len(answer)))

	return answer, nil
}
