package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cepho/cepho-api/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// MaxTasksInPrompt caps how many open tasks the prompt lists
	MaxTasksInPrompt = 40

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIProvider implements the Summarizer interface using OpenAI's API
type OpenAIProvider struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client: client,
		model:  model,
		logger: logger,
	}
}

// SummarizeReview produces a short triage summary of the user's open work
// for an unattended evening review
func (p *OpenAIProvider) SummarizeReview(ctx context.Context, input ReviewInput) (string, error) {
	prompt := buildReviewPrompt(input)

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("You are a personal productivity assistant running an evening review on the user's behalf. Summarize their open work in 3-5 short sentences: what was finished, what is blocked or urgent, and what to pick up tomorrow. Plain text, no markdown."),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
	}

	if p.logger != nil {
		p.logger.Debug("llm_api_request",
			zap.String("operation", "summarize_review"),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt)),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if p.logger != nil {
			p.logger.Debug("llm_api_error",
				zap.String("operation", "summarize_review"),
				zap.String("model", p.model),
				zap.Error(err),
				zap.Duration("latency", latency),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("failed to summarize review: %w", apiErr)
		}
		return "", fmt.Errorf("failed to summarize review: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if p.logger != nil {
		p.logger.Debug("llm_api_response",
			zap.String("operation", "summarize_review"),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return content, nil
}

func buildReviewPrompt(input ReviewInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Evening review (%s mode), triggered at %s.\n\n", input.Mode, input.EveningStart)

	activeProjects := 0
	for _, project := range input.Projects {
		if project != nil && project.Status == models.ProjectStatusInProgress {
			activeProjects++
		}
	}
	fmt.Fprintf(&b, "Open tasks: %d (%d outstanding). Active projects: %d.\n\n", len(input.Tasks), input.Outstanding, activeProjects)

	b.WriteString("Tasks:\n")
	for i, task := range input.Tasks {
		if task == nil {
			continue
		}
		if i >= MaxTasksInPrompt {
			fmt.Fprintf(&b, "... and %d more\n", len(input.Tasks)-MaxTasksInPrompt)
			break
		}
		line := fmt.Sprintf("- [%s] %s", task.Status, task.Title)
		if task.Priority != nil {
			line += fmt.Sprintf(" (priority: %s)", *task.Priority)
		}
		if task.DueDate != nil {
			line += fmt.Sprintf(" (due: %s)", task.DueDate.Format("2006-01-02"))
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}
