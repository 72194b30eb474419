package analysis

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const analystInstructions = `You are a crypto market analyst writing the commentary block of a daily market overview card.
You receive the card's numbers as plain text.

Rules:
- Write 3 to 5 short sentences in plain prose, no lists, no markdown.
- Mention overall sentiment, market cap and volume direction, and the strongest and weakest coins.
- Never invent figures that are not in the data.
- Do not give financial advice.`

// LLMClient abstracts the OpenAI chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// OpenAIAnalyst writes the analysis with a chat model instead of a dedicated endpoint.
type OpenAIAnalyst struct {
	tracer trace.Tracer
	llm    LLMClient
	model  string
}

func NewOpenAIAnalyst(tracer trace.Tracer, llm LLMClient, model string) *OpenAIAnalyst {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIAnalyst{tracer: tracer, llm: llm, model: model}
}

func (a *OpenAIAnalyst) Analyze(ctx context.Context, prompt string) (string, error) {
	ctx, span := a.tracer.Start(ctx, "analysis.openai-analyze")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", a.model))

	completion, err := a.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(analystInstructions),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in LLM response")
	}

	reply := completion.Choices[0].Message.Content
	span.SetAttributes(attribute.Int("llm.reply_length", len(reply)))
	return reply, nil
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

func NewOpenAIClient(apiKey string) LLMClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openaiClient{client: client}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
