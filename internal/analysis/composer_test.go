package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyst struct {
	reply    string
	err      error
	prompt   string
	deadline bool
}

func (s *stubAnalyst) Analyze(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	_, s.deadline = ctx.Deadline()
	return s.reply, s.err
}

func TestComposerFormatsReply(t *testing.T) {
	stub := &stubAnalyst{reply: "  hello world; this is great "}
	c := NewComposer(noopTracer, stub, 0)

	got := c.Compose(context.Background(), sampleSnapshot())
	assert.Equal(t, "Hello world.\nThis is great.", got)
	assert.True(t, stub.deadline, "analysis call should carry a deadline")
	assert.Contains(t, stub.prompt, "Fear Greed 64 / 100")
	assert.Equal(t, DefaultTimeout, c.timeout)
}

func TestComposerSwallowsErrors(t *testing.T) {
	c := NewComposer(noopTracer, &stubAnalyst{err: errors.New("boom")}, time.Second)
	assert.Equal(t, "", c.Compose(context.Background(), sampleSnapshot()))
}

func TestComposerWithoutAnalyst(t *testing.T) {
	var nilComposer *Composer
	assert.Equal(t, "", nilComposer.Compose(context.Background(), sampleSnapshot()))
	assert.Equal(t, "", NewComposer(noopTracer, nil, 0).Compose(context.Background(), sampleSnapshot()))
}

func TestComposerBlankReply(t *testing.T) {
	c := NewComposer(noopTracer, &stubAnalyst{reply: " \n "}, time.Second)
	assert.Equal(t, "", c.Compose(context.Background(), sampleSnapshot()))
}

type stubLLMClient struct {
	response *openai.ChatCompletion
	err      error
	params   openai.ChatCompletionNewParams
}

func (s *stubLLMClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	s.params = params
	return s.response, s.err
}

func TestOpenAIAnalystReturnsFirstChoice(t *testing.T) {
	llm := &stubLLMClient{response: &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "sentiment is greedy"}},
		},
	}}
	a := NewOpenAIAnalyst(noopTracer, llm, "")

	got, err := a.Analyze(context.Background(), "prompt text")
	require.NoError(t, err)
	assert.Equal(t, "sentiment is greedy", got)
	assert.Equal(t, "gpt-4o-mini", a.model)
	assert.Len(t, llm.params.Messages, 2)
}

func TestOpenAIAnalystNoChoices(t *testing.T) {
	a := NewOpenAIAnalyst(noopTracer, &stubLLMClient{response: &openai.ChatCompletion{}}, "gpt-4o")
	_, err := a.Analyze(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestOpenAIAnalystError(t *testing.T) {
	a := NewOpenAIAnalyst(noopTracer, &stubLLMClient{err: errors.New("rate limited")}, "gpt-4o")
	_, err := a.Analyze(context.Background(), "prompt")
	assert.EqualError(t, err, "rate limited")
}
