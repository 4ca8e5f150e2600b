package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const systemPrompt = `You are playing a game where you need to blend in with player answers.
Your goal is to match the tone, style, humor level, content type, AND LENGTH of the other players.
If they use curse words, use curse words. If they're making dark jokes, make dark jokes.
Be creative and funny, but match their energy and answer length.

CRITICAL RULES:
- NEVER reference or restate the question in your answer
- NEVER mention player names in your answer
- NEVER use punctuation (no periods, commas, quotes, apostrophes, etc.)
- Use casual, informal grammar like real players do
- Match the style and length of the other answers exactly
- Keep answers concise and direct`

// Client generates an answer that blends in with player submissions,
// backed by the OpenAI chat completions API.
type Client struct {
	client     openai.Client
	model      string
	timeout    time.Duration
	configured bool
}

// NewClient creates an OpenAI-backed answer generator. An empty API key
// yields a client whose Generate always fails, matching the game's
// "provider unavailable" error path.
func NewClient(apiKey, model string, timeout time.Duration) *Client {
	c := &Client{
		model:   model,
		timeout: timeout,
	}

	if apiKey != "" {
		c.client = openai.NewClient(option.WithAPIKey(apiKey))
		c.configured = true
	}

	return c
}

// Generate produces one plain answer string styled to match the submitted
// answers' length and tone, stripped of punctuation and player-name echoes.
func (c *Client) Generate(ctx context.Context, question string, answers []string, playerNames []string) (string, error) {
	if !c.configured {
		return "", errors.New("openai api key not configured")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	avgLen := AverageLength(answers)

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildUserPrompt(question, answers, avgLen)),
		},
		Temperature: openai.Float(0.9),
		MaxTokens:   openai.Int(int64(maxTokensFor(avgLen))),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}

	answer := Sanitize(resp.Choices[0].Message.Content, playerNames, avgLen)
	if answer == "" {
		return "", errors.New("empty answer after sanitizing")
	}

	return answer, nil
}

// buildUserPrompt lists the real answers so the model can imitate them
func buildUserPrompt(question string, answers []string, avgLen int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nHere are the answers other players submitted:\n", question)
	for i, a := range answers {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a)
	}
	fmt.Fprintf(&b, "\nGenerate ONE answer that matches the tone, style, AND LENGTH (approximately %d characters) of these answers. ", avgLen)
	b.WriteString("Your answer must be standalone, with NO numbering, NO prefixes, NO formatting, NO punctuation. Just plain casual text like the examples.")
	return b.String()
}

// maxTokensFor leaves some buffer beyond the target answer length
func maxTokensFor(avgLen int) int {
	maxLen := avgLen*13/10 + 20
	if maxLen < 50 {
		return 50
	}
	return maxLen
}
