// Package llm adapts the OpenAI chat completion API to the two
// capabilities the advisor consumes: structured extraction from user
// text and free-text response generation from a directive.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"max.ks1230/advisor-bot/internal/entity/conversation"
	"max.ks1230/advisor-bot/internal/model/extract"
)

const dateLayout = "2006-01-02"

type config interface {
	Token() string
	Model() string
	BaseURL() string
}

type Client struct {
	client *openai.Client
	model  string
}

func New(cfg config) *Client {
	clientConfig := openai.DefaultConfig(cfg.Token())
	if cfg.BaseURL() != "" {
		clientConfig.BaseURL = cfg.BaseURL()
	}
	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model(),
	}
}

// extractJSON runs one JSON-mode completion and decodes it into out.
// Malformed model output maps to ErrNotFound, never to garbage values.
func (c *Client) extractJSON(ctx context.Context, prompt string, out interface{}) error {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return errors.Wrap(err, "create chat completion")
	}
	if len(resp.Choices) == 0 {
		return extract.ErrNotFound
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), out); err != nil {
		return extract.ErrNotFound
	}
	return nil
}

func (c *Client) Income(ctx context.Context, text string) (extract.Income, error) {
	var value extract.Income
	prompt := fmt.Sprintf(
		`Extract the monthly net income value from this text. `+
			`Respond with JSON: {"income": number}. If unsure, use 0. Text: %q`, text)
	if err := c.extractJSON(ctx, prompt, &value); err != nil {
		return extract.Income{}, err
	}
	return value, nil
}

func (c *Client) Categories(ctx context.Context, text string) (extract.Categories, error) {
	var value extract.Categories
	prompt := fmt.Sprintf(
		`Extract the list of expense categories from the text. `+
			`Respond with JSON: {"categories": [string, ...]}. Text: %q`, text)
	if err := c.extractJSON(ctx, prompt, &value); err != nil {
		return extract.Categories{}, err
	}
	return value, nil
}

func (c *Client) ExpenseAmount(ctx context.Context, text, category string) (extract.Amount, error) {
	var value extract.Amount
	prompt := fmt.Sprintf(
		`The user is answering how much they spend on the category %q. `+
			`Extract the expense amount from this text: %q. `+
			`Respond with JSON: {"amount": number}. Use 0 if not found.`, category, text)
	if err := c.extractJSON(ctx, prompt, &value); err != nil {
		return extract.Amount{}, err
	}
	return value, nil
}

func (c *Client) YesNo(ctx context.Context, text string) (extract.Decision, error) {
	var value extract.Decision
	prompt := fmt.Sprintf(
		`Does the user want to proceed? Respond with JSON: {"decision": boolean}, `+
			`true for yes, false for no. Text: %q`, text)
	if err := c.extractJSON(ctx, prompt, &value); err != nil {
		return extract.Decision{}, err
	}
	return value, nil
}

func (c *Client) SavingsGoal(ctx context.Context, text string, at time.Time) (extract.SavingsGoal, error) {
	var value extract.SavingsGoal
	prompt := fmt.Sprintf(
		`Today is %s. Extract savings goal details from the text: name, target amount `+
			`and target date. If the date is phrased relatively (e.g. "in 6 months"), `+
			`resolve it to an absolute date counting from today. `+
			`Respond with JSON: {"name": string, "targetAmount": number, "targetDate": "YYYY-MM-DD"}. `+
			`Text: %q`, at.Format(dateLayout), text)
	if err := c.extractJSON(ctx, prompt, &value); err != nil {
		return extract.SavingsGoal{}, err
	}
	if value.Name == "" || value.TargetAmount == 0 || value.TargetDate == "" {
		return extract.SavingsGoal{}, extract.ErrNotFound
	}
	return value, nil
}

func (c *Client) Purchase(ctx context.Context, text string) (extract.Purchase, error) {
	var value extract.Purchase
	prompt := fmt.Sprintf(
		`Extract the purchase name and its cost from the text. `+
			`Respond with JSON: {"name": string, "cost": number}. Text: %q`, text)
	if err := c.extractJSON(ctx, prompt, &value); err != nil {
		return extract.Purchase{}, err
	}
	if value.Name == "" || value.Cost == 0 {
		return extract.Purchase{}, extract.ErrNotFound
	}
	return value, nil
}

// Respond generates the advisor's next message. The neutral transcript
// roles are mapped to the chat API vocabulary only here.
func (c *Client) Respond(ctx context.Context, history []conversation.Turn, directive, persona string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: persona,
	})
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Speaker == conversation.Advisor {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: directive,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", errors.Wrap(err, "create chat completion")
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}
