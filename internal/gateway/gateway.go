package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"polisee/internal/config"
	"polisee/internal/domain"
)

// Gateway is the AI boundary: Generate produces a policy deliverable for a
// task, Evaluate grades a response against a rubric. Implementations other
// than Client exist for tests.
type Gateway interface {
	Generate(ctx context.Context, task domain.Task) (string, error)
	Evaluate(ctx context.Context, task domain.Task, rubric domain.Rubric, responseText string) (domain.Evaluation, error)
}

// Client talks to an OpenAI-compatible chat completion API.
type Client struct {
	api         *openai.Client
	model       string
	temperature float64
	Now         func() time.Time
}

// NewClient builds a Client from config. The API key is read from the
// configured environment variable, never from the config file itself.
func NewClient(cfg *config.Config) (*Client, error) {
	apiKey := os.Getenv(cfg.Gateway.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable not set", cfg.Gateway.APIKeyEnv)
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.Gateway.BaseURL != "" {
		clientCfg.BaseURL = cfg.Gateway.BaseURL
	}
	return &Client{
		api:         openai.NewClientWithConfig(clientCfg),
		model:       cfg.Gateway.Model,
		temperature: cfg.Gateway.Temperature,
		Now:         time.Now,
	}, nil
}

// ModelInfo names the model responses are attributed to.
func (c *Client) ModelInfo() string {
	return c.model
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Generate produces the deliverable text for a task. The memo header and
// executive summary structure are part of the prompt contract.
func (c *Client) Generate(ctx context.Context, task domain.Task) (string, error) {
	stakeholders, _ := json.Marshal(task.Stakeholders)
	constraints, _ := json.Marshal(task.Constraints)
	date := c.now().Format("January 2, 2006")
	prompt := fmt.Sprintf(`FORMAT: Professional Policy Memo.

START THE MEMO WITH THIS HEADER STRUCTURE:
**TO:** [Primary Decision Makers]
**FROM:** Senior Public Policy Analyst
**DATE:** %s
**SUBJECT:** [Descriptive Title from Task]

---

TASK CONTEXT:
- Title: %s
- Domain: %s
- Jurisdiction: %s
- Deliverable: %s
- Stakeholders: %s
- Constraints: %s

CONTENT REQUIREMENTS:
1. Start with an ### **Executive Summary**.
2. Use professional, clear, and structured sections (e.g., Background, Analysis, Recommendations).
3. Adhere strictly to constraints: %s.
4. If scientific or legal certainty is missing, clearly state assumptions.
5. Use a neutral, authoritative tone suitable for high-level government officials.`,
		date, task.Title, task.Domain, task.Jurisdiction, task.DeliverableType,
		stakeholders, constraints, task.PromptText)

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: float32(c.temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a professional public policy analyst."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "No response generated.", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Evaluate grades a response against a rubric. The model is asked for JSON
// only; whatever comes back goes through ParseEvaluation, which never fails.
func (c *Client) Evaluate(ctx context.Context, task domain.Task, rubric domain.Rubric, responseText string) (domain.Evaluation, error) {
	taskJSON, _ := json.Marshal(task)
	rubricJSON, _ := json.Marshal(rubric)
	prompt := fmt.Sprintf(`TASK: %s
RUBRIC: %s

EVALUATE THE FOLLOWING RESPONSE:
---
%s
---

DIRECTIONS:
- Grade objectively based on the rubric.
- Provide clear, everyday language in your notes. Avoid overly technical jargon where possible.

RETURN JSON FORMAT ONLY:
{
  "scores": { "criteria_id": score_number },
  "hard_fail_triggered": boolean,
  "notes": "A helpful summary of the response quality.",
  "limitations": ["list", "of", "gaps", "or", "missing", "data"],
  "assumptions": ["list", "of", "assumptions", "the", "analyst", "made"],
  "rationale": "Detailed explanation of why this grade was given."
}`, taskJSON, rubricJSON, responseText)

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: float32(c.temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "ACT AS: A senior policy evaluator."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("evaluate: %w", err)
	}
	var raw string
	if len(resp.Choices) > 0 {
		raw = resp.Choices[0].Message.Content
	}
	return ParseEvaluation(raw), nil
}

// ParseEvaluation decodes the model's evaluation payload. Malformed output
// is not an error: the result degrades to a review that records the
// parsing failure in its notes.
func ParseEvaluation(raw string) domain.Evaluation {
	raw = stripFences(raw)
	var ev domain.Evaluation
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		return domain.Evaluation{Notes: "Error in evaluation parsing."}
	}
	return ev
}

// stripFences removes a surrounding markdown code fence if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
