package poliseesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Polisee HTTP API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Task represents the API task model (partial).
type Task struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Domain          string `json:"domain"`
	Jurisdiction    string `json:"jurisdiction"`
	DeliverableType string `json:"deliverable_type"`
	Difficulty      int    `json:"difficulty"`
	PromptText      string `json:"prompt_text"`
	RubricID        string `json:"rubric_id,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// Response represents a generated deliverable.
type Response struct {
	ID        string `json:"id"`
	TaskID    string `json:"task_id"`
	ModelInfo string `json:"model_info"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// Review represents an evaluation of a response.
type Review struct {
	ID                string             `json:"id"`
	ResponseID        string             `json:"response_id"`
	RubricID          string             `json:"rubric_id"`
	Scores            map[string]float64 `json:"scores"`
	HardFailTriggered bool               `json:"hard_fail_triggered"`
	Notes             string             `json:"notes"`
	CreatedAt         string             `json:"created_at"`
}

// Event represents a ledger entry.
type Event struct {
	ID         string         `json:"id"`
	TS         string         `json:"ts"`
	Type       string         `json:"type"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Summary    string         `json:"summary"`
	Patch      map[string]any `json:"patch"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, title, domain, promptText string) (Task, error) {
	body := map[string]any{
		"title":       title,
		"domain":      domain,
		"prompt_text": promptText,
	}
	var resp Task
	err := c.do(ctx, http.MethodPost, "v0/tasks", body, &resp)
	return resp, err
}

// GetTask fetches a task by id.
func (c *Client) GetTask(ctx context.Context, id string) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodGet, "v0/tasks/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// ListTasks returns all tasks.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var resp []Task
	err := c.do(ctx, http.MethodGet, "v0/tasks", nil, &resp)
	return resp, err
}

// Generate asks the server to generate a response for a task.
func (c *Client) Generate(ctx context.Context, taskID string) (Response, error) {
	var resp Response
	endpoint := fmt.Sprintf("v0/tasks/%s/generate", url.PathEscape(taskID))
	err := c.do(ctx, http.MethodPost, endpoint, nil, &resp)
	return resp, err
}

// Score asks the server to evaluate a response against a rubric.
func (c *Client) Score(ctx context.Context, responseID, rubricID string) (Review, error) {
	body := map[string]any{}
	if rubricID != "" {
		body["rubric_id"] = rubricID
	}
	var resp Review
	endpoint := fmt.Sprintf("v0/responses/%s/reviews", url.PathEscape(responseID))
	err := c.do(ctx, http.MethodPost, endpoint, body, &resp)
	return resp, err
}

// Events returns recent ledger events, newest first.
func (c *Client) Events(ctx context.Context, limit int) ([]Event, error) {
	endpoint := "v0/ledger"
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	var resp []Event
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
