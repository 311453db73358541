// Package apiclient talks to the student assignments API: one read of an
// assignment list and one write withdrawing a submission.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// ErrMalformedResponse is returned when the body is not a valid API envelope.
var ErrMalformedResponse = errors.New("malformed api response")

const defaultTimeout = 10 * time.Second

// Client is safe for concurrent use. ForToken derives a copy bound to a user token.
type Client struct {
	baseURL     string
	timeout     time.Duration
	token       string
	correlation func(context.Context) string
	logger      zerolog.Logger
	schemas     schemas
}

// Option customises a Client.
type Option func(*Client)

// WithTimeout bounds each request. The context deadline wins when it is sooner.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithToken sends the token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With().Str("component", "api_client").Logger()
	}
}

// WithCorrelation forwards the correlation id found in the request context.
func WithCorrelation(fn func(context.Context) string) Option {
	return func(c *Client) {
		c.correlation = fn
	}
}

// New builds a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("api base url must not be empty")
	}

	compiled, err := compileSchemas()
	if err != nil {
		return nil, err
	}

	client := &Client{
		baseURL: baseURL,
		timeout: defaultTimeout,
		logger:  zerolog.Nop(),
		schemas: compiled,
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// ForToken returns a copy of the client that authenticates with token.
func (c *Client) ForToken(token string) *Client {
	clone := *c
	clone.token = strings.TrimSpace(token)
	return &clone
}

type listEnvelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    []Assignment `json:"data"`
}

// FetchAssignments reads the assignment collection for the list type.
func (c *Client) FetchAssignments(ctx context.Context, listType ListType) ([]Assignment, error) {
	status, body, err := c.do(ctx, fiber.MethodGet, listType.Path())
	if err != nil {
		return nil, fmt.Errorf("fetch %s assignments: %w", strings.ToLower(string(listType)), err)
	}

	if err := validate(c.schemas.assignmentList, body); err != nil {
		c.logger.Warn().Err(err).Int("status", status).Str("list_type", string(listType)).Msg("unexpected assignment list payload")
		return nil, err
	}

	var envelope listEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !envelope.Success || status >= fiber.StatusBadRequest {
		return nil, &APIError{StatusCode: status, Message: envelope.Message}
	}

	if envelope.Data == nil {
		envelope.Data = []Assignment{}
	}
	return envelope.Data, nil
}

// Unsubmit withdraws the caller's submission. A server answer, successful or not,
// is returned as a Result; err is reserved for transport and decoding failures.
func (c *Client) Unsubmit(ctx context.Context, assignmentID string) (Result, error) {
	status, body, err := c.do(ctx, fiber.MethodPut, UnsubmitPath(assignmentID))
	if err != nil {
		return Result{}, fmt.Errorf("unsubmit assignment: %w", err)
	}

	if err := validate(c.schemas.envelope, body); err != nil {
		c.logger.Warn().Err(err).Int("status", status).Str("assignment_id", assignmentID).Msg("unexpected unsubmit payload")
		return Result{}, err
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if status >= fiber.StatusBadRequest {
		result.Success = false
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, method, path string) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, nil, context.DeadlineExceeded
		}
		if remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if c.token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	if c.correlation != nil {
		if id := c.correlation(ctx); id != "" {
			req.Header.Set("X-Correlation-ID", id)
		}
	}
	agent.Timeout(timeout)

	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return 0, nil, err
	}

	start := time.Now()
	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return 0, nil, errors.Join(errs...)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Msg("api request completed")

	return status, body, nil
}
