package agentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PabloGalante/agent-chat/internal/domain"
	"github.com/PabloGalante/agent-chat/internal/observability"
)

const (
	DefaultEndpoint = "http://localhost:8000/chat"
	DefaultTimeout  = 10 * time.Second

	maxResponseBytes = 1 << 20
)

// DefaultDesignFields lists the wire names tried for the design result URL.
var DefaultDesignFields = []string{"design_result_url"}

type Options struct {
	Endpoint string
	Timeout  time.Duration

	// DesignFields is tried in order; the first present, non-null field wins.
	DesignFields []string

	HTTPClient *http.Client
}

// Client is the HTTP implementation of domain.AgentClient.
type Client struct {
	endpoint     string
	timeout      time.Duration
	designFields []string
	http         *http.Client
}

func NewClient(opts Options) *Client {
	c := &Client{
		endpoint:     opts.Endpoint,
		timeout:      opts.Timeout,
		designFields: opts.DesignFields,
		http:         opts.HTTPClient,
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if len(c.designFields) == 0 {
		c.designFields = DefaultDesignFields
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c
}

type chatRequest struct {
	UserInput string `json:"user_input"`
	SessionID string `json:"session_id"`
}

// Send posts the trimmed text to the agent and maps the reply.
// Every failure after validation is reported as domain.ErrAgentCommunication;
// the cause only goes to the log.
func (c *Client) Send(ctx context.Context, sess domain.SessionContext, text string) (*domain.AgentResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyInput
	}

	log := observability.LoggerFromContext(ctx).With(
		"session_id", sess.ID,
		"endpoint", c.endpoint,
	)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.do(ctx, sess, text)
	if err != nil {
		log.Error("error connecting to agent backend",
			"error", err,
			"timed_out", errors.Is(err, context.DeadlineExceeded),
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, domain.ErrAgentCommunication
	}

	log.Debug("agent replied",
		"elapsed_ms", time.Since(start).Milliseconds(),
		"has_visual", resp.DesignResultURL != "")
	return resp, nil
}

func (c *Client) do(ctx context.Context, sess domain.SessionContext, text string) (*domain.AgentResponse, error) {
	body, err := json.Marshal(chatRequest{
		UserInput: text,
		SessionID: string(sess.ID),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP error, status %d: %s", res.StatusCode, snippet(data))
	}

	return c.decode(data)
}

// decode maps the snake_case wire reply onto domain.AgentResponse.
func (c *Client) decode(data []byte) (*domain.AgentResponse, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	raw, ok := fields["message"]
	if !ok {
		return nil, errors.New("response has no message field")
	}
	var out domain.AgentResponse
	if err := json.Unmarshal(raw, &out.Message); err != nil {
		return nil, fmt.Errorf("decoding message field: %w", err)
	}

	for _, name := range c.designFields {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var url *string
		if err := json.Unmarshal(raw, &url); err != nil {
			return nil, fmt.Errorf("decoding %s field: %w", name, err)
		}
		if url != nil {
			out.DesignResultURL = *url
			break
		}
	}

	return &out, nil
}

func snippet(b []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
