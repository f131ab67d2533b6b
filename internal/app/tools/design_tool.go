package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/PabloGalante/agent-chat/internal/observability"
)

const (
	DefaultDesignBaseURL = "https://image-api.com/v1/design"
	defaultDesignTopic   = "a social media post"
)

// DesignTool stands in for an image generation service. It returns a
// deterministic asset URL per prompt.
type DesignTool struct {
	baseURL string
}

// NewDesignTool creates a DesignTool. An empty baseURL uses DefaultDesignBaseURL.
func NewDesignTool(baseURL string) *DesignTool {
	if baseURL == "" {
		baseURL = DefaultDesignBaseURL
	}
	return &DesignTool{baseURL: strings.TrimRight(baseURL, "/")}
}

func (t *DesignTool) Name() string {
	return "design"
}

// Call expects an input with this shape:
//
//	{ "prompt": "design a poster for the spring fair" }
//
// and returns { "message": "...", "design_result_url": "...", "topic": "..." }.
func (t *DesignTool) Call(
	ctx context.Context,
	tctx ToolContext,
	input map[string]any,
) (map[string]any, error) {
	prompt, _ := input["prompt"].(string)
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("design: missing prompt")
	}

	topic := DesignTopic(prompt)
	url := t.baseURL + "/" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(prompt)).String()

	observability.LoggerFromContext(ctx).Info("design tool generated asset",
		"session_id", tctx.SessionID,
		"topic", topic,
		"design_result_url", url)

	return map[string]any{
		"message": fmt.Sprintf(
			"Design complete! I've created the graphic for '%s'. You can view the full-resolution asset now.",
			topic),
		"design_result_url": url,
		"topic":             topic,
	}, nil
}

// DesignTopic extracts what follows "design a" in the prompt.
func DesignTopic(prompt string) string {
	const marker = "design a"
	idx := strings.Index(strings.ToLower(prompt), marker)
	if idx < 0 {
		return defaultDesignTopic
	}
	topic := strings.TrimSpace(prompt[idx+len(marker):])
	if topic == "" {
		return defaultDesignTopic
	}
	return topic
}
