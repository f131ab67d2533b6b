package agentflow

import (
	"context"
	"fmt"

	"github.com/PabloGalante/agent-chat/internal/app/tools"
	"github.com/PabloGalante/agent-chat/internal/observability"
)

// DesignAgent turns a design request into a call to the design tool.
type DesignAgent struct {
	tool tools.Tool
}

func NewDesignAgent(tool tools.Tool) *DesignAgent {
	return &DesignAgent{tool: tool}
}

func (a *DesignAgent) Name() string {
	return "design"
}

func (a *DesignAgent) Run(ctx context.Context, in AgentInput) (AgentOutput, error) {
	log := observability.LoggerFromContext(ctx).With("agent", a.Name(), "tool", a.tool.Name())

	tctx := tools.ToolContext{
		SessionID: string(in.ConvCtx.SessionID),
	}

	out, err := a.tool.Call(ctx, tctx, map[string]any{"prompt": in.UserMessage})
	if err != nil {
		log.Error("design tool error", "error", err)
		return AgentOutput{}, err
	}

	msg, _ := out["message"].(string)
	url, _ := out["design_result_url"].(string)
	if msg == "" {
		return AgentOutput{}, fmt.Errorf("design tool returned no message")
	}

	return AgentOutput{Reply: msg, DesignResultURL: url}, nil
}
