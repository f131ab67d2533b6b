package agentflow

import (
	"context"
	"fmt"
	"time"

	"github.com/PabloGalante/agent-chat/internal/app/tools"
	"github.com/PabloGalante/agent-chat/internal/domain"
	"github.com/PabloGalante/agent-chat/internal/observability"
)

type AgentInput struct {
	UserMessage string
	ConvCtx     domain.ConversationContext
}

type AgentOutput struct {
	Reply           string
	DesignResultURL string
}

// Agent handles the user message for one intent.
type Agent interface {
	Name() string
	Run(ctx context.Context, in AgentInput) (AgentOutput, error)
}

// Orchestrator routes each message to the agent registered for its intent.
type Orchestrator struct {
	agents   map[Intent]Agent
	fallback Agent
}

// NewDefaultOrchestrator sends design requests to the design tool and
// everything else to the LLM.
func NewDefaultOrchestrator(llm domain.LLMClient, designTool tools.Tool) *Orchestrator {
	chat := NewChatAgent(llm)
	o := &Orchestrator{
		agents:   map[Intent]Agent{IntentChat: chat},
		fallback: chat,
	}
	if designTool != nil {
		o.agents[IntentDesign] = NewDesignAgent(designTool)
	}
	return o
}

// Run detects the intent and executes the matching agent.
func (o *Orchestrator) Run(
	ctx context.Context,
	userMessage string,
	convCtx domain.ConversationContext,
) (AgentOutput, error) {
	intent := DetectIntent(userMessage)

	ag, ok := o.agents[intent]
	if !ok {
		ag = o.fallback
	}
	if ag == nil {
		return AgentOutput{}, fmt.Errorf("no agent configured for intent %q", intent)
	}

	log := observability.LoggerFromContext(ctx).With(
		"session_id", convCtx.SessionID,
		"intent", intent,
		"agent", ag.Name(),
	)

	start := time.Now()
	log.Info("agent run start")

	out, err := ag.Run(ctx, AgentInput{UserMessage: userMessage, ConvCtx: convCtx})
	if err != nil {
		log.Error("agent failed", "error", err)
		return AgentOutput{}, fmt.Errorf("agent %s failed: %w", ag.Name(), err)
	}

	log.Info("agent run end", "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}
