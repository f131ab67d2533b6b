package agentflow

import (
	"context"

	"github.com/PabloGalante/agent-chat/internal/domain"
)

// ChatAgent answers general messages with the LLM.
type ChatAgent struct {
	llm domain.LLMClient
}

func NewChatAgent(llm domain.LLMClient) *ChatAgent {
	return &ChatAgent{llm: llm}
}

func (a *ChatAgent) Name() string {
	return "chat"
}

func (a *ChatAgent) Run(ctx context.Context, in AgentInput) (AgentOutput, error) {
	reply, err := a.llm.GenerateReply(ctx, in.UserMessage, in.ConvCtx)
	if err != nil {
		return AgentOutput{}, err
	}

	return AgentOutput{Reply: reply}, nil
}
