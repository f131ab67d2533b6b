package llm

import (
	"context"
	"fmt"

	"github.com/PabloGalante/agent-chat/internal/domain"
)

type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) GenerateReply(ctx context.Context, prompt string, convCtx domain.ConversationContext) (string, error) {
	return fmt.Sprintf(
		"I am a helpful assistant. You mentioned '%s'. If you have a specific design task, just ask me to design something!",
		prompt,
	), nil
}
