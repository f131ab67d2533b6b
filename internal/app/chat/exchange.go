package chat

import (
	"context"

	"github.com/PabloGalante/agent-chat/internal/domain"
)

// Exchange is one in-flight request to the agent. It can be told to stop;
// whatever the agent returns after that is discarded.
type Exchange struct {
	UserMessage *domain.Message

	cancel context.CancelFunc
	done   chan struct{}
	reply  *domain.Message
}

// Cancel aborts the request. The exchange still resolves with a system message.
func (e *Exchange) Cancel() {
	e.cancel()
}

// Done is closed once the reply has been appended and the session is idle.
func (e *Exchange) Done() <-chan struct{} {
	return e.done
}

// Wait blocks until the exchange resolves and returns the agent or system reply.
func (e *Exchange) Wait() *domain.Message {
	<-e.done
	return e.reply
}
