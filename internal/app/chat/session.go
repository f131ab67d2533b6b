package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/agent-chat/internal/domain"
	"github.com/PabloGalante/agent-chat/internal/observability"
)

var (
	// ErrBusy is returned by Submit while a reply is still pending.
	ErrBusy = errors.New("a request is already in flight")

	// ErrEmptyInput is returned by Submit for blank text.
	ErrEmptyInput = domain.ErrEmptyInput
)

// FailureContent is the system message appended when an exchange fails.
const FailureContent = "Error: failed to communicate with the AI agent."

type State int

const (
	StateIdle State = iota
	StateAwaitingResponse
)

func (s State) String() string {
	switch s {
	case StateAwaitingResponse:
		return "awaiting_response"
	default:
		return "idle"
	}
}

// Change is delivered to listeners after every state change.
type Change struct {
	State    State
	Message  *domain.Message // the message appended by this change
	Exchange *Exchange       // the exchange that started or resolved
}

// Listener must not block. Listeners see changes in the order they were
// made; a listener may call Submit, and the change that causes is
// delivered after the current one has reached every listener.
type Listener func(Change)

type pendingChange struct {
	change Change
	after  func()
}

// Session is the chat state machine for one running client.
// At most one exchange is outstanding at any time.
type Session struct {
	sc     domain.SessionContext
	client domain.AgentClient
	store  domain.MessageStore

	inFlight atomic.Bool

	// stateMu orders state transitions with the queue of their notifications.
	stateMu    sync.Mutex
	pending    []pendingChange
	delivering bool

	mu        sync.Mutex
	listeners []Listener

	now   func() time.Time
	newID func() domain.MessageID
}

type Option func(*Session)

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func NewSession(sc domain.SessionContext, client domain.AgentClient, store domain.MessageStore, opts ...Option) *Session {
	s := &Session{
		sc:     sc,
		client: client,
		store:  store,
		now:    time.Now,
		newID: func() domain.MessageID {
			return domain.MessageID(uuid.NewString())
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Context() domain.SessionContext {
	return s.sc
}

func (s *Session) State() State {
	if s.inFlight.Load() {
		return StateAwaitingResponse
	}
	return StateIdle
}

// Messages returns the timeline in chronological order.
func (s *Session) Messages() []*domain.Message {
	msgs, err := s.store.GetMessagesBySession(s.sc.ID, 0)
	if err != nil {
		observability.Logger().Error("failed to load messages", "session_id", s.sc.ID, "error", err)
		return nil
	}
	return msgs
}

// OnChange registers a listener for post-update notifications.
func (s *Session) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Submit appends a user message and starts an exchange with the agent.
// Blank text returns ErrEmptyInput and a pending exchange returns ErrBusy;
// neither changes any state.
func (s *Session) Submit(ctx context.Context, text string) (*Exchange, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	log := observability.LoggerFromContext(ctx).With("session_id", s.sc.ID)

	s.stateMu.Lock()
	if !s.inFlight.CompareAndSwap(false, true) {
		s.stateMu.Unlock()
		return nil, ErrBusy
	}

	userMsg := s.newMessage(domain.RoleUser, text, "")
	if err := s.store.AppendMessage(userMsg); err != nil {
		s.inFlight.Store(false)
		s.stateMu.Unlock()
		log.Error("failed to append user message", "error", err)
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	ex := &Exchange{
		UserMessage: userMsg,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	s.enqueue(Change{State: StateAwaitingResponse, Message: userMsg, Exchange: ex}, nil)
	s.stateMu.Unlock()
	s.deliver()

	log.Info("exchange started", "message_id", userMsg.ID)
	go s.run(ctx, ex, text)

	return ex, nil
}

type result struct {
	resp *domain.AgentResponse
	err  error
}

func (s *Session) run(ctx context.Context, ex *Exchange, text string) {
	defer ex.cancel()

	log := observability.LoggerFromContext(ctx).With("session_id", s.sc.ID)

	// Buffered so a completion that loses the race below never blocks.
	results := make(chan result, 1)
	go func() {
		resp, err := s.client.Send(ctx, s.sc, text)
		results <- result{resp: resp, err: err}
	}()

	var r result
	select {
	case r = <-results:
	case <-ctx.Done():
		r = result{err: ctx.Err()}
	}

	var reply *domain.Message
	if r.err != nil || r.resp == nil {
		log.Warn("exchange failed", "error", r.err)
		reply = s.newMessage(domain.RoleSystem, FailureContent, "")
	} else {
		reply = s.newMessage(domain.RoleAgent, r.resp.Message, r.resp.DesignResultURL)
	}

	if err := s.store.AppendMessage(reply); err != nil {
		log.Error("failed to append reply", "error", err)
	}
	ex.reply = reply

	s.stateMu.Lock()
	s.inFlight.Store(false)
	s.enqueue(Change{State: StateIdle, Message: reply, Exchange: ex}, func() { close(ex.done) })
	s.stateMu.Unlock()
	s.deliver()

	log.Info("exchange completed", "role", reply.Role, "has_visual", reply.HasVisual())
}

func (s *Session) newMessage(role domain.Role, content, visual string) *domain.Message {
	return &domain.Message{
		ID:              s.newID(),
		SessionID:       s.sc.ID,
		Role:            role,
		Content:         content,
		VisualOutputURL: visual,
		CreatedAt:       s.now(),
	}
}

// enqueue must be called with stateMu held, in the same critical section
// as the transition it reports. after runs once every listener has seen c.
func (s *Session) enqueue(c Change, after func()) {
	s.pending = append(s.pending, pendingChange{change: c, after: after})
}

// deliver drains the notification queue. Only one goroutine drains at a
// time; others return and leave their changes to it.
func (s *Session) deliver() {
	s.stateMu.Lock()
	if s.delivering {
		s.stateMu.Unlock()
		return
	}
	s.delivering = true

	for len(s.pending) > 0 {
		p := s.pending[0]
		s.pending = s.pending[1:]
		s.stateMu.Unlock()

		s.notify(p.change)
		if p.after != nil {
			p.after()
		}

		s.stateMu.Lock()
	}
	s.delivering = false
	s.stateMu.Unlock()
}

func (s *Session) notify(c Change) {
	s.mu.Lock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(c)
	}
}
