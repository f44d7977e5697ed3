package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"genie/internal/logger"
	"genie/internal/metrics"
	"genie/internal/model"
)

// DefaultGreeting seeds every new or reset transcript
const DefaultGreeting = "Hi, I'm your property Genie. Tell me what you're looking for: a home to buy or rent, " +
	"land, an investment or a construction project."

// EngineOptions tunes pacing and the seed greeting
type EngineOptions struct {
	ReplyDelay   time.Duration // before the first AI message of a turn
	StaggerDelay time.Duration // between subsequent AI messages
	Greeting     string
}

// emission is one scheduled AI message
type emission struct {
	delay   time.Duration
	message model.Message
}

// Turn tracks the scheduled emissions of one submission
type Turn struct {
	ID          string
	UserMessage model.Message

	done       chan struct{}
	cancel     chan struct{}
	cancelOnce sync.Once

	mu        sync.Mutex
	messages  []model.Message
	cancelled bool
}

func newTurn(id string, user model.Message) *Turn {
	return &Turn{
		ID:          id,
		UserMessage: user,
		done:        make(chan struct{}),
		cancel:      make(chan struct{}),
	}
}

// Done is closed once every emission was appended or the turn was cancelled
func (t *Turn) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the turn finishes or ctx is done
func (t *Turn) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Messages returns the AI messages emitted so far, in order
func (t *Turn) Messages() []model.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Cancelled reports whether the turn was aborted by a reset
func (t *Turn) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

func (t *Turn) record(msg model.Message) {
	t.mu.Lock()
	t.messages = append(t.messages, msg)
	t.mu.Unlock()
}

func (t *Turn) abort() {
	t.cancelOnce.Do(func() {
		t.mu.Lock()
		t.cancelled = true
		t.mu.Unlock()
		close(t.cancel)
	})
}

// ConversationEngine runs the per-session dialogue loop: mode selection, slot
// extraction, clarification and result composition. All state is guarded by mu;
// AI messages are appended by a per-turn runner goroutine in scheduled order.
type ConversationEngine struct {
	extractor *SlotExtractor
	policy    *ClarificationPolicy
	composer  *ResultComposer
	logger    logger.Logger
	opts      EngineOptions

	now   func() time.Time
	newID func() string

	mu         sync.Mutex
	mode       model.Mode
	state      model.ConversationState
	pending    *model.PendingQuestion
	transcript []model.Message
	current    *Turn
	generation uint64

	subMu       sync.Mutex
	subscribers map[int]chan model.Event
	nextSubID   int
}

// NewConversationEngine creates an engine in DISCOVERY mode with the seed greeting
func NewConversationEngine(
	extractor *SlotExtractor,
	policy *ClarificationPolicy,
	composer *ResultComposer,
	opts EngineOptions,
	log logger.Logger,
) *ConversationEngine {
	if opts.Greeting == "" {
		opts.Greeting = DefaultGreeting
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	e := &ConversationEngine{
		extractor:   extractor,
		policy:      policy,
		composer:    composer,
		logger:      log,
		opts:        opts,
		now:         time.Now,
		newID:       uuid.NewString,
		subscribers: make(map[int]chan model.Event),
	}
	e.resetLocked()
	return e
}

// Submit processes utterance as one turn. The user message is appended
// immediately; AI replies are appended by the returned turn as their delays
// elapse. Submitting while a turn is still emitting returns ErrEngineBusy.
func (e *ConversationEngine) Submit(ctx context.Context, utterance string) (*Turn, error) {
	text := strings.TrimSpace(utterance)
	if text == "" {
		return nil, ErrEmptyUtterance
	}

	e.mu.Lock()
	if e.current != nil {
		e.mu.Unlock()
		return nil, ErrEngineBusy
	}

	userMsg := e.stamp(model.Message{
		Role: model.RoleUser,
		Kind: model.MessageKindText,
		Mode: e.mode,
		Text: text,
	})
	e.transcript = append(e.transcript, userMsg)

	turn := newTurn(e.newID(), userMsg)
	e.current = turn
	gen := e.generation
	e.broadcast(model.Event{Type: model.EventMessage, TurnID: turn.ID, Message: &userMsg})

	plan := e.plan(text)
	e.mu.Unlock()

	// The catalog may be remote, so composition runs without holding mu.
	// The engine stays busy meanwhile; a reset bumps the generation.
	if plan.compose {
		composition := e.composer.Compose(ctx, plan.state, plan.mode, text)
		plan.drafts = append(plan.drafts, composition.Messages...)
		plan.question = composition.Question
		plan.results = composition.Results
	}

	e.mu.Lock()
	emissions := e.schedule(plan.drafts)
	if e.generation == gen {
		e.finish(turn.ID, plan)
		if len(emissions) > 0 {
			e.broadcast(model.Event{Type: model.EventTyping, TurnID: turn.ID})
		}
	}
	e.mu.Unlock()

	go e.run(turn, gen, emissions)
	return turn, nil
}

// turnPlan is the outcome of the locked part of a turn
type turnPlan struct {
	drafts   []model.Message
	compose  bool
	mode     model.Mode
	state    model.ConversationState
	question *model.PendingQuestion
	rule     string
	action   ActionKind
	results  int
}

// plan runs mode selection, slot extraction and the clarification policy and
// returns the unstamped AI replies. Caller holds mu.
func (e *ConversationEngine) plan(text string) turnPlan {
	if selected, ok := e.policy.ResolvePending(e.pending, text); ok {
		kind := e.pending.Kind
		e.pending = nil
		e.state = ApplySelection(kind, selected, e.state)
		return turnPlan{
			drafts: []model.Message{e.draft(model.MessageKindText, AcknowledgePrompt(selected, e.state.Location), nil)},
			mode:   e.mode,
			state:  e.state,
			rule:   "affirmation",
			action: ActionAnswerPending,
		}
	}
	e.pending = nil

	var drafts []model.Message

	if next := SelectMode(text, e.mode); next != e.mode {
		metrics.ModeSwitches.WithLabelValues(string(e.mode), string(next)).Inc()
		e.logger.Debug("mode switched", map[string]interface{}{"from": e.mode, "to": next})
		e.mode = next
		drafts = append(drafts, e.draft(model.MessageKindText, ModeAnnouncement(next), nil))
	}

	e.state = e.extractor.Extract(text, e.state)

	decision := e.policy.Decide(e.mode, e.state, nil, text)
	for _, note := range decision.Notes {
		drafts = append(drafts, e.draft(model.MessageKindText, note, nil))
	}

	p := turnPlan{
		mode:   e.mode,
		state:  e.state,
		rule:   decision.Rule,
		action: decision.Action.Kind,
	}

	if decision.Action.Kind != ActionAskClarification {
		p.drafts = drafts
		p.compose = true
		return p
	}

	action := decision.Action
	if len(action.Options) > 0 {
		options := append([]string(nil), action.Options...)
		drafts = append(drafts, e.draft(model.MessageKindOptions, action.Prompt, options))
		p.question = &model.PendingQuestion{
			Kind:    action.Question,
			Options: options,
			Context: e.state,
		}
	} else {
		metrics.Clarifications.WithLabelValues(string(action.Question)).Inc()
		drafts = append(drafts, e.draft(model.MessageKindText, action.Prompt, nil))
	}
	p.drafts = drafts
	return p
}

// finish records the turn's pending question and metrics. Caller holds mu.
func (e *ConversationEngine) finish(turnID string, p turnPlan) {
	if p.question != nil {
		metrics.Clarifications.WithLabelValues(string(p.question.Kind)).Inc()
		e.pending = p.question
	}

	metrics.TurnsTotal.WithLabelValues(string(p.mode)).Inc()
	e.logger.Info("turn processed", map[string]interface{}{
		"turnId":   turnID,
		"mode":     p.mode,
		"rule":     p.rule,
		"action":   p.action.String(),
		"location": p.state.Location,
		"results":  p.results,
		"replies":  len(p.drafts),
	})
}

func (e *ConversationEngine) draft(kind model.MessageKind, text string, options []string) model.Message {
	return model.Message{
		Role:    model.RoleAI,
		Kind:    kind,
		Mode:    e.mode,
		Text:    text,
		Options: options,
	}
}

func (e *ConversationEngine) schedule(drafts []model.Message) []emission {
	emissions := make([]emission, 0, len(drafts))
	for i, msg := range drafts {
		delay := e.opts.StaggerDelay
		if i == 0 {
			delay = e.opts.ReplyDelay
		}
		emissions = append(emissions, emission{delay: delay, message: msg})
	}
	return emissions
}

// run appends emissions in order. A reset bumps the generation and closes the
// turn's cancel channel, after which nothing more is appended.
func (e *ConversationEngine) run(turn *Turn, gen uint64, emissions []emission) {
	defer close(turn.done)

	for _, em := range emissions {
		if !e.wait(turn, em.delay) {
			return
		}

		e.mu.Lock()
		if e.generation != gen {
			e.mu.Unlock()
			return
		}
		msg := e.stamp(em.message)
		e.transcript = append(e.transcript, msg)
		turn.record(msg)
		e.broadcast(model.Event{Type: model.EventMessage, TurnID: turn.ID, Message: &msg})
		e.mu.Unlock()
	}

	e.mu.Lock()
	if e.generation == gen && e.current == turn {
		e.current = nil
		e.broadcast(model.Event{Type: model.EventDone, TurnID: turn.ID})
	}
	e.mu.Unlock()
}

func (e *ConversationEngine) wait(turn *Turn, delay time.Duration) bool {
	if delay <= 0 {
		select {
		case <-turn.cancel:
			return false
		default:
			return true
		}
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-turn.cancel:
		return false
	}
}

func (e *ConversationEngine) stamp(msg model.Message) model.Message {
	msg.ID = e.newID()
	msg.CreatedAt = e.now()
	return msg
}

// Reset cancels any in-flight turn and returns the conversation to its initial state
func (e *ConversationEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current != nil {
		e.current.abort()
		e.logger.Info("in-flight turn cancelled by reset", map[string]interface{}{"turnId": e.current.ID})
	}
	e.resetLocked()
	e.broadcast(model.Event{Type: model.EventReset})
}

func (e *ConversationEngine) resetLocked() {
	e.generation++
	e.current = nil
	e.mode = model.ModeDiscovery
	e.state = model.ConversationState{}
	e.pending = nil
	e.transcript = []model.Message{e.stamp(model.Message{
		Role: model.RoleAI,
		Kind: model.MessageKindText,
		Mode: model.ModeDiscovery,
		Text: e.opts.Greeting,
	})}
}

// Snapshot returns a copy of the current mode, slots, pending question and transcript
func (e *ConversationEngine) Snapshot() model.ConversationSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot := model.ConversationSnapshot{
		Mode:       e.mode,
		State:      e.state,
		Transcript: append([]model.Message(nil), e.transcript...),
		Busy:       e.current != nil,
	}
	if e.pending != nil {
		pending := *e.pending
		pending.Options = append([]string(nil), e.pending.Options...)
		snapshot.Pending = &pending
	}
	return snapshot
}

// Mode returns the active mode
func (e *ConversationEngine) Mode() model.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Busy reports whether a turn is still emitting
func (e *ConversationEngine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != nil
}

// Subscribe registers for session events. Slow subscribers miss events rather
// than block the engine. cancel unregisters and closes the channel.
func (e *ConversationEngine) Subscribe(buffer int) (<-chan model.Event, func()) {
	if buffer <= 0 {
		buffer = 32
	}
	ch := make(chan model.Event, buffer)

	e.subMu.Lock()
	id := e.nextSubID
	e.nextSubID++
	e.subscribers[id] = ch
	e.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			e.subMu.Lock()
			delete(e.subscribers, id)
			close(ch)
			e.subMu.Unlock()
		})
	}
	return ch, cancel
}

// Notify pushes a fire-and-forget toast to subscribers
func (e *ConversationEngine) Notify(text string) {
	e.broadcast(model.Event{Type: model.EventToast, Text: text})
}

func (e *ConversationEngine) broadcast(event model.Event) {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	for id, ch := range e.subscribers {
		select {
		case ch <- event:
		default:
			e.logger.Warn("subscriber buffer full, dropping event", map[string]interface{}{
				"subscriber": id,
				"type":       event.Type,
			})
		}
	}
}
