package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/educhat-ai/educhat/internal/domain"
	"github.com/educhat-ai/educhat/internal/store"
)

const defaultSaveDebounce = time.Second

// Fallback texts shown in place of an assistant reply when the gateway
// call fails. Classification mirrors the server side so the user sees
// the same guidance regardless of where the failure surfaced.
const (
	errTextAuth      = "Invalid Groq API key. Please check your configuration."
	errTextRateLimit = "Rate limit reached. Please try again in a moment."
	errTextModel     = "Model not available. Please try again."
	errTextGeneric   = "Sorry, I encountered an error. Please try again."
)

// Orchestrator drives the chat lifecycle for one user: it owns the
// active session, submits conversations to the gateway, folds streamed
// chunks back into the assistant placeholder and autosaves through the
// session store.
//
// Every state-changing operation bumps an internal request token. An
// in-flight gateway call captures the token at submit time and may only
// mutate the message list while its token is still current, so a newer
// submit or a session switch mid-stream orphans the old request instead
// of letting it write into the wrong conversation.
type Orchestrator struct {
	mu      sync.Mutex
	gateway Gateway
	store   *store.SessionStore
	log     zerolog.Logger

	active  domain.ChatSession
	token   uint64
	loading bool

	useWebSearch bool

	saveDebounce time.Duration
	saveTimer    *time.Timer
	dirty        bool

	onUpdate func(domain.ChatSession)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSaveDebounce overrides the autosave debounce window.
func WithSaveDebounce(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.saveDebounce = d
	}
}

// WithUpdateFunc registers a callback invoked with a snapshot of the
// active session after every visible state change. The callback runs
// with internal locks held and must not call back into the orchestrator.
func WithUpdateFunc(fn func(domain.ChatSession)) Option {
	return func(o *Orchestrator) {
		o.onUpdate = fn
	}
}

// NewOrchestrator creates an orchestrator with a fresh empty session.
func NewOrchestrator(gateway Gateway, sessions *store.SessionStore, log zerolog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gateway:      gateway,
		store:        sessions,
		log:          log,
		saveDebounce: defaultSaveDebounce,
		onUpdate:     func(domain.ChatSession) {},
	}
	for _, opt := range opts {
		opt(o)
	}
	o.active = o.freshSession()
	return o
}

func (o *Orchestrator) freshSession() domain.ChatSession {
	now := time.Now()
	return domain.ChatSession{
		ID:        uuid.NewString(),
		Title:     "New Chat",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ActiveSession returns a snapshot of the current session.
func (o *Orchestrator) ActiveSession() domain.ChatSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	return cloneSession(o.active)
}

// Loading reports whether a gateway request is in flight.
func (o *Orchestrator) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loading
}

// Sessions lists the persisted sessions, most recent first.
func (o *Orchestrator) Sessions() []domain.ChatSession {
	return o.store.Sessions()
}

// SetWebSearch toggles web search enrichment for subsequent submits.
func (o *Orchestrator) SetWebSearch(enabled bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.useWebSearch = enabled
}

// WebSearch reports whether web search enrichment is on.
func (o *Orchestrator) WebSearch() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.useWebSearch
}

// NewChat saves the current session and replaces it with a fresh empty
// one. Any in-flight request is invalidated.
func (o *Orchestrator) NewChat(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.flushLocked(ctx); err != nil {
		return err
	}
	o.token++
	o.loading = false
	o.active = o.freshSession()
	o.onUpdate(cloneSession(o.active))
	return nil
}

// SelectChat saves the current session and switches to the stored
// session with the given id. Unknown ids leave the state untouched.
func (o *Orchestrator) SelectChat(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	session, ok := o.store.Get(id)
	if !ok {
		return nil
	}
	if err := o.flushLocked(ctx); err != nil {
		return err
	}
	o.token++
	o.loading = false
	o.active = session
	o.onUpdate(cloneSession(o.active))
	return nil
}

// DeleteChat removes a stored session. Deleting the active session also
// resets to a fresh one, invalidating any in-flight request.
func (o *Orchestrator) DeleteChat(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.store.Delete(ctx, id); err != nil {
		return err
	}
	if id == o.active.ID {
		o.token++
		o.loading = false
		o.dirty = false
		if o.saveTimer != nil {
			o.saveTimer.Stop()
			o.saveTimer = nil
		}
		o.active = o.freshSession()
	}
	o.onUpdate(cloneSession(o.active))
	return nil
}

// Flush persists any pending autosave immediately.
func (o *Orchestrator) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.flushLocked(ctx)
}

// Submit sends a user message to the gateway and folds the reply into
// the active session. Empty input with no images is a no-op. The call
// blocks until the reply is complete; streamed progress is observable
// through the update callback.
func (o *Orchestrator) Submit(ctx context.Context, text string, images []string) error {
	text = strings.TrimSpace(text)
	if text == "" && len(images) == 0 {
		return nil
	}

	o.mu.Lock()
	o.dropEmptyPlaceholdersLocked()
	now := time.Now()
	userMsg := domain.Message{
		ID:        uuid.NewString(),
		Role:      domain.RoleUser,
		Content:   text,
		Images:    images,
		Timestamp: now,
	}
	if len(o.active.Messages) == 0 {
		o.active.Title = domain.SessionTitle(text)
	}
	placeholder := domain.Message{
		ID:        uuid.NewString(),
		Role:      domain.RoleAssistant,
		Timestamp: now,
	}
	o.active.Messages = append(o.active.Messages, userMsg, placeholder)
	o.touchLocked()

	req := domain.ChatRequest{
		Messages:     historySnapshot(o.active.Messages[:len(o.active.Messages)-1]),
		HasImages:    len(images) > 0,
		UseWebSearch: o.useWebSearch,
	}
	o.token++
	token := o.token
	placeholderID := placeholder.ID
	o.loading = true
	o.scheduleSaveLocked()
	o.onUpdate(cloneSession(o.active))
	o.mu.Unlock()

	decoder := NewStreamDecoder()
	completion, err := o.gateway.Chat(ctx, req, func(chunk []byte) {
		content := decoder.Feed(chunk)
		o.setAssistantContent(token, placeholderID, content, false)
	})

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.token != token {
		// Session changed under us; the reply belongs nowhere now.
		o.log.Debug().Msg("discarding stale gateway reply")
		return nil
	}
	o.loading = false

	switch {
	case err != nil:
		o.log.Warn().Err(err).Msg("gateway request failed")
		o.setAssistantContentLocked(placeholderID, classifyGatewayError(err), true)
	case completion.Streamed:
		o.setAssistantContentLocked(placeholderID, decoder.Flush(), false)
	default:
		o.setAssistantContentLocked(placeholderID, completion.Content, false)
	}
	o.touchLocked()
	o.scheduleSaveLocked()
	o.onUpdate(cloneSession(o.active))
	return nil
}

func (o *Orchestrator) setAssistantContent(token uint64, id, content string, failed bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.token != token {
		return
	}
	o.setAssistantContentLocked(id, content, failed)
	// Each chunk resets the debounce window, so a slow stream produces
	// one save after the burst rather than partial saves during it.
	o.scheduleSaveLocked()
	o.onUpdate(cloneSession(o.active))
}

func (o *Orchestrator) setAssistantContentLocked(id, content string, failed bool) {
	for i := range o.active.Messages {
		if o.active.Messages[i].ID == id {
			o.active.Messages[i].Content = content
			o.active.Messages[i].Error = failed
			return
		}
	}
}

// dropEmptyPlaceholdersLocked removes reply slots left blank by
// superseded requests, so no conversation keeps a permanently empty
// assistant turn. The token bump in the same critical section makes
// the old request stale before it can write again.
func (o *Orchestrator) dropEmptyPlaceholdersLocked() {
	kept := o.active.Messages[:0]
	for _, m := range o.active.Messages {
		if m.Role == domain.RoleAssistant && m.Content == "" {
			continue
		}
		kept = append(kept, m)
	}
	o.active.Messages = kept
}

func (o *Orchestrator) touchLocked() {
	o.active.UpdatedAt = time.Now()
	o.active.Metadata.MessageCount = len(o.active.Messages)
}

// scheduleSaveLocked arms the debounced autosave. Bursts of updates
// within the debounce window collapse into a single write.
func (o *Orchestrator) scheduleSaveLocked() {
	o.dirty = true
	if o.saveTimer != nil {
		o.saveTimer.Stop()
	}
	o.saveTimer = time.AfterFunc(o.saveDebounce, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if !o.dirty {
			return
		}
		if err := o.persistLocked(context.Background()); err != nil {
			o.log.Error().Err(err).Msg("autosave failed")
		}
	})
}

func (o *Orchestrator) flushLocked(ctx context.Context) error {
	if o.saveTimer != nil {
		o.saveTimer.Stop()
		o.saveTimer = nil
	}
	if !o.dirty {
		return nil
	}
	return o.persistLocked(ctx)
}

func (o *Orchestrator) persistLocked(ctx context.Context) error {
	if len(o.active.Messages) == 0 {
		o.dirty = false
		return nil
	}
	if err := o.store.Save(ctx, cloneSession(o.active)); err != nil {
		return err
	}
	o.dirty = false
	return nil
}

// classifyGatewayError maps a gateway failure to the text shown in
// place of the assistant reply.
func classifyGatewayError(err error) string {
	var gwErr *GatewayError
	status := 0
	msg := strings.ToLower(err.Error())
	if errors.As(err, &gwErr) {
		status = gwErr.Status
		msg = strings.ToLower(gwErr.Message)
	}

	switch {
	case status == 401 || strings.Contains(msg, "api key"):
		return errTextAuth
	case status == 429 || strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota"):
		return errTextRateLimit
	case status == 400 || strings.Contains(msg, "model"):
		return errTextModel
	default:
		return errTextGeneric
	}
}

func historySnapshot(messages []domain.Message) []domain.Message {
	out := make([]domain.Message, len(messages))
	copy(out, messages)
	return out
}

func cloneSession(s domain.ChatSession) domain.ChatSession {
	out := s
	out.Messages = historySnapshot(s.Messages)
	return out
}
