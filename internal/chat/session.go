// Package chat implements the conversation engine: one session, one transcript,
// at most one request in flight.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/diogo/ideagen/internal/api"
	apierrors "github.com/diogo/ideagen/internal/errors"
	"github.com/diogo/ideagen/internal/models"
)

// Origin tells Send where a prompt came from
type Origin int

const (
	// OriginInput is free text typed into the input box
	OriginInput Origin = iota
	// OriginProfile is the synthesized profile sentence; sending it closes the profile form
	OriginProfile
)

func (o Origin) String() string {
	if o == OriginProfile {
		return "profile"
	}
	return "input"
}

// State is a snapshot of the conversation
type State struct {
	Transcript    []models.ChatEntry
	PendingInput  string
	Busy          bool
	FormSubmitted bool
}

// Phase returns the session phase derived from the snapshot
func (s State) Phase() Phase {
	if s.FormSubmitted {
		return PhaseChatting
	}
	return PhaseCollectingProfile
}

// Phase is the two-state session lifecycle
type Phase int

const (
	PhaseCollectingProfile Phase = iota
	PhaseChatting
)

func (p Phase) String() string {
	if p == PhaseChatting {
		return "chatting"
	}
	return "collecting-profile"
}

// Session owns the conversation state shared by the collector, the engine and the renderer
type Session struct {
	client api.GeminiClientInterface
	model  models.Model
	system string
	logger zerolog.Logger

	mu            sync.Mutex
	transcript    *models.Transcript
	pendingInput  string
	busy          bool
	formSubmitted bool

	// inflight is a single-slot token; holding it is what "busy" means
	inflight chan struct{}

	subsMu  sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithModel overrides the client's default model for this session
func WithModel(model models.Model) Option {
	return func(s *Session) {
		s.model = model
	}
}

// WithSystemInstruction replaces the marketing-expert instruction
func WithSystemInstruction(instruction string) Option {
	return func(s *Session) {
		s.system = instruction
	}
}

// WithoutGreeting starts the transcript empty
func WithoutGreeting() Option {
	return func(s *Session) {
		s.transcript = models.NewTranscript()
	}
}

// NewSession creates a session whose transcript opens with the greeting
func NewSession(client api.GeminiClientInterface, opts ...Option) *Session {
	s := &Session{
		client:     client,
		system:     models.SystemInstruction,
		logger:     zerolog.Nop(),
		transcript: models.NewTranscript(models.BotEntry(models.GreetingText, false)),
		inflight:   make(chan struct{}, 1),
		subs:       make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() State {
	return State{
		Transcript:    s.transcript.Entries(),
		PendingInput:  s.pendingInput,
		Busy:          s.busy,
		FormSubmitted: s.formSubmitted,
	}
}

// Busy reports whether a request is in flight
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// FormSubmitted reports whether the profile has been submitted
func (s *Session) FormSubmitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formSubmitted
}

// SetPendingInput records the text currently in the input box
func (s *Session) SetPendingInput(text string) {
	s.mu.Lock()
	s.pendingInput = text
	s.mu.Unlock()
}

// SubmitInput sends whatever is in the input box
func (s *Session) SubmitInput(ctx context.Context) error {
	s.mu.Lock()
	text := s.pendingInput
	s.mu.Unlock()
	return s.Send(ctx, OriginInput, text)
}

// Send runs one conversation turn. It blocks until the bot entry is appended.
//
// A blank prompt is a no-op. If another turn is in flight Send returns
// ErrBusy and changes nothing. An OriginProfile turn also closes the
// profile form; a second one returns ErrProfileClosed. Failures of the
// model call never escape: they become the fallback bot entry.
func (s *Session) Send(ctx context.Context, origin Origin, prompt string) error {
	text, err := s.begin(origin, prompt)
	if err != nil || text == "" {
		return err
	}
	s.finish(ctx, origin, text)
	return nil
}

// Start is Send without waiting for the reply. When it returns, the user
// entry and the busy flag are already in place.
func (s *Session) Start(ctx context.Context, origin Origin, prompt string) error {
	text, err := s.begin(origin, prompt)
	if err != nil || text == "" {
		return err
	}
	go s.finish(ctx, origin, text)
	return nil
}

// begin takes the in-flight slot and records the user side of a turn
func (s *Session) begin(origin Origin, prompt string) (string, error) {
	text := strings.TrimSpace(prompt)
	if text == "" {
		return "", nil
	}

	select {
	case s.inflight <- struct{}{}:
	default:
		return "", apierrors.ErrBusy
	}

	s.mu.Lock()
	switch origin {
	case OriginProfile:
		if s.formSubmitted {
			s.mu.Unlock()
			<-s.inflight
			return "", apierrors.ErrProfileClosed
		}
		s.formSubmitted = true
		s.transcript.Append(models.UserEntry(text))
	case OriginInput:
		s.transcript.Append(models.UserEntry(text))
		s.pendingInput = ""
	}
	s.busy = true
	state := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(state)

	return text, nil
}

// finish calls the model, appends the reply and frees the in-flight slot
func (s *Session) finish(ctx context.Context, origin Origin, text string) {
	reply := s.generate(ctx, origin, text)

	s.mu.Lock()
	s.busy = false
	s.transcript.Append(reply)
	// released under the lock so an observer that sees busy=false can send
	<-s.inflight
	state := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(state)
}

// generate calls the model and converts any failure into the fallback entry
func (s *Session) generate(ctx context.Context, origin Origin, text string) models.ChatEntry {
	start := time.Now()
	output, err := s.client.GenerateContent(ctx, text, &api.GenerateOptions{
		Model:             s.model,
		SystemInstruction: s.system,
	})
	if err == nil && output.Text() == "" {
		err = apierrors.ErrNoContent
	}

	if err != nil {
		event := s.logger.Error().
			Err(err).
			Str("origin", origin.String()).
			Dur("elapsed", time.Since(start))
		if status := apierrors.GetHTTPStatus(err); status > 0 {
			event = event.Int("status", status)
		}
		event.Msg("Error generating business idea")
		return models.BotEntry(models.FallbackText, false)
	}

	s.logger.Debug().
		Str("origin", origin.String()).
		Str("model_version", output.ModelVersion).
		Int("chars", len(output.Text())).
		Dur("elapsed", time.Since(start)).
		Msg("Reply received")
	return models.BotEntry(output.Text(), true)
}

// Subscribe registers fn to receive a snapshot after every mutation.
// fn runs synchronously on the mutating goroutine and must not call back into the session.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Session) notify(state State) {
	s.subsMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
