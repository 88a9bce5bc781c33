package services

import (
	"boardroom/contract"
	"boardroom/domain"
	"boardroom/domain/event"
	"boardroom/errors"
	"boardroom/observability"
	"boardroom/prompts"
	"boardroom/relay"
	"boardroom/runtime"
	"boardroom/search"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

const (
	ConfigMissingNotice = "Error: Azure OpenAI configuration is missing"
	searchFailure       = "An error occurred during search processing: %v"
	retryNotice         = "\n\nError: %s\n\nPlease modify the search criteria and try again."
	chatFailure         = "\n\nError: %v"
)

// StreamRequest is the body shared by every streaming endpoint.
type StreamRequest struct {
	Prompt    string `json:"prompt" validate:"required,max=32000"`
	Model     string `json:"model" validate:"max=64"`
	Tone      string `json:"tone" validate:"max=32"`
	SessionID string `json:"session_id" validate:"max=256"`
}

type IStreamService interface {
	Board(ctx context.Context, request StreamRequest, w relay.LineWriter) error
	Debate(ctx context.Context, request StreamRequest, w relay.LineWriter) error
	Chat(ctx context.Context, request StreamRequest, w io.Writer) error
	Guideline(ctx context.Context, request StreamRequest, w io.Writer) error
}

type StreamConfig struct {
	MaxRounds int
	MaxCalls  int
	SearchTop int
	Language  string
}

// StreamService wires one orchestrator per request.
// Validation failures are returned before anything is written.
type StreamService struct {
	log       *slog.Logger
	provider  contract.GeneratorProvider
	searcher  contract.Searcher
	sessions  contract.SessionStore
	stats     *observability.StreamStats
	validate  *validator.Validate
	cfg       StreamConfig
	timestamp func() time.Time
}

func NewStreamService(
	log *slog.Logger,
	provider contract.GeneratorProvider,
	searcher contract.Searcher,
	sessions contract.SessionStore,
	stats *observability.StreamStats,
	cfg StreamConfig,
) *StreamService {
	if cfg.SearchTop <= 0 {
		cfg.SearchTop = 3
	}
	return &StreamService{
		log:       log,
		provider:  provider,
		searcher:  searcher,
		sessions:  sessions,
		stats:     stats,
		validate:  validator.New(),
		cfg:       cfg,
		timestamp: func() time.Time { return time.Now().UTC() },
	}
}

func (s *StreamService) Board(ctx context.Context, request StreamRequest, w relay.LineWriter) (err error) {
	if err = s.check(request); err != nil {
		return err
	}
	log := s.log.With("stream", "board", "model", request.Model)
	end := s.stats.Begin()
	defer func() { end(err) }()

	transcript := newTranscript(s.stats.Observe(relay.New(w)), false)
	generator, err := s.provider.GeneratorFor(request.Model)
	if err != nil {
		return reject(transcript, err)
	}

	participants := s.localize(prompts.Board(domain.ParseTone(request.Tone)), request.Prompt)
	roster, err := domain.NewRoster(participants...)
	if err != nil {
		return reject(transcript, err)
	}
	orchestrator := runtime.NewConversationOrchestrator(log, generator, transcript, roster, runtime.ConversationConfig{
		MaxRounds:        s.cfg.MaxRounds,
		MaxCalls:         s.cfg.MaxCalls,
		CompletionMarker: prompts.CompletionMarker,
	})

	start := time.Now()
	s.remember(request, "", request.Prompt, true)
	err = orchestrator.Run(ctx, request.Prompt)
	s.keep(request, transcript)
	log.Info("Board meeting finished", "elapsed", time.Since(start).String(), "turns", len(transcript.segments))
	return err
}

func (s *StreamService) Debate(ctx context.Context, request StreamRequest, w relay.LineWriter) (err error) {
	if err = s.check(request); err != nil {
		return err
	}
	log := s.log.With("stream", "debate", "model", request.Model)
	end := s.stats.Begin()
	defer func() { end(err) }()

	transcript := newTranscript(s.stats.Observe(relay.New(w)), true)
	generator, err := s.provider.GeneratorFor(request.Model)
	if err != nil {
		return reject(transcript, err)
	}

	branches := []runtime.Branch{
		{Participant: s.localizeOne(prompts.Critical(), request.Prompt), Label: prompts.CriticalLabel},
		{Participant: s.localizeOne(prompts.Positive(), request.Prompt), Label: prompts.PositiveLabel},
	}
	orchestrator, err := runtime.NewFanoutOrchestrator(log, generator, transcript, branches,
		s.localizeOne(prompts.Synthesis(), request.Prompt),
		runtime.WithOpening(prompts.DebateOpening))
	if err != nil {
		return reject(transcript, err)
	}

	start := time.Now()
	s.remember(request, "", request.Prompt, true)
	err = orchestrator.Run(ctx, request.Prompt)
	s.keep(request, transcript)
	log.Info("Debate finished", "elapsed", time.Since(start).String())
	return err
}

// Chat streams a single assistant answer as plain text.
func (s *StreamService) Chat(ctx context.Context, request StreamRequest, w io.Writer) (err error) {
	if err = s.check(request); err != nil {
		return err
	}
	log := s.log.With("stream", "chat", "model", request.Model)
	end := s.stats.Begin()
	defer func() { end(err) }()

	generator, err := s.provider.GeneratorFor(request.Model)
	if err != nil {
		_, _ = io.WriteString(w, ConfigMissingNotice)
		return err
	}

	s.remember(request, "", request.Prompt, true)
	agent := runtime.NewSingleAgent(log, generator, s.localizeOne(prompts.Simple(), request.Prompt))
	text, err := agent.Run(ctx, request.Prompt, w)
	s.remember(request, prompts.SimpleAgent, text, false)
	if err != nil && ctx.Err() == nil {
		var generationErr *errors.GenerationError
		if stderrors.As(err, &generationErr) {
			_, _ = fmt.Fprintf(w, chatFailure, generationErr.Err)
		}
	}
	return err
}

// Guideline answers from the indexed guideline excerpts.
func (s *StreamService) Guideline(ctx context.Context, request StreamRequest, w io.Writer) (err error) {
	if err = s.check(request); err != nil {
		return err
	}
	log := s.log.With("stream", "guideline", "model", request.Model)
	end := s.stats.Begin()
	defer func() { end(err) }()

	generator, err := s.provider.GeneratorFor(request.Model)
	if err != nil {
		_, _ = io.WriteString(w, ConfigMissingNotice)
		return err
	}

	passages, err := s.searcher.Search(ctx, request.Prompt, s.cfg.SearchTop)
	if err != nil && !stderrors.Is(err, errors.ErrEmptyQuery) {
		log.Error("Guideline search failed", "error", err)
		_, _ = fmt.Fprintf(w, retryNotice, fmt.Sprintf(searchFailure, err))
		return err
	}
	log.Info("Guideline search done", "passages", len(passages))

	s.remember(request, "", request.Prompt, true)
	input := prompts.GuidelineInput(request.Prompt, search.Format(request.Prompt, passages))
	agent := runtime.NewSingleAgent(log, generator, s.localizeOne(prompts.Guideline(), request.Prompt))
	text, err := agent.Run(ctx, input, w)
	s.remember(request, prompts.GuidelineAgent, text, false)
	if err != nil && ctx.Err() == nil {
		_, _ = fmt.Fprintf(w, retryNotice, fmt.Sprintf(searchFailure, err))
	}
	return err
}

func (s *StreamService) check(request StreamRequest) error {
	if strings.TrimSpace(request.Prompt) == "" {
		return errors.ErrPromptRequired
	}
	if err := s.validate.Struct(request); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}
	return nil
}

func (s *StreamService) localize(participants []domain.Participant, prompt string) []domain.Participant {
	return lo.Map(participants, func(p domain.Participant, _ int) domain.Participant {
		return s.localizeOne(p, prompt)
	})
}

func (s *StreamService) localizeOne(p domain.Participant, prompt string) domain.Participant {
	p.Instructions = prompts.Localize(p.Instructions, s.cfg.Language, prompt)
	return p
}

// keep stores every relayed agent segment in the request's session.
func (s *StreamService) keep(request StreamRequest, t *transcript) {
	for _, segment := range t.segments {
		s.remember(request, segment.agent, segment.text.String(), false)
	}
}

func (s *StreamService) remember(request StreamRequest, agent, content string, isUser bool) {
	if s.sessions == nil || request.SessionID == "" || strings.TrimSpace(content) == "" {
		return
	}
	err := s.sessions.Append(domain.SessionMessage{
		SessionID: request.SessionID,
		IsUser:    isUser,
		Agent:     agent,
		Content:   content,
		At:        s.timestamp(),
	})
	if err != nil {
		s.log.Warn("Failed to store session message", "session_id", request.SessionID, "error", err)
	}
}

// reject ends a stream that could not start with a single error record.
func reject(sink contract.EventSink, err error) error {
	message := err.Error()
	if stderrors.Is(err, errors.ErrConfigMissing) {
		message = ConfigMissingNotice
	}
	if _, emitErr := sink.Emit(event.Error{Message: message}); emitErr != nil {
		return stderrors.Join(err, emitErr)
	}
	return err
}
