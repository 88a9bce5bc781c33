package runtime

import (
	"boardroom/contract"
	"boardroom/domain"
	"boardroom/domain/event"
	"boardroom/errors"
	"boardroom/selector"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("boardroom/runtime")

type ConversationConfig struct {
	MaxRounds        int
	MaxCalls         int
	CompletionMarker string
}

// ConversationOrchestrator runs one round-robin conversation.
// One instance serves one request: it owns the history and the selector state.
type ConversationOrchestrator struct {
	log       *slog.Logger
	generator contract.Generator
	sink      contract.EventSink
	roster    domain.Roster
	cfg       ConversationConfig
}

func NewConversationOrchestrator(
	log *slog.Logger,
	generator contract.Generator,
	sink contract.EventSink,
	roster domain.Roster,
	cfg ConversationConfig,
) *ConversationOrchestrator {
	return &ConversationOrchestrator{
		log:       log,
		generator: generator,
		sink:      sink,
		roster:    roster,
		cfg:       cfg,
	}
}

// Run drives turns until the selector terminates, then emits complete.
// A generation failure emits a single error record and ends the stream.
// Write failures and cancellation are returned without further records.
func (o *ConversationOrchestrator) Run(ctx context.Context, prompt string) error {
	ctx, span := tracer.Start(ctx, "conversation")
	defer span.End()
	start := time.Now()

	var (
		history domain.History
		state   selector.State
	)
	params := selector.Params{
		Participants:     o.roster.Names(),
		CompletionMarker: o.cfg.CompletionMarker,
		MaxRounds:        o.cfg.MaxRounds,
		MaxCalls:         o.cfg.MaxCalls,
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		round := history.CountBy(o.roster.Has)
		decision := selector.Select(history.Turns(), round, &state, params)
		if decision.Terminate {
			o.logTermination(decision.Reason, round, state.CallsMade)
			span.SetAttributes(
				attribute.String("conversation.termination", decision.Reason.String()),
				attribute.Int("conversation.turns", history.Len()),
			)
			o.log.Info("Conversation complete",
				"turns", history.Len(),
				"elapsed", time.Since(start).String())
			_, err := o.sink.Emit(event.Complete{})
			return err
		}

		if err := o.speak(ctx, decision.Speaker, prompt, &history); err != nil {
			var genErr *errors.GenerationError
			if stderrors.As(err, &genErr) && ctx.Err() == nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return fail(o.sink, err)
			}
			return err
		}
	}
}

func (o *ConversationOrchestrator) logTermination(reason selector.Reason, round, calls int) {
	switch reason {
	case selector.ReasonMaxRounds:
		o.log.Warn(fmt.Sprintf("Reached max rounds (%d), ending conversation", o.cfg.MaxRounds), "round", round)
	case selector.ReasonMaxCalls:
		o.log.Warn(fmt.Sprintf("Reached max selector calls (%d), ending conversation", o.cfg.MaxCalls), "calls", calls)
	case selector.ReasonMarker:
		o.log.Info("Completion marker found", "marker", o.cfg.CompletionMarker)
	default:
		o.log.Warn("Conversation ended", "reason", reason.String())
	}
}

// speak runs one generation call for the selected speaker and records its turns.
func (o *ConversationOrchestrator) speak(ctx context.Context, speaker, prompt string, history *domain.History) error {
	ctx, span := tracer.Start(ctx, "turn")
	defer span.End()
	span.SetAttributes(attribute.String("turn.speaker", speaker))

	participant, _ := o.roster.Get(speaker)
	req := domain.GenerationRequest{
		Agent:        participant.Name,
		Instructions: participant.Instructions,
		Messages:     contextWindow(prompt, history.Turns(), o.roster),
	}

	said := newUtterances()
	dropped := 0
	for chunk, err := range o.generator.Generate(ctx, req) {
		if err != nil {
			return &errors.GenerationError{Agent: speaker, Err: err}
		}
		if chunk.Text == "" {
			continue
		}
		name, ok := resolveParticipant(chunk, o.roster)
		if !ok {
			dropped++
			said.add(rawSpeaker(chunk), chunk.Text)
			continue
		}
		said.add(name, chunk.Text)
		if _, err := o.sink.Emit(event.AgentUpdate{Agent: name, Content: chunk.Text}); err != nil {
			return err
		}
	}
	if dropped > 0 {
		o.log.Debug("Dropped chunks from non participants", "speaker", speaker, "count", dropped)
	}
	said.flush(history)
	return nil
}

// contextWindow is the prompt followed by every prior participant turn.
func contextWindow(prompt string, turns []domain.Turn, roster domain.Roster) []domain.Message {
	messages := []domain.Message{{Role: domain.RoleUser, Content: prompt}}
	for _, t := range turns {
		name, ok := roster.Lookup(t.Speaker)
		if !ok {
			continue
		}
		messages = append(messages, domain.Message{Role: domain.RoleAssistant, Name: name, Content: t.Text})
	}
	return messages
}
