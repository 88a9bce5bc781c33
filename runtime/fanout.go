package runtime

import (
	"boardroom/contract"
	"boardroom/domain"
	"boardroom/domain/event"
	"boardroom/errors"
	"boardroom/prompts"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Branch is one independent perspective run before synthesis.
// Label introduces its text in the synthesis input.
type Branch struct {
	Participant domain.Participant
	Label       string
}

type branchResult struct {
	text string
	err  error
}

type FanoutOption func(*FanoutOrchestrator)

// WithOpening emits a ui_message before start.
func WithOpening(text string) FanoutOption {
	return func(o *FanoutOrchestrator) { o.opening = text }
}

// FanoutOrchestrator runs its branches concurrently, waits for all of them
// to settle, then streams the synthesizer over their labelled results.
type FanoutOrchestrator struct {
	log         *slog.Logger
	generator   contract.Generator
	sink        contract.EventSink
	branches    []Branch
	synthesizer domain.Participant
	opening     string
}

func NewFanoutOrchestrator(
	log *slog.Logger,
	generator contract.Generator,
	sink contract.EventSink,
	branches []Branch,
	synthesizer domain.Participant,
	opts ...FanoutOption,
) (*FanoutOrchestrator, error) {
	if len(branches) < 2 {
		return nil, errors.ErrTooFewBranches
	}
	names := lo.Map(branches, func(b Branch, _ int) string { return b.Participant.Name })
	if dup := lo.FindDuplicates(names); len(dup) > 0 {
		return nil, fmt.Errorf("%w: %v", errors.ErrDuplicateName, dup)
	}

	o := &FanoutOrchestrator{
		log:         log,
		generator:   generator,
		sink:        sink,
		branches:    branches,
		synthesizer: synthesizer,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Run streams start, every branch, agents_complete, synthesis_start, the
// synthesizer and complete. Branch failures are logged and synthesis goes on
// with whatever text the branch produced.
func (o *FanoutOrchestrator) Run(ctx context.Context, prompt string) error {
	ctx, span := tracer.Start(ctx, "fanout")
	defer span.End()
	start := time.Now()

	if o.opening != "" {
		if _, err := o.sink.Emit(event.UIMessage{Text: o.opening}); err != nil {
			return err
		}
	}
	if _, err := o.sink.Emit(event.Start{}); err != nil {
		return err
	}

	results, err := o.runBranches(ctx, prompt)
	if err != nil {
		return err
	}
	o.log.Info("Parallel agents completed", "elapsed", time.Since(start).String())

	if _, err := o.sink.Emit(event.AgentsComplete{}); err != nil {
		return err
	}
	if _, err := o.sink.Emit(event.SynthesisStart{}); err != nil {
		return err
	}

	perspectives := make([]prompts.Perspective, len(o.branches))
	for i, b := range o.branches {
		perspectives[i] = prompts.Perspective{Label: b.Label, Text: results[i].text}
	}
	synthStart := time.Now()
	chunks, err := o.synthesize(ctx, prompts.SynthesisInput(prompt, perspectives))
	if err != nil {
		var genErr *errors.GenerationError
		if stderrors.As(err, &genErr) && ctx.Err() == nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fail(o.sink, err)
		}
		return err
	}
	o.log.Info("Synthesis completed",
		"chunks", chunks,
		"elapsed", time.Since(synthStart).String(),
		"total", time.Since(start).String())

	_, err = o.sink.Emit(event.Complete{})
	return err
}

// runBranches is the barrier: it returns once every branch has settled.
// Only a failed write or a canceled context aborts the run.
func (o *FanoutOrchestrator) runBranches(ctx context.Context, prompt string) ([]branchResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		writeErr error
	)
	results := make([]branchResult, len(o.branches))

	for i, b := range o.branches {
		wg.Add(1)
		go func() {
			defer wg.Done()
			said := newUtterances()
			defer func() {
				if r := recover(); r != nil {
					o.log.Error("Branch panicked", "agent", b.Participant.Name, "panic", r)
					results[i] = branchResult{text: said.text(b.Participant.Name), err: errors.ErrWorkerPanic}
				}
			}()

			text, err := o.runBranch(ctx, b.Participant, prompt, said)
			results[i] = branchResult{text: text, err: err}
			var genErr *errors.GenerationError
			if err != nil && !stderrors.As(err, &genErr) {
				once.Do(func() {
					writeErr = err
					cancel()
				})
			}
		}()
	}
	wg.Wait()

	if writeErr != nil {
		return nil, writeErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, r := range results {
		if r.err != nil {
			o.log.Warn("Branch failed, synthesizing with partial text",
				"agent", o.branches[i].Participant.Name,
				"chars", len(r.text),
				"error", r.err)
		}
	}
	return results, nil
}

func (o *FanoutOrchestrator) runBranch(ctx context.Context, p domain.Participant, prompt string, said *utterances) (string, error) {
	ctx, span := tracer.Start(ctx, "branch")
	defer span.End()
	span.SetAttributes(attribute.String("branch.agent", p.Name))

	req := domain.GenerationRequest{
		Agent:        p.Name,
		Instructions: p.Instructions,
		Messages:     []domain.Message{{Role: domain.RoleUser, Content: prompt}},
	}
	text, _, err := o.stream(ctx, p, req, said)
	return text, err
}

func (o *FanoutOrchestrator) synthesize(ctx context.Context, input string) (int, error) {
	ctx, span := tracer.Start(ctx, "synthesis")
	defer span.End()

	req := domain.GenerationRequest{
		Agent:        o.synthesizer.Name,
		Instructions: o.synthesizer.Instructions,
		Messages:     []domain.Message{{Role: domain.RoleUser, Content: input}},
	}
	_, chunks, err := o.stream(ctx, o.synthesizer, req, newUtterances())
	return chunks, err
}

// stream relays the chunks attributed to p and returns its accumulated text.
// said is owned by the caller so the text survives a panicking generator.
func (o *FanoutOrchestrator) stream(ctx context.Context, p domain.Participant, req domain.GenerationRequest, said *utterances) (string, int, error) {
	roster, err := domain.NewRoster(p)
	if err != nil {
		return "", 0, err
	}

	chunks := 0
	for chunk, err := range o.generator.Generate(ctx, req) {
		if err != nil {
			return said.text(p.Name), chunks, &errors.GenerationError{Agent: p.Name, Err: err}
		}
		if chunk.Text == "" {
			continue
		}
		name, ok := resolveParticipant(chunk, roster)
		if !ok {
			continue
		}
		said.add(name, chunk.Text)
		chunks++
		if _, err := o.sink.Emit(event.AgentUpdate{Agent: name, Content: chunk.Text}); err != nil {
			return said.text(p.Name), chunks, err
		}
	}
	return said.text(p.Name), chunks, nil
}
