package runtime

import (
	"boardroom/contract"
	"boardroom/domain"
	"boardroom/errors"
	"context"
	"io"
	"log/slog"
	"strings"
	"time"
)

// SingleAgent streams one participant's answer as plain text.
type SingleAgent struct {
	log         *slog.Logger
	generator   contract.Generator
	participant domain.Participant
}

func NewSingleAgent(log *slog.Logger, generator contract.Generator, participant domain.Participant) *SingleAgent {
	return &SingleAgent{log: log, generator: generator, participant: participant}
}

// Run writes every text increment to w and returns the full answer.
func (a *SingleAgent) Run(ctx context.Context, prompt string, w io.Writer) (string, error) {
	ctx, span := tracer.Start(ctx, "single agent")
	defer span.End()

	req := domain.GenerationRequest{
		Agent:        a.participant.Name,
		Instructions: a.participant.Instructions,
		Messages:     []domain.Message{{Role: domain.RoleUser, Content: prompt}},
	}

	var (
		full   strings.Builder
		chunks int
	)
	start := time.Now()
	for chunk, err := range a.generator.Generate(ctx, req) {
		if err != nil {
			return full.String(), &errors.GenerationError{Agent: a.participant.Name, Err: err}
		}
		if chunk.Text == "" {
			continue
		}
		if chunks == 0 {
			a.log.Info("First chunk received", "ttfb", time.Since(start).String())
		}
		chunks++
		full.WriteString(chunk.Text)
		if _, err := io.WriteString(w, chunk.Text); err != nil {
			return full.String(), err
		}
	}
	a.log.Info("Completed", "chunks", chunks, "elapsed", time.Since(start).String())
	return full.String(), nil
}
