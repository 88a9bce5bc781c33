package runtime

import (
	"boardroom/domain"
	"boardroom/domain/event"
	"boardroom/errors"
	"bytes"
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func debateBranches() []Branch {
	return []Branch{
		{Participant: domain.Participant{Name: "Critical", Instructions: "criticize"}, Label: "Critical perspective"},
		{Participant: domain.Participant{Name: "Positive", Instructions: "praise"}, Label: "Positive perspective"},
	}
}

var synthesizer = domain.Participant{Name: "Synthesizer", Instructions: "merge"}

func TestFanout_EndToEndStream(t *testing.T) {
	req := require.New(t)
	r, rec := newRecordingRelay()

	gen := generatorFunc(func(_ context.Context, gr domain.GenerationRequest) iter.Seq2[domain.Chunk, error] {
		switch gr.Agent {
		case "Critical":
			return said("Critical", "c1 ", "c2 ", "c3")
		case "Positive":
			return said("Positive", "p1 ", "p2 ", "p3")
		default:
			return said("Synthesizer", "s1 ", "s2")
		}
	})
	o, err := NewFanoutOrchestrator(testLog, gen, r, debateBranches(), synthesizer)
	req.NoError(err)

	err = o.Run(context.Background(), "Is remote work better?")
	req.NoError(err)

	// Then start, 6 branch updates, the two markers, 2 synthesis updates and complete
	types := rec.types()
	req.Equal(event.TypeStart, types[0])
	for _, ty := range types[1:7] {
		req.Equal(event.TypeAgentUpdate, ty)
	}
	req.Equal([]event.Type{
		event.TypeAgentsComplete,
		event.TypeSynthesisStart,
		event.TypeAgentUpdate,
		event.TypeAgentUpdate,
		event.TypeComplete,
	}, types[7:])

	updates := rec.updates()
	req.Len(updates, 8)
	perAgent := map[string][]string{}
	for i, u := range updates {
		req.Equal(int64(i+1), u.Seq)
		perAgent[u.Agent] = append(perAgent[u.Agent], u.Content)
	}
	// Each branch keeps its own order even when interleaved
	req.Equal([]string{"c1 ", "c2 ", "c3"}, perAgent["Critical"])
	req.Equal([]string{"p1 ", "p2 ", "p3"}, perAgent["Positive"])
	req.Equal("Synthesizer", updates[6].Agent)
	req.Equal("Synthesizer", updates[7].Agent)
}

func TestFanout_SynthesisInputHasEveryBranchOnce(t *testing.T) {
	req := require.New(t)
	r, _ := newRecordingRelay()

	var synthesis domain.GenerationRequest
	gen := generatorFunc(func(_ context.Context, gr domain.GenerationRequest) iter.Seq2[domain.Chunk, error] {
		switch gr.Agent {
		case "Critical":
			return said("Critical", "Too ", "expensive.")
		case "Positive":
			return said("Positive", "Huge ", "upside.")
		default:
			synthesis = gr
			return said("Synthesizer", "Balanced.")
		}
	})
	o, err := NewFanoutOrchestrator(testLog, gen, r, debateBranches(), synthesizer)
	req.NoError(err)

	req.NoError(o.Run(context.Background(), "Buy the startup?"))

	req.Equal("merge", synthesis.Instructions)
	req.Len(synthesis.Messages, 1)
	input := synthesis.Messages[0].Content
	req.Equal(1, strings.Count(input, "Too expensive."))
	req.Equal(1, strings.Count(input, "Huge upside."))
	req.Contains(input, "Original question: Buy the startup?")
	req.Less(strings.Index(input, "Critical perspective:\nToo expensive."), strings.Index(input, "Positive perspective:\nHuge upside."))
}

func TestFanout_BranchesRunConcurrently(t *testing.T) {
	req := require.New(t)
	r, rec := newRecordingRelay()

	// Given branches that only finish once both have started
	var arrived sync.WaitGroup
	arrived.Add(2)
	gen := generatorFunc(func(ctx context.Context, gr domain.GenerationRequest) iter.Seq2[domain.Chunk, error] {
		if gr.Agent == "Synthesizer" {
			return said("Synthesizer", "done")
		}
		return func(yield func(domain.Chunk, error) bool) {
			arrived.Done()
			arrived.Wait()
			yield(domain.Chunk{Author: gr.Agent, Text: "ok"}, nil)
		}
	})
	o, err := NewFanoutOrchestrator(testLog, gen, r, debateBranches(), synthesizer)
	req.NoError(err)

	done := make(chan error, 1)
	go func() { done <- o.Run(context.Background(), "q") }()

	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(2 * time.Second):
		req.Fail("branches did not run concurrently")
	}
	req.Equal(event.Complete{}, rec.last())
}

func TestFanout_BranchFailureStillSynthesizes(t *testing.T) {
	req := require.New(t)
	r, rec := newRecordingRelay()

	var synthesis domain.GenerationRequest
	gen := generatorFunc(func(_ context.Context, gr domain.GenerationRequest) iter.Seq2[domain.Chunk, error] {
		switch gr.Agent {
		case "Critical":
			return said("Critical", "risky")
		case "Positive":
			return saidThenFailed("Positive", fmt.Errorf("content filter"), "half a tho")
		default:
			synthesis = gr
			return said("Synthesizer", "ok")
		}
	})
	o, err := NewFanoutOrchestrator(testLog, gen, r, debateBranches(), synthesizer)
	req.NoError(err)

	req.NoError(o.Run(context.Background(), "q"))

	req.Contains(synthesis.Messages[0].Content, "Positive perspective:\nhalf a tho\n")
	req.Equal(event.Complete{}, rec.last())
}

func TestFanout_PanickingBranchSettles(t *testing.T) {
	req := require.New(t)
	r, rec := newRecordingRelay()

	gen := generatorFunc(func(_ context.Context, gr domain.GenerationRequest) iter.Seq2[domain.Chunk, error] {
		if gr.Agent == "Critical" {
			panic("boom")
		}
		return said(gr.Agent, "fine")
	})
	o, err := NewFanoutOrchestrator(testLog, gen, r, debateBranches(), synthesizer)
	req.NoError(err)

	req.NoError(o.Run(context.Background(), "q"))
	req.Contains(rec.types(), event.TypeAgentsComplete)
	req.Equal(event.Complete{}, rec.last())
}

func TestFanout_PanickingBranchKeepsRelayedText(t *testing.T) {
	req := require.New(t)
	r, rec := newRecordingRelay()

	// Given a branch that streams a chunk and then panics mid-generation
	var synthesis domain.GenerationRequest
	gen := generatorFunc(func(_ context.Context, gr domain.GenerationRequest) iter.Seq2[domain.Chunk, error] {
		switch gr.Agent {
		case "Critical":
			return func(yield func(domain.Chunk, error) bool) {
				if !yield(domain.Chunk{Author: "Critical", Text: "Too risky"}, nil) {
					return
				}
				panic("boom")
			}
		case "Positive":
			return said("Positive", "Huge upside.")
		default:
			synthesis = gr
			return said("Synthesizer", "Balanced.")
		}
	})
	o, err := NewFanoutOrchestrator(testLog, gen, r, debateBranches(), synthesizer)
	req.NoError(err)

	// When the debate runs
	req.NoError(o.Run(context.Background(), "q"))

	// Then the text already relayed for the branch reaches the synthesizer
	var critical []string
	for _, u := range rec.updates() {
		if u.Agent == "Critical" {
			critical = append(critical, u.Content)
		}
	}
	req.Equal([]string{"Too risky"}, critical)
	req.Contains(synthesis.Messages[0].Content, "Critical perspective:\nToo risky\n")
	req.Contains(synthesis.Messages[0].Content, "Positive perspective:\nHuge upside.")
	req.Equal(event.Complete{}, rec.last())
}

func TestFanout_SynthesisFailureEndsWithError(t *testing.T) {
	req := require.New(t)
	r, rec := newRecordingRelay()

	gen := generatorFunc(func(_ context.Context, gr domain.GenerationRequest) iter.Seq2[domain.Chunk, error] {
		if gr.Agent == "Synthesizer" {
			return saidThenFailed("Synthesizer", fmt.Errorf("timeout"), "start")
		}
		return said(gr.Agent, "x")
	})
	o, err := NewFanoutOrchestrator(testLog, gen, r, debateBranches(), synthesizer)
	req.NoError(err)

	err = o.Run(context.Background(), "q")

	var genErr *errors.GenerationError
	req.ErrorAs(err, &genErr)
	req.Equal("Synthesizer", genErr.Agent)
	types := rec.types()
	req.Equal(event.TypeError, types[len(types)-1])
	req.NotContains(types, event.TypeComplete)
}

func TestFanout_OpeningMessageComesFirst(t *testing.T) {
	req := require.New(t)
	r, rec := newRecordingRelay()

	gen := generatorFunc(func(_ context.Context, gr domain.GenerationRequest) iter.Seq2[domain.Chunk, error] {
		return said(gr.Agent, "x")
	})
	o, err := NewFanoutOrchestrator(testLog, gen, r, debateBranches(), synthesizer, WithOpening("=== Multi-Agent Analysis Started ==="))
	req.NoError(err)

	req.NoError(o.Run(context.Background(), "q"))

	all := rec.all()
	req.Equal(event.UIMessage{Text: "=== Multi-Agent Analysis Started ==="}, all[0])
	req.Equal(event.Start{}, all[1])
}

func TestFanout_RejectsInvalidBranches(t *testing.T) {
	tests := []struct {
		description string
		branches    []Branch
		wantErr     error
	}{
		{"Should reject a single branch", debateBranches()[:1], errors.ErrTooFewBranches},
		{"Should reject duplicate names", []Branch{debateBranches()[0], debateBranches()[0]}, errors.ErrDuplicateName},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			req := require.New(t)
			r, _ := newRecordingRelay()
			_, err := NewFanoutOrchestrator(testLog, nil, r, tt.branches, synthesizer)
			req.ErrorIs(err, tt.wantErr)
		})
	}
}

func TestFanout_CancellationStopsAllBranches(t *testing.T) {
	req := require.New(t)
	r, rec := newRecordingRelay()

	var (
		mu      sync.Mutex
		stopped int
	)
	var started sync.WaitGroup
	started.Add(2)
	gen := generatorFunc(func(ctx context.Context, gr domain.GenerationRequest) iter.Seq2[domain.Chunk, error] {
		return func(yield func(domain.Chunk, error) bool) {
			started.Done()
			<-ctx.Done()
			mu.Lock()
			stopped++
			mu.Unlock()
			yield(domain.Chunk{}, ctx.Err())
		}
	})
	o, err := NewFanoutOrchestrator(testLog, gen, r, debateBranches(), synthesizer)
	req.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.Run(ctx, "q") }()
	started.Wait()
	cancel()

	select {
	case err := <-done:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		req.Fail("fan-out should stop once the context is canceled")
	}
	req.Equal(2, stopped)
	req.Equal([]event.Type{event.TypeStart}, rec.types())
}

func TestSingleAgent_StreamsPlainText(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	gen := generatorFunc(func(_ context.Context, gr domain.GenerationRequest) iter.Seq2[domain.Chunk, error] {
		return said(gr.Agent, "Hello", "", ", world")
	})
	a := NewSingleAgent(testLog, gen, domain.Participant{Name: "SimpleAgent", Instructions: "be brief"})

	full, err := a.Run(context.Background(), "hi", &buf)

	req.NoError(err)
	req.Equal("Hello, world", full)
	req.Equal("Hello, world", buf.String())
}
