// Package generation streams chat completions from Azure OpenAI or any
// OpenAI-compatible endpoint.
package generation

import (
	"boardroom/domain"
	"context"
	"iter"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("boardroom/generation")

// OpenAIGenerator streams one deployment. It is safe for concurrent use:
// every Generate call opens its own stream.
type OpenAIGenerator struct {
	client     openai.Client
	deployment string
}

func NewOpenAIGenerator(client openai.Client, deployment string) *OpenAIGenerator {
	return &OpenAIGenerator{client: client, deployment: deployment}
}

// Generate is lazy: nothing is sent until the sequence is ranged over.
// Chunks are authored by req.Agent and carry the completion id as execution id.
func (g *OpenAIGenerator) Generate(ctx context.Context, req domain.GenerationRequest) iter.Seq2[domain.Chunk, error] {
	return func(yield func(domain.Chunk, error) bool) {
		ctx, span := tracer.Start(ctx, "chat completion")
		defer span.End()
		span.SetAttributes(
			attribute.String("generation.deployment", g.deployment),
			attribute.String("generation.agent", req.Agent),
		)

		stream := g.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
			Model:    g.deployment,
			Messages: toMessages(req),
		})
		defer stream.Close()

		chunks := 0
		for stream.Next() {
			current := stream.Current()
			if len(current.Choices) == 0 {
				continue
			}
			text := current.Choices[0].Delta.Content
			if text == "" {
				continue
			}
			chunks++
			if !yield(domain.Chunk{ExecutionID: current.ID, Author: req.Agent, Text: text}, nil) {
				return
			}
		}
		span.SetAttributes(attribute.Int("generation.chunks", chunks))
		if err := stream.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			yield(domain.Chunk{}, err)
		}
	}
}

func toMessages(req domain.GenerationRequest) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case domain.RoleAssistant:
			assistant := &openai.ChatCompletionAssistantMessageParam{
				Content: openai.ChatCompletionAssistantMessageParamContentUnion{OfString: param.NewOpt(m.Content)},
			}
			if m.Name != "" {
				assistant.Name = param.NewOpt(m.Name)
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: assistant})
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	return messages
}
