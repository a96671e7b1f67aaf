package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
)

// Structured is a compiled prompt -> chat model -> JSON parser graph that
// decodes one model reply into T. It makes exactly one model call per run.
type Structured[T any] struct {
	runnable compose.Runnable[map[string]any, T]
}

// CompileStructured builds the graph for one prompt template.
func CompileStructured[T any](
	ctx context.Context,
	graphName string,
	template einoprompt.ChatTemplate,
	chatModel contractx.ChatModel,
) (*Structured[T], error) {
	if template == nil {
		return nil, fmt.Errorf("%w: %s template is required", contractx.ErrPromptMissing, graphName)
	}
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}

	parser := schema.NewMessageJSONParser[T](&schema.MessageJSONParseConfig{
		ParseFrom: schema.MessageParseFromContent,
	})

	graph := compose.NewGraph[map[string]any, T]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add structured prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", invokeGuard{model: chatModel}); err != nil {
		return nil, fmt.Errorf("add structured model node: %w", err)
	}
	if err := graph.AddLambdaNode("parse_json", compose.MessageParser[T](objectParser[T]{inner: parser})); err != nil {
		return nil, fmt.Errorf("add structured parser node: %w", err)
	}

	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add structured edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add structured edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", "parse_json"); err != nil {
		return nil, fmt.Errorf("add structured edge model->parse_json: %w", err)
	}
	if err := graph.AddEdge("parse_json", compose.END); err != nil {
		return nil, fmt.Errorf("add structured edge parse_json->end: %w", err)
	}

	runnable, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile structured graph %s: %w", graphName, err)
	}
	return &Structured[T]{runnable: runnable}, nil
}

// Generate renders vars into the template and decodes the reply. Model
// failures carry ErrModelInvoke, undecodable replies ErrParse, and template
// rendering failures ErrPromptMissing. Nothing is retried.
func (s *Structured[T]) Generate(ctx context.Context, vars map[string]any, temperature float64) (T, error) {
	var zero T
	if s == nil || s.runnable == nil {
		return zero, errors.New("structured graph is not compiled")
	}

	out, err := s.runnable.Invoke(ctx, vars,
		compose.WithChatModelOption(einomodel.WithTemperature(float32(temperature))),
	)
	if err != nil {
		if errors.Is(err, contractx.ErrParse) || errors.Is(err, contractx.ErrModelInvoke) {
			return zero, err
		}
		return zero, fmt.Errorf("%w: %w", contractx.ErrPromptMissing, err)
	}
	return out, nil
}

// invokeGuard tags chat model failures with ErrModelInvoke so callers can
// tell them apart from parse failures whichever backend is in use.
type invokeGuard struct {
	model contractx.ChatModel
}

func (g invokeGuard) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	out, err := g.model.Generate(ctx, input, opts...)
	if err != nil {
		return nil, invokeError(err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: empty model response", contractx.ErrModelInvoke)
	}
	return out, nil
}

func (g invokeGuard) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	out, err := g.model.Stream(ctx, input, opts...)
	if err != nil {
		return nil, invokeError(err)
	}
	return out, nil
}

func invokeError(err error) error {
	if errors.Is(err, contractx.ErrModelInvoke) {
		return err
	}
	return fmt.Errorf("%w: %w", contractx.ErrModelInvoke, err)
}

// objectParser only accepts a JSON object and tags decode failures with
// ErrParse. Decoder messages quote the reply, which can hold client data,
// so they are not passed on.
type objectParser[T any] struct {
	inner schema.MessageParser[T]
}

func (p objectParser[T]) Parse(ctx context.Context, m *schema.Message) (T, error) {
	var zero T
	if m == nil {
		return zero, fmt.Errorf("%w: empty model response", contractx.ErrParse)
	}
	if !strings.HasPrefix(strings.TrimSpace(m.Content), "{") {
		return zero, fmt.Errorf("%w: response is not a JSON object", contractx.ErrParse)
	}
	out, err := p.inner.Parse(ctx, m)
	if err != nil {
		return zero, fmt.Errorf("%w: reply does not decode into %T", contractx.ErrParse, zero)
	}
	return out, nil
}
