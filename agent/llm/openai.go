package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
)

// OpenAIChatModel is an eino chat model over openai-go. Every request sets
// response_format=json_object.
type OpenAIChatModel struct {
	client    *openaisdk.Client
	model     string
	maxTokens int
}

var _ contractx.ChatModel = (*OpenAIChatModel)(nil)

func NewOpenAIChatModel(client *openaisdk.Client, model string, maxTokens int) (*OpenAIChatModel, error) {
	if client == nil {
		return nil, errors.New("openai client is required")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, fmt.Errorf("%w: model name is required", contractx.ErrValidation)
	}
	return &OpenAIChatModel{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

func (m *OpenAIChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	msgs, err := toOpenAIMessages(input)
	if err != nil {
		return nil, err
	}

	options := einomodel.GetCommonOptions(&einomodel.Options{
		Model:     &m.model,
		MaxTokens: &m.maxTokens,
	}, opts...)

	params := openaisdk.ChatCompletionNewParams{
		Model:    shared.ChatModel(*options.Model),
		Messages: msgs,
		ResponseFormat: openaisdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}
	if options.Temperature != nil {
		params.Temperature = openaisdk.Float(float64(*options.Temperature))
	}
	if options.MaxTokens != nil && *options.MaxTokens > 0 {
		params.MaxCompletionTokens = openaisdk.Int(int64(*options.MaxTokens))
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", contractx.ErrModelInvoke, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choices", contractx.ErrModelInvoke)
	}
	return schema.AssistantMessage(resp.Choices[0].Message.Content, nil), nil
}

// Stream yields the whole completion as a single chunk.
func (m *OpenAIChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	out, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{out}), nil
}

func toOpenAIMessages(in []*schema.Message) ([]openaisdk.ChatCompletionMessageParamUnion, error) {
	out := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(in))
	for _, m := range in {
		if m == nil {
			continue
		}
		switch m.Role {
		case schema.System:
			out = append(out, openaisdk.SystemMessage(m.Content))
		case schema.User:
			out = append(out, openaisdk.UserMessage(m.Content))
		case schema.Assistant:
			out = append(out, openaisdk.AssistantMessage(m.Content))
		default:
			return nil, fmt.Errorf("%w: unsupported message role %q", contractx.ErrValidation, m.Role)
		}
	}
	return out, nil
}
