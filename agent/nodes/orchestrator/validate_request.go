package orchestratornode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
	statex "github.com/tanpawarit/transfer-orchestrator/agent/state"
	toolx "github.com/tanpawarit/transfer-orchestrator/agent/tool"
)

// State keys of a run. A returned snapshot holds exactly these.
const (
	KeyFields     = "fields"
	KeyValidation = "validation"
	KeyReview     = "review"
	KeyPath       = "path"
	KeyHumanGate  = "human_gate"
)

// ToolExecutor invokes registered tools by name.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args toolx.Args) (any, error)
}

type GraphInput struct {
	DocumentText string
}

// GraphState travels through the graph for one run. Store is created here
// and never escapes the run; only snapshots leave.
type GraphState struct {
	Text  string
	Stage Stage
	Store *statex.Store
}

func ValidateRequest(in GraphInput) (*GraphState, error) {
	if strings.TrimSpace(in.DocumentText) == "" {
		return nil, fmt.Errorf("%w: document_text is empty", contractx.ErrInvalidPayload)
	}

	return &GraphState{
		Text:  in.DocumentText,
		Stage: StageStart,
		Store: statex.NewStore(),
	}, nil
}

func executeAs[T any](ctx context.Context, tools ToolExecutor, name string, args toolx.Args) (T, error) {
	var zero T
	out, err := tools.Execute(ctx, name, args)
	if err != nil {
		return zero, err
	}
	v, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("%w: tool=%s returned %T, want %T", contractx.ErrUnexpectedToolType, name, out, zero)
	}
	return v, nil
}

func requireState(in *GraphState) error {
	if in == nil || in.Store == nil {
		return fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	return nil
}
