package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
	statex "github.com/tanpawarit/transfer-orchestrator/agent/state"
	toolx "github.com/tanpawarit/transfer-orchestrator/agent/tool"
)

func GenerateReview(ctx context.Context, in *GraphState, tools ToolExecutor) (*GraphState, error) {
	if err := requireState(in); err != nil {
		return nil, err
	}
	if err := in.expect(StageValidated); err != nil {
		return nil, err
	}

	fields, ok := statex.Typed[contractx.FieldRecord](in.Store, KeyFields)
	if !ok {
		return nil, fmt.Errorf("%w: %s missing from state", contractx.ErrValidation, KeyFields)
	}
	validation, ok := statex.Typed[contractx.ValidationResult](in.Store, KeyValidation)
	if !ok {
		return nil, fmt.Errorf("%w: %s missing from state", contractx.ErrValidation, KeyValidation)
	}

	review, err := executeAs[contractx.ReviewResult](ctx, tools, toolx.ToolGenerateReview, toolx.Args{
		toolx.ArgFields:     fields,
		toolx.ArgValidation: validation,
	})
	if err != nil {
		return nil, err
	}

	in.Store.Set(KeyReview, review)
	if err := in.advance(StageReviewed); err != nil {
		return nil, err
	}
	return in, nil
}
