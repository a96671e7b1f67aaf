package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
	statex "github.com/tanpawarit/transfer-orchestrator/agent/state"
	toolx "github.com/tanpawarit/transfer-orchestrator/agent/tool"
)

func ValidateFields(ctx context.Context, in *GraphState, tools ToolExecutor) (*GraphState, error) {
	if err := requireState(in); err != nil {
		return nil, err
	}
	if err := in.expect(StageExtracted); err != nil {
		return nil, err
	}

	fields, ok := statex.Typed[contractx.FieldRecord](in.Store, KeyFields)
	if !ok {
		return nil, fmt.Errorf("%w: %s missing from state", contractx.ErrValidation, KeyFields)
	}

	validation, err := executeAs[contractx.ValidationResult](ctx, tools, toolx.ToolValidateFields, toolx.Args{
		toolx.ArgFields: fields,
	})
	if err != nil {
		return nil, err
	}

	in.Store.Set(KeyValidation, validation)
	if err := in.advance(StageValidated); err != nil {
		return nil, err
	}
	return in, nil
}
