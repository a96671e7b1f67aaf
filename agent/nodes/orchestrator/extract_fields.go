package orchestratornode

import (
	"context"

	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
	toolx "github.com/tanpawarit/transfer-orchestrator/agent/tool"
)

func ExtractFields(ctx context.Context, in *GraphState, tools ToolExecutor) (*GraphState, error) {
	if err := requireState(in); err != nil {
		return nil, err
	}
	if err := in.expect(StageStart); err != nil {
		return nil, err
	}

	fields, err := executeAs[contractx.FieldRecord](ctx, tools, toolx.ToolExtractFields, toolx.Args{
		toolx.ArgText: in.Text,
	})
	if err != nil {
		return nil, err
	}

	in.Store.Set(KeyFields, fields)
	if err := in.advance(StageExtracted); err != nil {
		return nil, err
	}
	return in, nil
}
