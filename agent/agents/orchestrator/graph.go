package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
	nodex "github.com/tanpawarit/transfer-orchestrator/agent/nodes/orchestrator"
)

func (o *Orchestrator) compileTransferGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, contractx.WorkflowState], error) {
	graph := compose.NewGraph[nodex.GraphInput, contractx.WorkflowState]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("extract_fields",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExtractFields(ctx, in, o.tools)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node extract_fields: %w", err)
	}

	if err := graph.AddLambdaNode("validate_fields",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ValidateFields(ctx, in, o.tools)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_fields: %w", err)
	}

	if err := graph.AddLambdaNode("route",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Route(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node route: %w", err)
	}

	if err := graph.AddLambdaNode("generate_review",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.GenerateReview(ctx, in, o.tools)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node generate_review: %w", err)
	}

	if err := graph.AddLambdaNode("human_gate",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (contractx.WorkflowState, error) {
			return nodex.HumanGate(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node human_gate: %w", err)
	}

	// Both path labels continue to review; there is no branch here.
	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "extract_fields"},
		{"extract_fields", "validate_fields"},
		{"validate_fields", "route"},
		{"route", "generate_review"},
		{"generate_review", "human_gate"},
		{"human_gate", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.transfer_review"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
