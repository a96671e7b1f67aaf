package orchestrator

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
	nodex "github.com/tanpawarit/transfer-orchestrator/agent/nodes/orchestrator"
	toolx "github.com/tanpawarit/transfer-orchestrator/agent/tool"
)

var (
	ErrInvalidPayload = contractx.ErrInvalidPayload
	ErrGateMissing    = contractx.ErrGateMissing
)

// ToolRunner is the registry surface the orchestrator needs.
type ToolRunner interface {
	nodex.ToolExecutor
	ClearLog()
	Log() []toolx.LogEntry
}

// Orchestrator runs one transfer document through the review graph. An
// instance serves one run at a time.
type Orchestrator struct {
	tools       ToolRunner
	graphRunner compose.Runnable[nodex.GraphInput, contractx.WorkflowState]
}

func New(tools ToolRunner) (*Orchestrator, error) {
	if tools == nil {
		return nil, errors.New("tool registry is required")
	}

	o := &Orchestrator{tools: tools}

	graphRunner, err := o.compileTransferGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// NewTransfer builds a fresh registry with the transfer tools and wraps it.
func NewTransfer(cfg toolx.CatalogConfig, mw ...toolx.Middleware) (*Orchestrator, error) {
	reg, err := toolx.BuildTransferRegistry(cfg, mw...)
	if err != nil {
		return nil, err
	}
	return New(reg)
}

// Run executes the workflow. On any error no state is returned.
func (o *Orchestrator) Run(ctx context.Context, documentText string) (contractx.WorkflowState, error) {
	o.tools.ClearLog()
	log.Info().Int("document_chars", len(documentText)).Msg("transfer review started")

	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{DocumentText: documentText})
	if err != nil {
		log.Error().Err(err).Int("tool_calls", len(o.tools.Log())).Msg("transfer review aborted")
		return contractx.WorkflowState{}, err
	}

	log.Info().
		Str("verdict", string(out.Validation.Status)).
		Str("path", string(out.Path)).
		Str("human_gate", string(out.HumanGate.Decision)).
		Msg("transfer review finished")
	return out, nil
}

// ToolLog returns the invocation log of the most recent run.
func (o *Orchestrator) ToolLog() []toolx.LogEntry {
	return o.tools.Log()
}
