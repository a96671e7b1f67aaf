package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
)

// Payload is the only request shape accepted from outside.
type Payload struct {
	DocumentText string `json:"document_text"`
}

type Agent interface {
	Run(ctx context.Context, documentText string) (contractx.WorkflowState, error)
}

// Router is the external entry point.
type Router struct {
	agent Agent
}

func NewRouter(agent Agent) *Router {
	return &Router{agent: agent}
}

func (r *Router) Route(ctx context.Context, p Payload) (contractx.WorkflowState, error) {
	if r == nil || r.agent == nil {
		return contractx.WorkflowState{}, fmt.Errorf("%w: router has no agent", contractx.ErrValidation)
	}
	return r.agent.Run(ctx, p.DocumentText)
}

// RouteJSON decodes a {"document_text": "..."} object and routes it. Unknown
// keys, a missing key and trailing data are rejected.
func (r *Router) RouteJSON(ctx context.Context, raw []byte) (contractx.WorkflowState, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return contractx.WorkflowState{}, fmt.Errorf("%w: %w", contractx.ErrInvalidPayload, err)
	}
	if _, ok := keys["document_text"]; !ok {
		return contractx.WorkflowState{}, fmt.Errorf("%w: document_text is required", contractx.ErrInvalidPayload)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var p Payload
	if err := dec.Decode(&p); err != nil {
		return contractx.WorkflowState{}, fmt.Errorf("%w: %w", contractx.ErrInvalidPayload, err)
	}
	if dec.More() {
		return contractx.WorkflowState{}, fmt.Errorf("%w: trailing data after payload", contractx.ErrInvalidPayload)
	}
	return r.Route(ctx, p)
}
