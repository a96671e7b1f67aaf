package casestore

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
	"github.com/uptrace/bun"
)

// Decision is what a human reviewer records after reading the case.
type Decision string

const (
	DecisionApprove         Decision = "APPROVE_TO_PROCEED"
	DecisionRequestInfoSent Decision = "REQUEST_INFO_SENT"
)

func (d Decision) Valid() bool {
	switch d {
	case DecisionApprove, DecisionRequestInfoSent:
		return true
	default:
		return false
	}
}

// ParseDecision accepts any casing and surrounding whitespace.
func ParseDecision(raw string) (Decision, error) {
	d := Decision(strings.ToUpper(strings.TrimSpace(raw)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDecision, raw)
	}
	return d, nil
}

// Case is one reviewed document. State.HumanGate is the run's own record
// and always reads PENDING_HUMAN_APPROVAL; the reviewer's answer is kept
// apart in HumanDecision, which stays empty until someone acts on it.
type Case struct {
	ID              string                  `json:"case_id"`
	CreatedAt       time.Time               `json:"created_at"`
	SourceName      string                  `json:"source_name"`
	DocumentText    string                  `json:"document_text"`
	State           contractx.WorkflowState `json:"state"`
	HumanDecision   Decision                `json:"human_decision,omitempty"`
	HumanDecisionAt time.Time               `json:"human_decision_at,omitzero"`
}

// Outcome is the reviewer's decision, or the pending gate when none has
// been recorded yet.
func (c Case) Outcome() string {
	if c.HumanDecision != "" {
		return string(c.HumanDecision)
	}
	return string(c.State.HumanGate.Decision)
}

type caseRow struct {
	bun.BaseModel `bun:"table:cases"`

	CaseID          string          `bun:"case_id,pk"`
	CreatedAt       time.Time       `bun:"created_at,notnull"`
	SourceName      string          `bun:"source_name"`
	DocumentText    string          `bun:"document_text,notnull"`
	FieldsJSON      json.RawMessage `bun:"fields_json,type:jsonb,notnull"`
	ValidationJSON  json.RawMessage `bun:"validation_json,type:jsonb,notnull"`
	ReviewJSON      json.RawMessage `bun:"review_json,type:jsonb,notnull"`
	Path            string          `bun:"path,notnull"`
	HumanDecision   string          `bun:"human_decision,nullzero"`
	HumanDecisionAt time.Time       `bun:"human_decision_at,nullzero"`
}

func toRow(c Case) (caseRow, error) {
	if strings.TrimSpace(c.ID) == "" {
		return caseRow{}, fmt.Errorf("%w: case id is required", ErrInvalidCase)
	}

	fields, err := json.Marshal(c.State.Fields)
	if err != nil {
		return caseRow{}, fmt.Errorf("marshal fields: %w", err)
	}
	validation, err := json.Marshal(c.State.Validation)
	if err != nil {
		return caseRow{}, fmt.Errorf("marshal validation: %w", err)
	}
	review, err := json.Marshal(c.State.Review)
	if err != nil {
		return caseRow{}, fmt.Errorf("marshal review: %w", err)
	}

	return caseRow{
		CaseID:          c.ID,
		CreatedAt:       c.CreatedAt,
		SourceName:      c.SourceName,
		DocumentText:    c.DocumentText,
		FieldsJSON:      fields,
		ValidationJSON:  validation,
		ReviewJSON:      review,
		Path:            string(c.State.Path),
		HumanDecision:   string(c.HumanDecision),
		HumanDecisionAt: c.HumanDecisionAt,
	}, nil
}

// fromRow rebuilds a case. Stored cases always passed the human gate, so
// the pending gate is restored as it was written at the end of the run,
// even when a decision has been recorded since. Source text is not put
// back into the fields; DocumentText carries it.
func fromRow(row caseRow) (Case, error) {
	var st contractx.WorkflowState
	if err := json.Unmarshal(row.FieldsJSON, &st.Fields); err != nil {
		return Case{}, fmt.Errorf("decode fields of case %s: %w", row.CaseID, err)
	}
	if err := json.Unmarshal(row.ValidationJSON, &st.Validation); err != nil {
		return Case{}, fmt.Errorf("decode validation of case %s: %w", row.CaseID, err)
	}
	if err := json.Unmarshal(row.ReviewJSON, &st.Review); err != nil {
		return Case{}, fmt.Errorf("decode review of case %s: %w", row.CaseID, err)
	}
	st.Path = contractx.Path(row.Path)
	st.HumanGate = contractx.PendingGate()

	return Case{
		ID:              row.CaseID,
		CreatedAt:       row.CreatedAt,
		SourceName:      row.SourceName,
		DocumentText:    row.DocumentText,
		State:           st,
		HumanDecision:   Decision(row.HumanDecision),
		HumanDecisionAt: row.HumanDecisionAt,
	}, nil
}
