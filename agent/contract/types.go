package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

type TransferType string

const (
	TransferFull    TransferType = "FULL"
	TransferPartial TransferType = "PARTIAL"
	TransferCash    TransferType = "CASH"
	TransferInKind  TransferType = "IN_KIND"
	TransferUnknown TransferType = "UNKNOWN"
)

type AccountType string

const (
	AccountTFSA          AccountType = "TFSA"
	AccountRRSP          AccountType = "RRSP"
	AccountFHSA          AccountType = "FHSA"
	AccountNonRegistered AccountType = "NON_REGISTERED"
	AccountUnknown       AccountType = "UNKNOWN"
)

// SignatureState is the tri-state signature flag plus the unresolved case
// where the model returned free text that coercion could not map.
type SignatureState int

const (
	SignatureUnknown SignatureState = iota
	SignaturePresent
	SignatureAbsent
	SignatureAmbiguous
)

func (s SignatureState) String() string {
	switch s {
	case SignaturePresent:
		return "present"
	case SignatureAbsent:
		return "absent"
	case SignatureAmbiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// Signature serializes as true, false, null, or the raw unresolved string.
type Signature struct {
	State SignatureState
	Raw   string
}

func SignatureOf(present bool) Signature {
	if present {
		return Signature{State: SignaturePresent}
	}
	return Signature{State: SignatureAbsent}
}

func UnresolvedSignature(raw string) Signature {
	return Signature{State: SignatureAmbiguous, Raw: raw}
}

func (s Signature) MarshalJSON() ([]byte, error) {
	switch s.State {
	case SignaturePresent:
		return []byte("true"), nil
	case SignatureAbsent:
		return []byte("false"), nil
	case SignatureAmbiguous:
		return json.Marshal(s.Raw)
	default:
		return []byte("null"), nil
	}
}

func (s *Signature) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = Signature{}
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*s = SignatureOf(b)
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("has_signature must be boolean, string or null: %w", err)
	}
	*s = UnresolvedSignature(raw)
	return nil
}

// FieldRecord is the structured result of extraction. SourceText is kept for
// validation heuristics and never serialized.
type FieldRecord struct {
	ClientFullName       string       `json:"client_full_name"`
	ClientEmail          string       `json:"client_email"`
	ClientPhone          string       `json:"client_phone"`
	SendingInstitution   string       `json:"sending_institution"`
	ReceivingInstitution string       `json:"receiving_institution"`
	TransferType         TransferType `json:"transfer_type"`
	AccountType          AccountType  `json:"account_type"`
	AccountNumberLast4   string       `json:"account_number_last4"`
	RequestedDate        string       `json:"requested_date"`
	HasSignature         Signature    `json:"has_signature"`

	SourceText string `json:"-"`
}

func (f FieldRecord) Clone() any {
	return f
}

type Verdict string

const (
	VerdictPass Verdict = "PASS"
	VerdictWarn Verdict = "WARN"
	VerdictFail Verdict = "FAIL"
)

// Checks is the audit summary attached to every validation result.
type Checks struct {
	RequiredFieldsPresent bool    `json:"required_fields_present"`
	MissingRequired       int     `json:"missing_required"`
	FormatWarnings        int     `json:"format_warnings"`
	Signature             string  `json:"signature"`
	WeirdCharRatio        float64 `json:"weird_char_ratio"`
	DigitRatio            float64 `json:"digit_ratio"`
	NoiseSuspected        bool    `json:"noise_suspected"`
	ErrorCount            int     `json:"error_count"`
	WarningCount          int     `json:"warning_count"`
}

type ValidationResult struct {
	Status   Verdict  `json:"status"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Checks   Checks   `json:"checks"`
}

func (v ValidationResult) Clone() any {
	v.Errors = slices.Clone(v.Errors)
	v.Warnings = slices.Clone(v.Warnings)
	return v
}

type NextStep string

const (
	NextStepRequestInfo   NextStep = "REQUEST_INFO"
	NextStepEscalate      NextStep = "ESCALATE"
	NextStepReadyApproval NextStep = "READY_FOR_HUMAN_APPROVAL"
)

// HumanDecision is model-authored narrative. It never authorizes anything;
// the orchestrator's HumanGateRecord is the only gate.
type HumanDecision struct {
	Decision string `json:"decision"`
	Why      string `json:"why"`
}

type ReviewResult struct {
	CaseSummary          string        `json:"case_summary"`
	Checklist            []string      `json:"checklist"`
	RecommendedNextStep  NextStep      `json:"recommended_next_step"`
	CustomerMessageDraft string        `json:"customer_message_draft"`
	InternalNote         string        `json:"internal_note"`
	HumanMustDecide      HumanDecision `json:"human_must_decide"`
}

func (r ReviewResult) Clone() any {
	r.Checklist = slices.Clone(r.Checklist)
	return r
}

// IsEmpty reports whether the model returned nothing usable.
func (r ReviewResult) IsEmpty() bool {
	return strings.TrimSpace(r.CaseSummary) == "" &&
		len(r.Checklist) == 0 &&
		strings.TrimSpace(r.CustomerMessageDraft) == "" &&
		strings.TrimSpace(r.InternalNote) == ""
}

type Path string

const (
	PathRequestInfo           Path = "REQUEST_INFO"
	PathReadyForHumanApproval Path = "READY_FOR_HUMAN_APPROVAL"
)

// PathFor derives the routing label. It is descriptive only.
func PathFor(v ValidationResult) Path {
	if v.Status == VerdictFail {
		return PathRequestInfo
	}
	return PathReadyForHumanApproval
}

type GateDecision string

const GatePendingApproval GateDecision = "PENDING_HUMAN_APPROVAL"

const GateJustification = "Regulated operational action with financial/identity risk; requires human authorization."

type HumanGateRecord struct {
	Decision GateDecision `json:"decision"`
	Required bool         `json:"required"`
	Why      string       `json:"why"`
}

func PendingGate() HumanGateRecord {
	return HumanGateRecord{
		Decision: GatePendingApproval,
		Required: true,
		Why:      GateJustification,
	}
}

// WorkflowState is the only value a run hands back to its caller.
type WorkflowState struct {
	Fields     FieldRecord      `json:"fields"`
	Validation ValidationResult `json:"validation"`
	Review     ReviewResult     `json:"review"`
	Path       Path             `json:"path"`
	HumanGate  HumanGateRecord  `json:"human_gate"`
}
