package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
	llmx "github.com/tanpawarit/transfer-orchestrator/agent/llm"
	promptx "github.com/tanpawarit/transfer-orchestrator/agent/prompt"
)

const DefaultExtractTemperature = 0.0

type Extractor struct {
	generator   *llmx.Structured[extractionPayload]
	temperature float64
}

func NewExtractor(ctx context.Context, model contractx.ChatModel, prompts promptx.PromptSet, temperature float64) (*Extractor, error) {
	generator, err := llmx.CompileStructured[extractionPayload](ctx, ToolExtractFields, prompts.ExtractionTemplate(), model)
	if err != nil {
		return nil, err
	}
	return &Extractor{
		generator:   generator,
		temperature: temperature,
	}, nil
}

// looseString accepts a JSON string, number or null.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*s = ""
		return nil
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string, number or null, got %s", jsonKind(data))
		}
		*s = looseString(n.String())
		return nil
	}
}

// jsonKind names the kind of a JSON value without echoing it.
func jsonKind(data []byte) string {
	switch data[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	default:
		return "invalid value"
	}
}

type extractionPayload struct {
	ClientFullName       looseString         `json:"client_full_name"`
	ClientEmail          looseString         `json:"client_email"`
	ClientPhone          looseString         `json:"client_phone"`
	SendingInstitution   looseString         `json:"sending_institution"`
	ReceivingInstitution looseString         `json:"receiving_institution"`
	TransferType         looseString         `json:"transfer_type"`
	AccountType          looseString         `json:"account_type"`
	AccountNumberLast4   looseString         `json:"account_number_last4"`
	RequestedDate        looseString         `json:"requested_date"`
	HasSignature         contractx.Signature `json:"has_signature"`
}

// Extract asks the model for the field record and normalizes it. The model
// call is not retried.
func (e *Extractor) Extract(ctx context.Context, text string) (contractx.FieldRecord, error) {
	payload, err := e.generator.Generate(ctx, promptx.ExtractionVars(text), e.temperature)
	if err != nil {
		return contractx.FieldRecord{}, err
	}

	return normalizeFields(payload, text), nil
}

func normalizeFields(p extractionPayload, source string) contractx.FieldRecord {
	return contractx.FieldRecord{
		ClientFullName:       clean(p.ClientFullName),
		ClientEmail:          clean(p.ClientEmail),
		ClientPhone:          clean(p.ClientPhone),
		SendingInstitution:   clean(p.SendingInstitution),
		ReceivingInstitution: clean(p.ReceivingInstitution),
		TransferType:         normalizeTransferType(string(p.TransferType)),
		AccountType:          normalizeAccountType(string(p.AccountType)),
		AccountNumberLast4:   clean(p.AccountNumberLast4),
		RequestedDate:        clean(p.RequestedDate),
		HasSignature:         CoerceSignature(p.HasSignature),
		SourceText:           source,
	}
}

func clean(s looseString) string {
	return strings.TrimSpace(string(s))
}

func enumToken(raw string) string {
	token := strings.ToUpper(strings.TrimSpace(raw))
	return strings.NewReplacer("-", "_", " ", "_").Replace(token)
}

func normalizeTransferType(raw string) contractx.TransferType {
	switch t := contractx.TransferType(enumToken(raw)); t {
	case contractx.TransferFull, contractx.TransferPartial, contractx.TransferCash, contractx.TransferInKind:
		return t
	default:
		return contractx.TransferUnknown
	}
}

func normalizeAccountType(raw string) contractx.AccountType {
	switch t := contractx.AccountType(enumToken(raw)); t {
	case contractx.AccountTFSA, contractx.AccountRRSP, contractx.AccountFHSA, contractx.AccountNonRegistered:
		return t
	case "NONREGISTERED", "NON_REG":
		return contractx.AccountNonRegistered
	default:
		return contractx.AccountUnknown
	}
}
