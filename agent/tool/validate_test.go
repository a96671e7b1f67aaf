package tool

import (
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
)

var validationDay = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func completeFields() contractx.FieldRecord {
	return contractx.FieldRecord{
		ClientFullName:       "Jane O'Neil-Doe",
		ClientEmail:          "jane@example.com",
		ClientPhone:          "+1 416 555 0134",
		SendingInstitution:   "North Bank",
		ReceivingInstitution: "Maple Trust",
		TransferType:         contractx.TransferFull,
		AccountType:          contractx.AccountTFSA,
		AccountNumberLast4:   "1234",
		RequestedDate:        "2026-01-20",
		HasSignature:         contractx.SignatureOf(true),
		SourceText:           "Please transfer my TFSA in full. Signed, Jane.",
	}
}

func TestValidateFieldsPass(t *testing.T) {
	t.Parallel()

	res := ValidateFields(completeFields(), validationDay)
	if res.Status != contractx.VerdictPass {
		t.Fatalf("expected PASS, got %s (errors=%v warnings=%v)", res.Status, res.Errors, res.Warnings)
	}
	if !res.Checks.RequiredFieldsPresent || res.Checks.ErrorCount != 0 || res.Checks.WarningCount != 0 {
		t.Fatalf("unexpected checks: %+v", res.Checks)
	}
	if res.Checks.Signature != "present" {
		t.Fatalf("unexpected signature check: %s", res.Checks.Signature)
	}
}

func TestValidateFieldsMissingRequired(t *testing.T) {
	t.Parallel()

	f := completeFields()
	f.ClientFullName = "  "
	f.TransferType = ""

	res := ValidateFields(f, validationDay)
	if res.Status != contractx.VerdictFail {
		t.Fatalf("expected FAIL, got %s", res.Status)
	}
	want := []string{
		"Missing required field: client_full_name.",
		"Missing required field: transfer_type.",
	}
	if !reflect.DeepEqual(res.Errors, want) {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if res.Checks.MissingRequired != 2 || res.Checks.RequiredFieldsPresent {
		t.Fatalf("unexpected checks: %+v", res.Checks)
	}
}

func TestValidateFieldsLast4Format(t *testing.T) {
	t.Parallel()

	f := completeFields()
	f.AccountNumberLast4 = "12a4"

	res := ValidateFields(f, validationDay)
	if res.Status != contractx.VerdictWarn {
		t.Fatalf("expected WARN, got %s", res.Status)
	}
	if !slices.Contains(res.Warnings, "Account number last4 must be exactly 4 digits.") {
		t.Fatalf("expected last4 warning, got %v", res.Warnings)
	}
	if res.Checks.FormatWarnings != 1 {
		t.Fatalf("unexpected format warning count: %d", res.Checks.FormatWarnings)
	}
}

func TestValidateFieldsContactFormats(t *testing.T) {
	t.Parallel()

	f := completeFields()
	f.ClientEmail = "jane at example"
	f.ClientPhone = "call me"

	res := ValidateFields(f, validationDay)
	if res.Checks.FormatWarnings != 2 {
		t.Fatalf("expected two format warnings, got %v", res.Warnings)
	}

	f.ClientPhone = "(416) 555-1234"
	f.ClientEmail = ""
	if res := ValidateFields(f, validationDay); res.Status != contractx.VerdictPass {
		t.Fatalf("expected PASS for formatted phone, got %v", res.Warnings)
	}
}

func TestValidateFieldsSignatureNegativeText(t *testing.T) {
	t.Parallel()

	f := completeFields()
	f.HasSignature = CoerceSignature(contractx.UnresolvedSignature("not signed"))

	res := ValidateFields(f, validationDay)
	if res.Status != contractx.VerdictFail {
		t.Fatalf("expected FAIL, got %s", res.Status)
	}
	if !slices.Contains(res.Errors, "Missing signature.") {
		t.Fatalf("expected missing signature error, got %v", res.Errors)
	}
}

func TestValidateFieldsNullLast4AndSignature(t *testing.T) {
	t.Parallel()

	f := completeFields()
	f.AccountNumberLast4 = ""
	f.HasSignature = contractx.Signature{}

	res := ValidateFields(f, validationDay)
	if res.Status != contractx.VerdictWarn {
		t.Fatalf("expected WARN, got %s", res.Status)
	}
	if !reflect.DeepEqual(res.Warnings, []string{"Signature presence unclear."}) {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
}

func TestValidateFieldsAmbiguousSignature(t *testing.T) {
	t.Parallel()

	f := completeFields()
	f.HasSignature = contractx.UnresolvedSignature("initials only")

	res := ValidateFields(f, validationDay)
	if res.Status != contractx.VerdictWarn {
		t.Fatalf("expected WARN, got %s", res.Status)
	}
	if res.Checks.Signature != "ambiguous" {
		t.Fatalf("unexpected signature check: %s", res.Checks.Signature)
	}
}

func TestValidateFieldsRequestedDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		date string
		asOf time.Time
		want string
	}{
		{name: "bad format", date: "Jan 5 2026", asOf: validationDay, want: "Requested date not YYYY-MM-DD; could not validate freshness."},
		{name: "stale", date: "2025-10-01", asOf: validationDay, want: "Requested date older than 60 days; may require re-authorization."},
		{name: "fresh", date: "2026-01-15", asOf: validationDay},
		{name: "no clock", date: "2020-01-01", asOf: time.Time{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := completeFields()
			f.RequestedDate = tc.date
			res := ValidateFields(f, tc.asOf)
			if tc.want == "" {
				if res.Status != contractx.VerdictPass {
					t.Fatalf("expected PASS, got %v", res.Warnings)
				}
				return
			}
			if !slices.Contains(res.Warnings, tc.want) {
				t.Fatalf("expected %q, got %v", tc.want, res.Warnings)
			}
		})
	}
}

func TestValidateFieldsNameSanity(t *testing.T) {
	t.Parallel()

	f := completeFields()
	f.ClientFullName = "J4ne D0e"

	res := ValidateFields(f, validationDay)
	if res.Status != contractx.VerdictWarn {
		t.Fatalf("expected WARN, got %s", res.Status)
	}
	if !strings.Contains(strings.Join(res.Warnings, " "), "Client name contains digits or symbols") {
		t.Fatalf("expected name warning, got %v", res.Warnings)
	}
}

func TestValidateFieldsUnknownEnums(t *testing.T) {
	t.Parallel()

	f := completeFields()
	f.TransferType = contractx.TransferUnknown
	f.AccountType = contractx.AccountUnknown

	res := ValidateFields(f, validationDay)
	if res.Status != contractx.VerdictWarn {
		t.Fatalf("expected WARN, got %s (%v)", res.Status, res.Errors)
	}
	want := []string{"Transfer type is unknown.", "Account type is unknown."}
	if !reflect.DeepEqual(res.Warnings, want) {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
}

func TestValidateFieldsNoise(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		sourceText string
		wantNoise  bool
		wantWeird  float64
		wantDigits float64
	}{
		{
			name:       "mixed noise",
			sourceText: "Acct 0042 1187 3390 ref 7781 ~~ ## ^^ || Jane",
			wantNoise:  true,
			wantWeird:  -1,
			wantDigits: -1,
		},
		{
			name:       "weird chars only",
			sourceText: strings.Repeat("a", 49) + "~",
			wantNoise:  true,
			wantWeird:  0.02,
			wantDigits: 0,
		},
		{
			name:       "digits only",
			sourceText: strings.Repeat("a", 87) + strings.Repeat("7", 13),
			wantNoise:  true,
			wantWeird:  0,
			wantDigits: 0.13,
		},
		{
			name:       "both at threshold",
			sourceText: strings.Repeat("a", 87) + "~" + strings.Repeat("7", 12),
			wantNoise:  false,
			wantWeird:  WeirdCharRatioThreshold,
			wantDigits: DigitRatioThreshold,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := completeFields()
			f.SourceText = tt.sourceText

			res := ValidateFields(f, validationDay)
			if res.Checks.NoiseSuspected != tt.wantNoise {
				t.Fatalf("NoiseSuspected = %v, want %v (checks=%+v)", res.Checks.NoiseSuspected, tt.wantNoise, res.Checks)
			}
			if tt.wantWeird >= 0 && res.Checks.WeirdCharRatio != tt.wantWeird {
				t.Fatalf("WeirdCharRatio = %v, want %v", res.Checks.WeirdCharRatio, tt.wantWeird)
			}
			if tt.wantDigits >= 0 && res.Checks.DigitRatio != tt.wantDigits {
				t.Fatalf("DigitRatio = %v, want %v", res.Checks.DigitRatio, tt.wantDigits)
			}

			wantStatus := contractx.VerdictPass
			if tt.wantNoise {
				wantStatus = contractx.VerdictWarn
			}
			if res.Status != wantStatus {
				t.Fatalf("expected %s, got %s (warnings=%v)", wantStatus, res.Status, res.Warnings)
			}
			if got := res.Checks.WarningCount; tt.wantNoise && got != 1 || !tt.wantNoise && got != 0 {
				t.Fatalf("unexpected warning count %d: %v", got, res.Warnings)
			}
		})
	}
}

func TestValidateFieldsDeterministic(t *testing.T) {
	t.Parallel()

	f := completeFields()
	f.AccountNumberLast4 = "12a4"
	f.HasSignature = contractx.Signature{}

	first := ValidateFields(f, validationDay)
	second := ValidateFields(f, validationDay)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("validation is not deterministic:\n%+v\n%+v", first, second)
	}
}
