package tool

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
)

const (
	WeirdCharRatioThreshold = 0.01
	DigitRatioThreshold     = 0.12

	RequestedDateLayout = "2006-01-02"
	RequestedDateMaxAge = 60 * 24 * time.Hour

	ordinaryPunctuation   = ".,:;'\"-()/@&#%+?!$"
	personNamePunctuation = ".'-"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9(][0-9 ().\-]{5,22}[0-9]$`)
	last4Pattern = regexp.MustCompile(`^[0-9]{4}$`)
)

type requiredField struct {
	name  string
	value func(contractx.FieldRecord) string
}

var requiredFields = []requiredField{
	{"client_full_name", func(f contractx.FieldRecord) string { return f.ClientFullName }},
	{"receiving_institution", func(f contractx.FieldRecord) string { return f.ReceivingInstitution }},
	{"transfer_type", func(f contractx.FieldRecord) string { return string(f.TransferType) }},
	{"account_type", func(f contractx.FieldRecord) string { return string(f.AccountType) }},
}

// ValidateFields evaluates the deterministic rules. The result depends only
// on fields and asOf; a zero asOf skips the date freshness rule.
func ValidateFields(fields contractx.FieldRecord, asOf time.Time) contractx.ValidationResult {
	errs := make([]string, 0, 4)
	warns := make([]string, 0, 4)
	checks := contractx.Checks{}

	for _, rf := range requiredFields {
		if strings.TrimSpace(rf.value(fields)) == "" {
			errs = append(errs, fmt.Sprintf("Missing required field: %s.", rf.name))
			checks.MissingRequired++
		}
	}
	checks.RequiredFieldsPresent = checks.MissingRequired == 0

	formatBefore := len(warns)
	if v := strings.TrimSpace(fields.ClientEmail); v != "" && !emailPattern.MatchString(v) {
		warns = append(warns, "Client email appears invalid format.")
	}
	if v := strings.TrimSpace(fields.ClientPhone); v != "" && !phonePattern.MatchString(v) {
		warns = append(warns, "Client phone appears invalid format.")
	}
	if v := strings.TrimSpace(fields.AccountNumberLast4); v != "" && !last4Pattern.MatchString(v) {
		warns = append(warns, "Account number last4 must be exactly 4 digits.")
	}
	checks.FormatWarnings = len(warns) - formatBefore

	checks.Signature = fields.HasSignature.State.String()
	switch fields.HasSignature.State {
	case contractx.SignatureAbsent:
		errs = append(errs, "Missing signature.")
	case contractx.SignatureUnknown:
		warns = append(warns, "Signature presence unclear.")
	case contractx.SignatureAmbiguous:
		warns = append(warns, fmt.Sprintf("Signature value %q is ambiguous; verify signature manually.", fields.HasSignature.Raw))
	}

	warns = append(warns, requestedDateWarnings(fields.RequestedDate, asOf)...)

	if name := strings.TrimSpace(fields.ClientFullName); name != "" && !plausiblePersonName(name) {
		warns = append(warns, "Client name contains digits or symbols; possible extraction error, verify against the source document.")
	}

	if fields.TransferType == contractx.TransferUnknown {
		warns = append(warns, "Transfer type is unknown.")
	}
	if fields.AccountType == contractx.AccountUnknown {
		warns = append(warns, "Account type is unknown.")
	}

	checks.WeirdCharRatio, checks.DigitRatio = textNoise(fields.SourceText)
	if checks.WeirdCharRatio > WeirdCharRatioThreshold || checks.DigitRatio > DigitRatioThreshold {
		checks.NoiseSuspected = true
		warns = append(warns, fmt.Sprintf(
			"Source text looks noisy (weird-char ratio %.3f, digit ratio %.3f); recommend human verification of extracted fields.",
			checks.WeirdCharRatio, checks.DigitRatio,
		))
	}

	checks.ErrorCount = len(errs)
	checks.WarningCount = len(warns)

	return contractx.ValidationResult{
		Status:   verdictFor(errs, warns),
		Errors:   errs,
		Warnings: warns,
		Checks:   checks,
	}
}

func verdictFor(errs, warns []string) contractx.Verdict {
	switch {
	case len(errs) > 0:
		return contractx.VerdictFail
	case len(warns) > 0:
		return contractx.VerdictWarn
	default:
		return contractx.VerdictPass
	}
}

func requestedDateWarnings(raw string, asOf time.Time) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	dt, err := time.Parse(RequestedDateLayout, raw)
	if err != nil {
		return []string{"Requested date not YYYY-MM-DD; could not validate freshness."}
	}
	if !asOf.IsZero() && dt.Before(asOf.UTC().Add(-RequestedDateMaxAge)) {
		return []string{"Requested date older than 60 days; may require re-authorization."}
	}
	return nil
}

func plausiblePersonName(name string) bool {
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsSpace(r):
		case strings.ContainsRune(personNamePunctuation, r):
		default:
			return false
		}
	}
	return true
}

// textNoise returns the share of unusual punctuation and of digits in text.
func textNoise(text string) (weird float64, digits float64) {
	var total, weirdCount, digitCount int
	for _, r := range text {
		total++
		switch {
		case unicode.IsDigit(r):
			digitCount++
		case unicode.IsLetter(r), unicode.IsSpace(r):
		case strings.ContainsRune(ordinaryPunctuation, r):
		default:
			weirdCount++
		}
	}
	if total == 0 {
		return 0, 0
	}
	return float64(weirdCount) / float64(total), float64(digitCount) / float64(total)
}
