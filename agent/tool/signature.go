package tool

import (
	"strings"

	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
)

var (
	affirmativeSignatureTokens = map[string]struct{}{
		"yes": {}, "y": {}, "true": {}, "signed": {}, "present": {},
		"signature present": {}, "has signature": {}, "wet signed": {}, "e-signed": {},
	}
	negativeSignatureTokens = map[string]struct{}{
		"no": {}, "n": {}, "false": {}, "not signed": {}, "unsigned": {},
		"absent": {}, "missing": {}, "none": {}, "signature missing": {}, "no signature": {},
	}
)

// CoerceSignature resolves a free-text signature flag into true/false when
// it matches a known token. Anything else stays unresolved.
func CoerceSignature(sig contractx.Signature) contractx.Signature {
	if sig.State != contractx.SignatureAmbiguous {
		return sig
	}

	raw := strings.TrimSpace(sig.Raw)
	if raw == "" {
		return contractx.Signature{}
	}

	token := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	if _, ok := affirmativeSignatureTokens[token]; ok {
		return contractx.SignatureOf(true)
	}
	if _, ok := negativeSignatureTokens[token]; ok {
		return contractx.SignatureOf(false)
	}
	return contractx.UnresolvedSignature(raw)
}
