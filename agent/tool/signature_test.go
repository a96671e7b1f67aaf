package tool

import (
	"testing"

	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
)

func TestCoerceSignature(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   contractx.Signature
		want contractx.SignatureState
	}{
		{contractx.SignatureOf(true), contractx.SignaturePresent},
		{contractx.SignatureOf(false), contractx.SignatureAbsent},
		{contractx.Signature{}, contractx.SignatureUnknown},
		{contractx.UnresolvedSignature("Signed"), contractx.SignaturePresent},
		{contractx.UnresolvedSignature("  YES "), contractx.SignaturePresent},
		{contractx.UnresolvedSignature("not   signed"), contractx.SignatureAbsent},
		{contractx.UnresolvedSignature("Unsigned"), contractx.SignatureAbsent},
		{contractx.UnresolvedSignature("no signature"), contractx.SignatureAbsent},
		{contractx.UnresolvedSignature("   "), contractx.SignatureUnknown},
		{contractx.UnresolvedSignature("initials only"), contractx.SignatureAmbiguous},
		{contractx.UnresolvedSignature("signed?"), contractx.SignatureAmbiguous},
	}

	for _, tc := range tests {
		got := CoerceSignature(tc.in)
		if got.State != tc.want {
			t.Fatalf("CoerceSignature(%+v) = %s, want %s", tc.in, got.State, tc.want)
		}
	}

	kept := CoerceSignature(contractx.UnresolvedSignature(" initials only "))
	if kept.Raw != "initials only" {
		t.Fatalf("expected trimmed raw value, got %q", kept.Raw)
	}
}
