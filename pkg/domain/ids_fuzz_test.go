//go:build go1.18

package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParsePolicyID checks that parsing never panics and that accepted IDs round-trip.
func FuzzParsePolicyID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE policies;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParsePolicyID(input)
		if err == nil {
			roundTrip, err2 := ParsePolicyID(id.String())
			if err2 != nil {
				t.Errorf("valid ID failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("round-trip changed ID value")
			}
		}
		if !utf8.ValidString(input) && err == nil {
			t.Error("non-UTF8 input was accepted")
		}
	})
}

// FuzzParseLoanID checks that accepted loan ids are always positive.
func FuzzParseLoanID(f *testing.F) {
	f.Add("1")
	f.Add("-1")
	f.Add("9223372036854775808")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseLoanID(input)
		if err == nil && id <= 0 {
			t.Errorf("accepted non-positive loan id %d", id)
		}
	})
}
