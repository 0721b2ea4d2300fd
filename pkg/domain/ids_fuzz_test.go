package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParsePrincipalID checks that parsing never panics and that every
// accepted value round-trips through String.
func FuzzParsePrincipalID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE votes;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParsePrincipalID(input)
		if err != nil {
			return
		}

		roundTrip, err := ParsePrincipalID(id.String())
		if err != nil {
			t.Errorf("accepted ID failed round-trip: %v", err)
		}
		if roundTrip != id {
			t.Error("round-trip changed ID value")
		}
		if !utf8.ValidString(input) {
			t.Error("non-UTF8 input was accepted")
		}
	})
}

// FuzzParseAllIDs checks the ID types share one validation behavior: an
// input either parses for all of them or for none.
func FuzzParseAllIDs(f *testing.F) {
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("")
	f.Add("invalid")

	f.Fuzz(func(t *testing.T, input string) {
		_, errPrincipal := ParsePrincipalID(input)
		_, errBallot := ParseBallotID(input)
		_, errSession := ParseSessionID(input)
		_, errCredential := ParseCredentialID(input)

		accepted := errPrincipal == nil
		for _, err := range []error{errBallot, errSession, errCredential} {
			if (err == nil) != accepted {
				t.Error("inconsistent validation across ID types")
			}
		}
	})
}
