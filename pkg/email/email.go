// Package email derives presentable names from email-style contact handles.
package email

import (
	"strings"
	"unicode"
)

// DeriveDisplayName builds a display name from the local part of an
// email-style handle: "ada.lovelace@example.com" becomes "Ada Lovelace",
// "grace@example.com" becomes "Grace". Handles with no usable local part
// fall back to "Voter".
func DeriveDisplayName(handle string) string {
	local := handle
	if at := strings.IndexByte(handle, '@'); at >= 0 {
		local = handle[:at]
	}

	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "Voter"
	}

	name := capitalize(parts[0])
	if len(parts) > 1 {
		name += " " + capitalize(parts[len(parts)-1])
	}
	return name
}

func capitalize(s string) string {
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
