// Package device derives stable client-scope identifiers from User-Agent
// strings. The fingerprint keys the login attempt guard, so it must survive
// routine browser auto-updates without collapsing distinct devices together.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/mssola/useragent"
)

// minorVersionPattern matches the minor/patch tail of product versions
// (e.g. "120.0.6099.109" -> "120"). Browsers bump these weekly.
var minorVersionPattern = regexp.MustCompile(`(/\d+)\.[\d.]+`)

// Service computes and compares device fingerprints. When disabled it
// returns empty fingerprints and the guard falls back to origin-only scoping.
type Service struct {
	enabled bool
}

func NewService(enabled bool) *Service {
	return &Service{enabled: enabled}
}

// ParseUserAgent turns a raw User-Agent into a short display name for the
// security log, like "Chrome on Mac OS X".
func ParseUserAgent(rawUA string) string {
	if rawUA == "" {
		return "Unknown Device"
	}

	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()
	os := ua.OS()

	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(browser + " on " + os)
}

// ComputeFingerprint hashes the User-Agent with minor versions stripped, so
// a patch release does not reset the client's attempt window. A missing
// User-Agent yields no fingerprint; hashing the empty string would herd
// every UA-less client into one shared scope.
func (s *Service) ComputeFingerprint(rawUA string) string {
	if !s.enabled || rawUA == "" {
		return ""
	}

	normalized := minorVersionPattern.ReplaceAllString(rawUA, "$1")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// CompareFingerprints reports whether two fingerprints match and whether the
// difference counts as drift.
func (s *Service) CompareFingerprints(stored, current string) (matched, drift bool) {
	matched = stored == current
	return matched, !matched
}
