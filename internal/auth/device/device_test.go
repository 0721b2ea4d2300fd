package device

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DeviceServiceSuite struct {
	suite.Suite
	svc *Service
}

func (s *DeviceServiceSuite) SetupTest() {
	s.svc = NewService(true)
}

func TestDeviceServiceSuite(t *testing.T) {
	suite.Run(t, new(DeviceServiceSuite))
}

// TestUserAgentParsing tests the user-agent string parsing for security-log
// display names.
func (s *DeviceServiceSuite) TestUserAgentParsing() {
	s.Run("empty user agent returns unknown device", func() {
		result := ParseUserAgent("")
		s.Equal("Unknown Device", result)
	})

	s.Run("chrome on desktop includes browser and OS", func() {
		userAgent := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
		result := ParseUserAgent(userAgent)
		s.Contains(result, "Chrome")
		s.Contains(result, "on")
		s.NotContains(result, "  ")
	})

	s.Run("firefox on linux includes browser and OS", func() {
		userAgent := "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
		result := ParseUserAgent(userAgent)
		s.Contains(result, "Firefox")
		s.Contains(result, "on")
	})

	s.Run("unknown user agent still returns a formatted string", func() {
		result := ParseUserAgent("Unknown/1.0")
		s.Contains(result, "on")
		s.NotEmpty(result)
	})

	s.Run("result has no leading or trailing whitespace", func() {
		userAgent := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
		result := ParseUserAgent(userAgent)
		s.Equal(result, strings.TrimSpace(result))
	})
}

// TestFingerprintStability checks that fingerprints are deterministic, stable
// across minor version bumps, and sensitive to major changes.
func (s *DeviceServiceSuite) TestFingerprintStability() {
	s.Run("disabled service returns empty fingerprint", func() {
		disabled := NewService(false)
		fp := disabled.ComputeFingerprint("Mozilla/5.0 (Windows NT 10.0) Chrome/120.0.0.0")
		s.Empty(fp)
	})

	s.Run("missing user agent returns empty fingerprint", func() {
		// Not a hash of "": UA-less clients must not share one scope.
		s.Empty(s.svc.ComputeFingerprint(""))
	})

	s.Run("same user agent yields deterministic fingerprint", func() {
		ua := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

		fp1 := s.svc.ComputeFingerprint(ua)
		fp2 := s.svc.ComputeFingerprint(ua)

		s.Equal(fp1, fp2)
		s.Len(fp1, 64) // SHA-256 hex
	})

	s.Run("minor version changes do not affect fingerprint", func() {
		ua1 := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.6099.109 Safari/537.36"
		ua2 := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.6099.224 Safari/537.36"

		s.Equal(s.svc.ComputeFingerprint(ua1), s.svc.ComputeFingerprint(ua2))
	})

	s.Run("major version changes affect fingerprint", func() {
		ua1 := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
		ua2 := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

		s.NotEqual(s.svc.ComputeFingerprint(ua1), s.svc.ComputeFingerprint(ua2))
	})
}

func (s *DeviceServiceSuite) TestFingerprintComparison() {
	s.Run("mismatch reports drift", func() {
		matched, drift := s.svc.CompareFingerprints("a", "b")
		s.False(matched)
		s.True(drift)
	})

	s.Run("match reports no drift", func() {
		matched, drift := s.svc.CompareFingerprints("abc", "abc")
		s.True(matched)
		s.False(drift)
	})
}
