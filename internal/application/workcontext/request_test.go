package workcontext

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestRequestFingerprint(t *testing.T) {
	base := &Request{IP: "203.0.113.7", UserAgent: "Mozilla/5.0"}

	t.Run("stable across user agent casing", func(t *testing.T) {
		upper := &Request{IP: "203.0.113.7", UserAgent: "MOZILLA/5.0"}
		assert.Equal(t, base.Fingerprint(), upper.Fingerprint())
	})

	t.Run("differs per address", func(t *testing.T) {
		other := &Request{IP: "203.0.113.8", UserAgent: "Mozilla/5.0"}
		assert.NotEqual(t, base.Fingerprint(), other.Fingerprint())
	})

	t.Run("hex encoded digest", func(t *testing.T) {
		fp := base.Fingerprint()
		assert.Len(t, fp, 64)
	})
}

func TestSanitizeVisitedURL(t *testing.T) {
	t.Run("drops fragment", func(t *testing.T) {
		assert.Equal(t, "https://a/b", SanitizeVisitedURL("https://a/b#section", 100))
	})

	t.Run("trims whitespace and control characters", func(t *testing.T) {
		assert.Equal(t, "https://a/b", SanitizeVisitedURL("  https://a/\x00b\n", 100))
	})

	t.Run("truncates to the field limit", func(t *testing.T) {
		long := "https://a/" + strings.Repeat("p", 100)
		assert.Len(t, SanitizeVisitedURL(long, 32), 32)
	})

	t.Run("truncation never splits a multi-byte rune", func(t *testing.T) {
		long := "https://a/" + strings.Repeat("ü", 100)
		got := SanitizeVisitedURL(long, 33)
		assert.True(t, utf8.ValidString(got))
		assert.LessOrEqual(t, len(got), 33)
	})

	t.Run("empty input stays empty", func(t *testing.T) {
		assert.Empty(t, SanitizeVisitedURL("", 100))
	})
}

func TestClipKeepsRuneBoundaries(t *testing.T) {
	s := strings.Repeat("é", 50) // 2 bytes per rune

	got := clip(s, 33)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 32, len(got))

	assert.Equal(t, s, clip(s, 100))
	assert.Empty(t, clip(s, 0))
}
