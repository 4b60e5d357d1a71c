package handler

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestMessageExcerptShortBodyUntouched(t *testing.T) {
	assert.Equal(t, "turn it up", messageExcerpt("turn it up", 80))
	assert.Equal(t, "", messageExcerpt("", 80))
}

func TestMessageExcerptTruncatesLongBody(t *testing.T) {
	long := strings.Repeat("a", 200)
	got := messageExcerpt(long, 80)
	assert.Len(t, got, 80)
}

func TestMessageExcerptKeepsRunesWhole(t *testing.T) {
	// The leading ASCII byte shifts every 2-byte rune off the limit,
	// so byte 80 lands mid-rune and the cut must back up to 79.
	long := "x" + strings.Repeat("é", 100)
	got := messageExcerpt(long, 80)
	assert.True(t, utf8.ValidString(got), "excerpt %q is not valid UTF-8", got)
	assert.Equal(t, "x"+strings.Repeat("é", 39), got)
	assert.Len(t, got, 79)

	// A 4-byte rune straddling the limit forces a 3-byte backup.
	long = "xy" + strings.Repeat("🎵", 30)
	got = messageExcerpt(long, 80)
	assert.True(t, utf8.ValidString(got), "excerpt %q is not valid UTF-8", got)
	assert.Equal(t, "xy"+strings.Repeat("🎵", 19), got)
	assert.Len(t, got, 78)
}
