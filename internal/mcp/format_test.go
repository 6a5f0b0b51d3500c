package mcp

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestTruncateAuthor_ShortPassesThrough(t *testing.T) {
	require.Equal(t, "Ada Lovelace", truncateAuthor("Ada Lovelace"))
}

func TestTruncateAuthor_LongASCII(t *testing.T) {
	long := strings.Repeat("a", maxAuthorLen+40)
	got := truncateAuthor(long)
	require.Equal(t, strings.Repeat("a", maxAuthorLen)+"...", got)
}

func TestTruncateAuthor_MultiByteRuneBoundary(t *testing.T) {
	// One ASCII byte followed by 3-byte runes misaligns the byte limit so it
	// lands inside a rune.
	long := "a" + strings.Repeat("研", maxAuthorLen)
	got := truncateAuthor(long)
	require.True(t, utf8.ValidString(got), "truncated author must stay valid UTF-8")
	require.True(t, strings.HasSuffix(got, "..."))
	require.LessOrEqual(t, len(got), maxAuthorLen+len("..."))
	require.True(t, strings.HasPrefix(got, "a研"))
}
