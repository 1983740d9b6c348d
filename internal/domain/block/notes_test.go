package block_test

import (
	"strings"
	"testing"

	"github.com/pawdiary/pawdiary/internal/domain/block"
	"github.com/stretchr/testify/require"
)

func TestCountNotes_Levels(t *testing.T) {
	cases := []struct {
		n    int
		want block.CounterLevel
	}{
		{0, block.CounterNormal},
		{79, block.CounterNormal},
		{80, block.CounterWarning},
		{94, block.CounterWarning},
		{95, block.CounterCritical},
		{100, block.CounterCritical},
		{101, block.CounterExceeded},
	}
	for _, tc := range cases {
		c := block.CountNotes(strings.Repeat("a", tc.n), 100)
		require.Equal(t, tc.want, c.Level, "n=%d", tc.n)
		require.Equal(t, 100-tc.n, c.Remaining)
	}

	c := block.CountNotes("héllo", 0)
	require.Equal(t, 5, c.Length)
	require.Equal(t, block.DefaultNotesMaxLength, c.Max)
}

func TestApplyMarkup(t *testing.T) {
	require.Equal(t, "ate **all** of it", block.ApplyMarkup("ate all of it", 4, 7, block.MarkupBold))
	require.Equal(t, "ate all of it", block.ApplyMarkup("ate **all** of it", 4, 11, block.MarkupBold))
	require.Equal(t, "_wow_", block.ApplyMarkup("wow", 0, 3, block.MarkupItalic))

	text := "intro\nfirst\nsecond"
	bulleted := block.ApplyMarkup(text, 8, len(text), block.MarkupBullet)
	require.Equal(t, "intro\n- first\n- second", bulleted)
	require.Equal(t, text, block.ApplyMarkup(bulleted, 8, len(bulleted), block.MarkupBullet))

	require.Equal(t, "plain", block.ApplyMarkup("plain", 0, 5, block.Markup("strike")))
}
