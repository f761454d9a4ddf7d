package server_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carn181/phplsp/server"
	"github.com/carn181/phplsp/transport"
)

func pos(line, char uint32) transport.Position {
	return transport.Position{Line: line, Character: char}
}

func TestPositionToOffset(t *testing.T) {
	content := "ab\ncd\n"

	tests := []struct {
		name string
		pos  transport.Position
		want int
	}{
		{"start", pos(0, 0), 0},
		{"mid first line", pos(0, 1), 1},
		{"line two", pos(1, 0), 3},
		{"line two char", pos(1, 2), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := server.PositionToOffset(tt.pos, content, "utf-16")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPositionToOffsetAstralPlane(t *testing.T) {
	// 😀 is two UTF-16 code units but four bytes.
	content := "😀x"

	got, err := server.PositionToOffset(pos(0, 2), content, "utf-16")
	require.NoError(t, err)
	assert.Equal(t, 4, got)

	got, err = server.PositionToOffset(pos(0, 1), content, "utf-32")
	require.NoError(t, err)
	assert.Equal(t, 4, got)
}

func TestOffsetToPositionRoundTrip(t *testing.T) {
	content := "ab\n😀d\nx"
	for _, encoding := range []string{"utf-8", "utf-16", "utf-32"} {
		for offset := 0; offset <= len(content); offset++ {
			p, err := server.OffsetToPosition(offset, content, encoding)
			require.NoError(t, err)
			back, err := server.PositionToOffset(p, content, encoding)
			require.NoError(t, err)
			// Offsets inside a rune round down to its start.
			assert.LessOrEqual(t, back, offset, "encoding %s offset %d", encoding, offset)
		}
	}
}

func TestApplyIncrementalChange(t *testing.T) {
	content := "$a = 1;\n$b = 2;\n"

	result, err := server.ApplyIncrementalChange(
		transport.Range{Start: pos(1, 5), End: pos(1, 6)},
		"42", content, "utf-16",
	)
	require.NoError(t, err)
	assert.Equal(t, "$a = 1;\n$b = 42;\n", result)
}

func TestApplyIncrementalChangeInsert(t *testing.T) {
	result, err := server.ApplyIncrementalChange(
		transport.Range{Start: pos(0, 0), End: pos(0, 0)},
		"<?php\n", "", "utf-16",
	)
	require.NoError(t, err)
	assert.Equal(t, "<?php\n", result)
}

func TestApplyIncrementalChangeBadRange(t *testing.T) {
	_, err := server.ApplyIncrementalChange(
		transport.Range{Start: pos(9, 0), End: pos(9, 1)},
		"x", "short", "utf-16",
	)
	assert.Error(t, err)
}
