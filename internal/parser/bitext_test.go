package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBiColumnBitext(t *testing.T) {
	t.Run("returns one segment per data row in input order", func(t *testing.T) {
		input := "The cat sat.\tLe chat s'assit.\n" +
			"It rained.\tIl pleuvait.\n" +
			"Good morning everyone.\tBonjour tout le monde.\n"

		result, err := ParseBiColumnBitext(input)
		require.NoError(t, err)

		require.Len(t, result.Segments, 3)
		assert.Equal(t, "The cat sat.", result.Segments[0].Source)
		assert.Equal(t, "Le chat s'assit.", result.Segments[0].Target)
		assert.Equal(t, "It rained.", result.Segments[1].Source)
		assert.Equal(t, "Bonjour tout le monde.", result.Segments[2].Target)
	})

	t.Run("word counts sum whitespace tokens over all rows", func(t *testing.T) {
		input := "one two three\tuno dos\n" +
			"four\ttres cuatro cinco\n"

		result, err := ParseBiColumnBitext(input)
		require.NoError(t, err)

		assert.Equal(t, 4, result.SourceWordCount)
		assert.Equal(t, 5, result.TargetWordCount)
	})

	t.Run("skips a leading header row", func(t *testing.T) {
		input := "Source\tTarget\n" +
			"hello\tbonjour\n"

		result, err := ParseBiColumnBitext(input)
		require.NoError(t, err)

		require.Len(t, result.Segments, 1)
		assert.Equal(t, "hello", result.Segments[0].Source)
		assert.Equal(t, 1, result.SourceWordCount)
	})

	t.Run("ignores blank lines and CRLF endings", func(t *testing.T) {
		input := "hello\tbonjour\r\n\r\nworld\tmonde\r\n"

		result, err := ParseBiColumnBitext(input)
		require.NoError(t, err)

		require.Len(t, result.Segments, 2)
		assert.Equal(t, "monde", result.Segments[1].Target)
	})

	t.Run("fails on a row missing the target column", func(t *testing.T) {
		input := "hello\tbonjour\nonly source\n"

		_, err := ParseBiColumnBitext(input)
		require.Error(t, err)

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Contains(t, parseErr.Reason, "line 2")
	})

	t.Run("fails on empty input", func(t *testing.T) {
		_, err := ParseBiColumnBitext("")
		require.Error(t, err)

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Contains(t, parseErr.Reason, "no segments")
	})

	t.Run("fails when only a header row is present", func(t *testing.T) {
		_, err := ParseBiColumnBitext("source\ttarget\n")
		require.Error(t, err)
	})
}
