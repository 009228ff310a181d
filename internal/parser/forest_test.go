package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestBuildIssueForest(t *testing.T) {
	t.Run("attaches children under their parents in input order", func(t *testing.T) {
		rows := []IssueRow{
			{Issue: "accuracy", Name: "Accuracy"},
			{Issue: "mistranslation", Parent: strPtr("accuracy"), Name: "Mistranslation"},
			{Issue: "omission", Parent: strPtr("accuracy"), Name: "Omission"},
			{Issue: "fluency", Name: "Fluency"},
			{Issue: "grammar", Parent: strPtr("fluency"), Name: "Grammar"},
		}

		forest := BuildIssueForest(rows)

		require.Len(t, forest, 2)
		assert.Equal(t, "accuracy", forest[0].Issue)
		assert.Equal(t, "fluency", forest[1].Issue)

		require.Len(t, forest[0].Children, 2)
		assert.Equal(t, "mistranslation", forest[0].Children[0].Issue)
		assert.Equal(t, "omission", forest[0].Children[1].Issue)

		require.Len(t, forest[1].Children, 1)
		assert.Equal(t, "grammar", forest[1].Children[0].Issue)
	})

	t.Run("skips rows whose parent is not in the input", func(t *testing.T) {
		rows := []IssueRow{
			{Issue: "grammar", Parent: strPtr("fluency")},
			{Issue: "accuracy"},
		}

		forest := BuildIssueForest(rows)

		require.Len(t, forest, 1)
		assert.Equal(t, "accuracy", forest[0].Issue)
	})

	t.Run("supports nesting deeper than two levels", func(t *testing.T) {
		rows := []IssueRow{
			{Issue: "a"},
			{Issue: "b", Parent: strPtr("a")},
			{Issue: "c", Parent: strPtr("b")},
		}

		forest := BuildIssueForest(rows)

		require.Len(t, forest, 1)
		require.Len(t, forest[0].Children, 1)
		require.Len(t, forest[0].Children[0].Children, 1)
		assert.Equal(t, "c", forest[0].Children[0].Children[0].Issue)
	})

	t.Run("returns no roots for empty input", func(t *testing.T) {
		assert.Empty(t, BuildIssueForest(nil))
	})
}
