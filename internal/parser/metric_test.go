package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMetric = `
<issues>
  <issue id="accuracy" display="yes">
    <name>Accuracy</name>
    <description>The target text does not accurately reflect the source text.</description>
    <issue id="mistranslation" display="yes">
      <name>Mistranslation</name>
    </issue>
    <issue id="omission" display="no">
      <name>Omission</name>
    </issue>
  </issue>
  <issue id="fluency" display="yes">
    <name>Fluency</name>
    <issue id="grammar" display="yes">
      <name>Grammar</name>
    </issue>
  </issue>
</issues>`

func TestParseMetricXML(t *testing.T) {
	t.Run("flattens roots and children pre-order", func(t *testing.T) {
		flat, err := ParseMetricXML([]byte(sampleMetric))
		require.NoError(t, err)

		// 2 roots + 3 children
		require.Len(t, flat, 5)

		ids := make([]string, 0, len(flat))
		for _, entry := range flat {
			ids = append(ids, entry.Issue)
		}
		assert.Equal(t, []string{"accuracy", "mistranslation", "omission", "fluency", "grammar"}, ids)
	})

	t.Run("roots have nil parent, children their container", func(t *testing.T) {
		flat, err := ParseMetricXML([]byte(sampleMetric))
		require.NoError(t, err)

		byID := make(map[string]FlatIssue)
		for _, entry := range flat {
			byID[entry.Issue] = entry
		}

		assert.Nil(t, byID["accuracy"].Parent)
		assert.Nil(t, byID["fluency"].Parent)
		require.NotNil(t, byID["mistranslation"].Parent)
		assert.Equal(t, "accuracy", *byID["mistranslation"].Parent)
		require.NotNil(t, byID["grammar"].Parent)
		assert.Equal(t, "fluency", *byID["grammar"].Parent)
	})

	t.Run("maps the display attribute", func(t *testing.T) {
		flat, err := ParseMetricXML([]byte(sampleMetric))
		require.NoError(t, err)

		byID := make(map[string]FlatIssue)
		for _, entry := range flat {
			byID[entry.Issue] = entry
		}

		assert.True(t, byID["accuracy"].Display)
		assert.False(t, byID["omission"].Display)
	})

	t.Run("carries catalogue metadata", func(t *testing.T) {
		flat, err := ParseMetricXML([]byte(sampleMetric))
		require.NoError(t, err)

		assert.Equal(t, "Accuracy", flat[0].Name)
		assert.Contains(t, flat[0].Description, "accurately")
	})

	t.Run("fails when the document has no issues", func(t *testing.T) {
		_, err := ParseMetricXML([]byte("<issues></issues>"))
		require.Error(t, err)

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Contains(t, parseErr.Reason, "no issues")
	})

	t.Run("fails on malformed XML", func(t *testing.T) {
		_, err := ParseMetricXML([]byte("<issues><issue id="))
		require.Error(t, err)
	})
}

func TestParseSpecificationsXML(t *testing.T) {
	t.Run("extracts the text block", func(t *testing.T) {
		doc := `<specifications><text>Translate for a general audience.</text></specifications>`

		text, err := ParseSpecificationsXML([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, "Translate for a general audience.", text)
	})

	t.Run("fails when the text node is absent", func(t *testing.T) {
		_, err := ParseSpecificationsXML([]byte(`<specifications></specifications>`))
		require.Error(t, err)

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
	})

	t.Run("fails on malformed XML", func(t *testing.T) {
		_, err := ParseSpecificationsXML([]byte(`<specifications>`))
		require.Error(t, err)
	})
}
