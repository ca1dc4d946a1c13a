package recorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestDecodeExtractedContent(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, decodeExtractedContent(nil))
	})

	t.Run("plain text stays raw", func(t *testing.T) {
		raw := strPtr("clicked the login button")
		assert.Equal(t, "clicked the login button", decodeExtractedContent(raw))
	})

	t.Run("fenced json is parsed", func(t *testing.T) {
		raw := strPtr("Extracted data:\n```json\n{\"title\": \"Home\", \"links\": 3}\n```\n")
		got := decodeExtractedContent(raw)

		parsed, ok := got.(map[string]interface{})
		require.True(t, ok, "expected a parsed object, got %T", got)
		assert.Equal(t, "Home", parsed["title"])
		assert.EqualValues(t, 3, parsed["links"])
	})

	t.Run("unlabeled fence is parsed", func(t *testing.T) {
		raw := strPtr("```\n[1, 2, 3]\n```")
		got := decodeExtractedContent(raw)

		parsed, ok := got.([]interface{})
		require.True(t, ok)
		assert.Len(t, parsed, 3)
	})

	t.Run("invalid fence payload falls back to raw", func(t *testing.T) {
		raw := strPtr("```json\n{not valid json]\n```")
		assert.Equal(t, *raw, decodeExtractedContent(raw))
	})

	t.Run("empty fence falls back to raw", func(t *testing.T) {
		raw := strPtr("``````")
		assert.Equal(t, *raw, decodeExtractedContent(raw))
	})

	t.Run("bare json without fence stays raw", func(t *testing.T) {
		raw := strPtr(`{"a": 1}`)
		assert.Equal(t, `{"a": 1}`, decodeExtractedContent(raw))
	})
}
