package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMatch_Valid(t *testing.T) {
	match, err := parseMatch(`{"score": 82, "reasons": ["strong Go background", "missing k8s"]}`)
	require.NoError(t, err)
	assert.Equal(t, 82, match.Score)
	assert.Len(t, match.Reasons, 2)
}

func TestParseMatch_SchemaRejections(t *testing.T) {
	tests := []string{
		`{"score": 150, "reasons": []}`,
		`{"score": -1, "reasons": []}`,
		`{"score": "high", "reasons": []}`,
		`{"score": 50}`,
		`{"score": 50, "reasons": ["a"], "extra": true}`,
		`not json`,
	}

	for _, raw := range tests {
		_, err := parseMatch(raw)
		assert.Error(t, err, raw)
	}
}

func TestCleanJSONBlock(t *testing.T) {
	assert.Equal(t, `{"score":1}`, cleanJSONBlock("```json\n{\"score\":1}\n```"))
	assert.Equal(t, `{"score":1}`, cleanJSONBlock("```\n{\"score\":1}\n```"))
	assert.Equal(t, `{"score":1}`, cleanJSONBlock(`{"score":1}`))
}

func TestCleanLatexBlock(t *testing.T) {
	doc := `\documentclass{article}\begin{document}x\end{document}`
	assert.Equal(t, doc, cleanLatexBlock("```latex\n"+doc+"\n```"))
	assert.Equal(t, doc, cleanLatexBlock(doc))
}
