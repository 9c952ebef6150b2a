package page2doc

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_Kind(t *testing.T) {
	t.Parallel()

	k, err := Request{Action: ActionExtractMarkdown}.Kind()
	require.NoError(t, err)
	assert.Equal(t, KindMarkdown, k)

	k, err = Request{Action: ActionExtractMermaid}.Kind()
	require.NoError(t, err)
	assert.Equal(t, KindMermaid, k)

	_, err = Request{Action: "extractPDF"}.Kind()
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestNewResponse(t *testing.T) {
	t.Parallel()

	md := NewResponse(KindMarkdown, "# hi", nil)
	assert.True(t, md.Success)
	assert.Equal(t, "# hi", md.Markdown)
	assert.Empty(t, md.Mermaid)
	assert.Equal(t, "# hi", md.Content())

	mm := NewResponse(KindMermaid, "graph TD", nil)
	assert.Equal(t, "graph TD", mm.Mermaid)
	assert.Empty(t, mm.Markdown)
	assert.Equal(t, "graph TD", mm.Content())

	failed := NewResponse(KindMarkdown, "ignored", errors.New("no markdown content detected"))
	assert.False(t, failed.Success)
	assert.Empty(t, failed.Content())
	assert.Equal(t, "no markdown content detected", failed.Error)
}

func TestResponse_WriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewResponse(KindMermaid, "graph TD", nil).WriteJSON(&buf))
	assert.JSONEq(t, `{"success": true, "mermaid": "graph TD"}`, buf.String())

	buf.Reset()
	require.NoError(t, NewResponse(KindMermaid, "", errors.New("boom")).WriteJSON(&buf))
	assert.JSONEq(t, `{"success": false, "error": "boom"}`, buf.String())
}
