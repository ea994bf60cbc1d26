package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/pipeline"
)

func fieldsOf(t *testing.T, err error) []pipeline.FieldError {
	t.Helper()
	var verr *pipeline.ValidationError
	require.True(t, errors.As(err, &verr), "expected *pipeline.ValidationError, got %T", err)
	return verr.Fields
}

func TestDecode_Valid(t *testing.T) {
	body := `{
		"nodes": [
			{"id": "1", "type": "input", "position": {"x": 0, "y": 0}, "data": {}},
			{"id": "2", "type": "llm", "position": {"x": 1.5, "y": -2}, "data": {"model": "gpt"}}
		],
		"edges": [
			{"id": "e1", "source": "1", "target": "2", "sourceHandle": null, "targetHandle": "2-prompt"}
		]
	}`

	p, err := New().Decode([]byte(body))
	require.NoError(t, err)
	require.Len(t, p.Nodes, 2)
	require.Len(t, p.Edges, 1)
	assert.Nil(t, p.Edges[0].SourceHandle)
	assert.Equal(t, "2-prompt", *p.Edges[0].TargetHandle)
	assert.Equal(t, "gpt", p.Nodes[1].Data["model"])
}

func TestDecode_EmptyListsAndEmptyIDs(t *testing.T) {
	p, err := New().Decode([]byte(`{"nodes": [], "edges": []}`))
	require.NoError(t, err)
	assert.Empty(t, p.Nodes)

	_, err = New().Decode([]byte(`{"nodes": [], "edges": [{"id": "", "source": "", "target": ""}]}`))
	assert.NoError(t, err)
}

func TestDecode_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"missing lists", `{}`, []string{"nodes", "edges"}},
		{"null edges", `{"nodes": [], "edges": null}`, []string{"edges"}},
		{"edge without source", `{"nodes": [], "edges": [{"id": "e1", "target": "2"}]}`, []string{"edges[0].source"}},
		{"node without position", `{"nodes": [{"id": "1", "type": "t", "data": {}}], "edges": []}`, []string{"nodes[0].position"}},
		{"position without y", `{"nodes": [{"id": "1", "type": "t", "position": {"x": 1}, "data": {}}], "edges": []}`, []string{"nodes[0].position.y"}},
		{"node without data", `{"nodes": [{"id": "1", "type": "t", "position": {"x": 1, "y": 2}}], "edges": []}`, []string{"nodes[0].data"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New().Decode([]byte(tc.body))
			require.ErrorIs(t, err, pipeline.ErrValidation)

			var got []string
			for _, f := range fieldsOf(t, err) {
				assert.Equal(t, "is required", f.Message)
				got = append(got, f.Field)
			}
			assert.ElementsMatch(t, tc.fields, got)
		})
	}
}

func TestDecode_WrongTypes(t *testing.T) {
	_, err := New().Decode([]byte(`{"nodes": [], "edges": [{"id": "e1", "source": 7, "target": "2"}]}`))
	fields := fieldsOf(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "edges.source", fields[0].Field)
	assert.Equal(t, "must be a string, got number", fields[0].Message)

	_, err = New().Decode([]byte(`{"nodes": "nope", "edges": []}`))
	fields = fieldsOf(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "nodes", fields[0].Field)
	assert.Equal(t, "must be an array, got string", fields[0].Message)
}

func TestDecode_NumberOutOfRange(t *testing.T) {
	body := `{"nodes": [{"id": "1", "type": "t", "position": {"x": 1e400, "y": 0}, "data": {}}], "edges": []}`
	_, err := New().Decode([]byte(body))
	fields := fieldsOf(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "nodes.position.x", fields[0].Field)
	assert.Equal(t, "is out of range: 1e400", fields[0].Message)
}

func TestDecode_InvalidUTF8(t *testing.T) {
	body := "{\"nodes\": [], \"edges\": [{\"id\": \"e1\", \"source\": \"\xfe\", \"target\": \"\xff\"}]}"
	_, err := New().Decode([]byte(body))
	fields := fieldsOf(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "body", fields[0].Field)
	assert.Equal(t, "invalid UTF-8 at offset 48", fields[0].Message)
}

func TestCheckEncoding(t *testing.T) {
	assert.NoError(t, CheckEncoding([]byte(`{"id": "naïve"}`)))
	assert.ErrorIs(t, CheckEncoding([]byte("a\xffb")), pipeline.ErrValidation)
}

func TestDecode_Malformed(t *testing.T) {
	for _, body := range []string{``, `{`, `{"nodes": [}`} {
		_, err := New().Decode([]byte(body))
		fields := fieldsOf(t, err)
		require.Len(t, fields, 1)
		assert.Equal(t, "body", fields[0].Field)
		assert.Contains(t, fields[0].Message, "malformed JSON")
	}
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "edges[0].source", fieldPath("Pipeline.edges[0].source"))
	assert.Equal(t, "nodes", fieldPath("nodes"))
}
