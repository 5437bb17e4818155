package schema

import (
	"testing"

	"cyoa-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validEnvelope = `{
  "title": "The Lost Station",
  "rootNode": {
    "content": "You wake up aboard a drifting station.",
    "isEnding": false,
    "isWinningEnding": false,
    "options": [
      {
        "text": "Head to the bridge",
        "nextNode": {"content": "You restore power and get home.", "isEnding": true, "isWinningEnding": true}
      },
      {
        "text": "Open the airlock",
        "nextNode": {"content": "The void takes you.", "isEnding": true, "isWinningEnding": false, "options": []}
      }
    ]
  }
}`

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no fence", in: "  {\"a\":1}  ", want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "text around", in: "Here you go:\n```json\n{\"a\":1}\n```\nEnjoy!", want: `{"a":1}`},
		{name: "only first block", in: "```json\n{\"a\":1}\n```\n```json\n{\"b\":2}\n```", want: `{"a":1}`},
		{name: "unclosed fence", in: "```json\n{\"a\":1}", want: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.in))
		})
	}
}

func TestParser_ParseValidTree(t *testing.T) {
	tree, err := NewParser().Parse(validEnvelope)
	require.NoError(t, err)

	assert.Equal(t, "The Lost Station", tree.Title)
	assert.False(t, tree.Root.IsEnding)
	require.Len(t, tree.Root.Options, 2)
	assert.Equal(t, "Head to the bridge", tree.Root.Options[0].Text)
	assert.True(t, tree.Root.Options[0].NextNode.IsWinningEnding)
	assert.Equal(t, "Open the airlock", tree.Root.Options[1].Text)
	assert.False(t, tree.Root.Options[1].NextNode.IsWinningEnding)
	assert.Empty(t, tree.Root.Options[1].NextNode.Options)
	assert.Equal(t, 3, tree.Root.Count())
	assert.Equal(t, 2, tree.Root.Depth())
}

func TestParser_FencedInputParsesIdentically(t *testing.T) {
	p := NewParser()

	plain, err := p.Parse(validEnvelope)
	require.NoError(t, err)

	fenced, err := p.Parse("```json\n" + validEnvelope + "\n```")
	require.NoError(t, err)

	assert.Equal(t, plain, fenced)
}

func TestParser_MinimalEndingRoot(t *testing.T) {
	tree, err := NewParser().Parse(`{"title":"Short","rootNode":{"content":"The end.","isEnding":true,"isWinningEnding":false}}`)
	require.NoError(t, err)

	assert.True(t, tree.Root.IsEnding)
	assert.Empty(t, tree.Root.Options)
}

func TestParser_NonEndingWithoutOptionsAccepted(t *testing.T) {
	tree, err := NewParser().Parse(`{"title":"T","rootNode":{"content":"c","isEnding":false,"isWinningEnding":false,"options":[]}}`)
	require.NoError(t, err)
	assert.Empty(t, tree.Root.Options)
}

func TestParser_KeepsEndingFlagsAsGiven(t *testing.T) {
	tree, err := NewParser().Parse(`{"title":"t","rootNode":{"content":"c","isEnding":false,"isWinningEnding":true,"options":[]}}`)
	require.NoError(t, err)

	assert.False(t, tree.Root.IsEnding)
	assert.True(t, tree.Root.IsWinningEnding)
}

func TestParser_AcceptsAnyOptionCount(t *testing.T) {
	leaf := `{"text":"go","nextNode":{"content":"end","isEnding":true,"isWinningEnding":false}}`
	raw := `{"title":"T","rootNode":{"content":"c","isEnding":false,"isWinningEnding":false,"options":[` +
		leaf + `,` + leaf + `,` + leaf + `,` + leaf + `,` + leaf + `]}}`

	tree, err := NewParser().Parse(raw)
	require.NoError(t, err)
	assert.Len(t, tree.Root.Options, 5)
}

func TestParser_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: "   "},
		{name: "not json", in: "Once upon a time..."},
		{name: "missing title", in: `{"rootNode":{"content":"c","isEnding":true,"isWinningEnding":false}}`},
		{name: "missing rootNode", in: `{"title":"T"}`},
		{name: "null rootNode", in: `{"title":"T","rootNode":null}`},
		{name: "missing content", in: `{"title":"T","rootNode":{"isEnding":true,"isWinningEnding":false}}`},
		{name: "missing isEnding", in: `{"title":"T","rootNode":{"content":"c","isWinningEnding":false}}`},
		{name: "string instead of bool", in: `{"title":"T","rootNode":{"content":"c","isEnding":"true","isWinningEnding":false}}`},
		{name: "number instead of string", in: `{"title":42,"rootNode":{"content":"c","isEnding":true,"isWinningEnding":false}}`},
		{name: "option without nextNode", in: `{"title":"T","rootNode":{"content":"c","isEnding":false,"isWinningEnding":false,"options":[{"text":"go"}]}}`},
		{name: "nested type mismatch", in: `{"title":"T","rootNode":{"content":"c","isEnding":false,"isWinningEnding":false,"options":[{"text":"go","nextNode":{"content":"e","isEnding":1,"isWinningEnding":false}}]}}`},
		{name: "top-level array", in: `[]`},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := p.Parse(tt.in)
			assert.Nil(t, tree)
			assert.ErrorIs(t, err, domain.ErrMalformedResponse)
		})
	}
}
