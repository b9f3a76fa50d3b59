package fs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/strata/pkg/core"
)

func TestNoteDocRoundTrip(t *testing.T) {
	in := noteDoc{
		Meta: noteMeta{
			ID:       "n1",
			Title:    "Project Plan",
			Type:     "text",
			Mime:     "text/html",
			Prefix:   "01",
			Expanded: true,
			Position: 20,
			Attributes: []attrMeta{
				{ID: "a1", Type: core.AttributeLabel, Name: "archived", Position: 10},
				{ID: "a2", Type: core.AttributeRelation, Name: "template", Value: "n9", Inheritable: true, Position: 20},
			},
		},
		Content: "# Plan\n\nShip it.\n",
	}

	data, err := encodeNote(in)
	require.NoError(t, err)

	out, err := decodeNote(data)
	require.NoError(t, err)
	assert.Equal(t, in.Meta, out.Meta)
	assert.Equal(t, in.Content, out.Content)
}

func TestDecodeNoteWithoutFrontmatter(t *testing.T) {
	out, err := decodeNote([]byte("just some text\n"))
	require.NoError(t, err)
	assert.Equal(t, "just some text\n", out.Content)
	assert.Empty(t, out.Meta.ID)
}

func TestDecodeNoteUnterminatedFrontmatter(t *testing.T) {
	_, err := decodeNote([]byte("---\nid: n1\n"))
	require.Error(t, err)
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Project Plan", "project-plan"},
		{"  Weird -- Title! ", "weird-title"},
		{"", "untitled"},
		{"日本語", "untitled"},
		{"Mix 42 Things", "mix-42-things"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, slugify(c.in), "slugify(%q)", c.in)
	}
}
