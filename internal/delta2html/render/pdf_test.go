package render

import (
	"bytes"
	"testing"

	"github.com/aisa-it/delta2html/internal/delta2html/delta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDF(t *testing.T) {
	raw := mustRaw(t, `[
		{"insert":"Heading"},{"insert":"\n","attributes":{"header":1}},
		{"insert":"Hello\n"},
		{"insert":"bold","attributes":{"bold":true,"color":"#f00"}},{"insert":" "},
		{"insert":"link","attributes":{"link":"https://example.com"}},{"insert":"2","attributes":{"script":"super"}},{"insert":"\n"},
		{"insert":"quote"},{"insert":"\n","attributes":{"blockquote":true}},
		{"insert":"x := 1"},{"insert":"\n","attributes":{"code-block":"go"}},
		{"insert":"one"},{"insert":"\n","attributes":{"list":"ordered"}},
		{"insert":"nested"},{"insert":"\n","attributes":{"list":"bullet","indent":1}},
		{"insert":"done"},{"insert":"\n","attributes":{"list":"checked"}},
		{"insert":{"video":"https://v"}},
		{"insert":{"image":"https://img"}},{"insert":"\n"}
	]`)

	r := NewPDFRenderer(DefaultOptions(), nil)
	r.Compress = false

	var buf bytes.Buffer
	require.NoError(t, r.Convert(raw, &buf))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	for _, s := range []string{"(Heading)", "(Hello)", "(quote)", "(x := 1)", "(nested)", "(https://example.com)"} {
		assert.Contains(t, buf.String(), s)
	}
}

func TestPDFMalformed(t *testing.T) {
	var buf bytes.Buffer
	err := NewPDFRenderer(DefaultOptions(), nil).Convert(mustRaw(t, `[{"insert":[1]}]`), &buf)
	assert.ErrorIs(t, err, delta.ErrMalformedInput)
	assert.Zero(t, buf.Len())
}

func TestCleanUnsupportedSymbols(t *testing.T) {
	assert.Equal(t, "ok ", cleanUnsupportedSymbols("ok 😋"))
}
