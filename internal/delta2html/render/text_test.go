package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"line breaks", `[{"insert":"a\nb\n"}]`, "a\nb"},
		{"header", `[{"insert":"intro\nTitle"},{"insert":"\n","attributes":{"header":1}}]`, "intro\nTitle"},
		{"list", `[{"insert":"a"},{"insert":"\n","attributes":{"list":"bullet"}},{"insert":"b"},{"insert":"\n","attributes":{"list":"bullet","indent":1}},{"insert":"c"},{"insert":"\n","attributes":{"list":"ordered"}}]`, "a\nb\nc"},
		{"entities", `[{"insert":"<b>&\n"}]`, "<b>&"},
		{"formatting dropped", `[{"insert":"x","attributes":{"bold":true,"link":"/a"}},{"insert":"\n"}]`, "x"},
		{"image", `[{"insert":{"image":"https://img/a.png"}},{"insert":"\n"}]`, "image: https://img/a.png"},
		{"video", `[{"insert":"a\n"},{"insert":{"video":"https://v"}},{"insert":"b\n"}]`, "a\nvideo: https://v\nb"},
		{"code block", `[{"insert":"x"},{"insert":"\n","attributes":{"code-block":true}},{"insert":"y"},{"insert":"\n","attributes":{"code-block":true}}]`, "x\ny"},
	}

	r := NewTextRenderer(DefaultOptions(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Convert(mustRaw(t, tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestMinify(t *testing.T) {
	out, err := Minify("<p>a   b</p>\n\n<p class=\"ql-align-center\">c</p>")
	require.NoError(t, err)
	assert.Equal(t, `<p>a b</p><p class="ql-align-center">c</p>`, out)
}
