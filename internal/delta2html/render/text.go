package render

import (
	"regexp"
	"strings"

	"github.com/aisa-it/delta2html/internal/delta2html/delta"
	"github.com/aisa-it/delta2html/internal/delta2html/grouper"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	stripTagsPolicy *bluemonday.Policy = bluemonday.StrictPolicy()

	blockStartRegex = regexp.MustCompile(`<(p|div|li|h[1-6]|blockquote|pre)[\s>]`)
	imgRegex        = regexp.MustCompile(`<img[^>]*src="([^"]*)"[^>]*>`)
	iframeRegex     = regexp.MustCompile(`<iframe[^>]*src="([^"]*)"[^>]*>`)
)

// TextRenderer выводит документ простым текстом: каждый блок с новой строки.
type TextRenderer struct {
	html *Converter
}

func NewTextRenderer(opts Options, custom CustomRenderer) *TextRenderer {
	opts.EncodeHTML = true
	return &TextRenderer{html: NewConverter(opts, WithCustomRenderer(custom))}
}

func (r *TextRenderer) Convert(raw []delta.RawOp) (string, error) {
	out, err := r.html.Convert(raw)
	if err != nil {
		return "", err
	}
	return HTMLToText(out), nil
}

func (r *TextRenderer) RenderGroups(groups []grouper.Group) string {
	return HTMLToText(r.html.RenderGroups(groups))
}

// HTMLToText убирает разметку. Блоки и переносы строк превращаются в \n,
// изображения и видео в "image: <src>" и "video: <src>".
func HTMLToText(s string) string {
	res := imgRegex.ReplaceAllString(s, "image: $1")
	res = iframeRegex.ReplaceAllString(res, "\nvideo: ${1}")
	res = blockStartRegex.ReplaceAllString(res, "\n$0")
	res = strings.ReplaceAll(res, brTag, "\n")
	res = stripTagsPolicy.Sanitize(res)
	res = html.UnescapeString(res)
	return strings.TrimSpace(res)
}
