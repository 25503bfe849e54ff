package render

import (
	"github.com/tdewolff/minify/v2"
	mhtml "github.com/tdewolff/minify/v2/html"
)

var minifier *minify.M = minify.New()

func init() {
	minifier.Add("text/html", &mhtml.Minifier{
		KeepEndTags:      true,
		KeepDocumentTags: true,
		KeepQuotes:       true,
	})
}

// Minify сжимает HTML, закрывающие теги и кавычки атрибутов сохраняются.
func Minify(html string) (string, error) {
	return minifier.String("text/html", html)
}
