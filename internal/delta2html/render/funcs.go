package render

import (
	"strings"

	"golang.org/x/net/html"
)

const brTag = "<br/>"

type TagAttr struct {
	Key   string
	Value string
}

func makeStartTag(tag string, attrs []TagAttr) string {
	if tag == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("<")
	sb.WriteString(tag)
	for _, attr := range attrs {
		sb.WriteString(" ")
		sb.WriteString(attr.Key)
		if attr.Value != "" {
			sb.WriteString(`="`)
			sb.WriteString(encodeHTML(attr.Value))
			sb.WriteString(`"`)
		}
	}
	if tag == "img" || tag == "br" {
		sb.WriteString("/>")
	} else {
		sb.WriteString(">")
	}
	return sb.String()
}

func makeEndTag(tag string) string {
	if tag == "" {
		return ""
	}
	return "</" + tag + ">"
}

// encodeHTML экранирует текст. Уже экранированные сущности сначала раскрываются,
// чтобы не получить двойное кодирование.
func encodeHTML(s string) string {
	return html.EscapeString(html.UnescapeString(s))
}
