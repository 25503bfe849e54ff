package render

import (
	"slices"
	"strconv"
	"strings"

	"github.com/aisa-it/delta2html/internal/delta2html/delta"
)

// HTMLParts открывающие теги, содержимое и закрывающие теги одной операции.
type HTMLParts struct {
	OpeningTag string
	Content    string
	ClosingTag string
}

// OpConverter генерирует HTML для одной операции.
type OpConverter struct {
	op   delta.Op
	opts Options
}

func NewOpConverter(op delta.Op, opts Options) *OpConverter {
	return &OpConverter{op: op, opts: opts}
}

// HTML разметка операции целиком.
func (c *OpConverter) HTML() string {
	parts := c.Parts()
	return parts.OpeningTag + parts.Content + parts.ClosingTag
}

func (c *OpConverter) Parts() HTMLParts {
	if c.op.IsJustNewline() {
		return HTMLParts{Content: delta.NewLine}
	}

	tags := c.Tags()
	attrs := c.TagAttributes()
	if len(tags) == 0 && len(attrs) > 0 {
		tags = []string{"span"}
	}

	var opening, closing []string
	for i, tag := range tags {
		if i == 0 {
			opening = append(opening, makeStartTag(tag, attrs))
		} else {
			opening = append(opening, makeStartTag(tag, nil))
		}
		if tag != "img" {
			closing = append(closing, makeEndTag(tag))
		}
	}
	slices.Reverse(closing)

	parts := HTMLParts{
		OpeningTag: strings.Join(opening, ""),
		Content:    c.Content(),
		ClosingTag: strings.Join(closing, ""),
	}

	// Изображение со ссылкой оборачивается в <a>
	if c.op.IsImage() && c.op.Attributes.Link != "" {
		parts.OpeningTag = makeStartTag("a", c.LinkAttrs()) + parts.OpeningTag
		parts.ClosingTag += makeEndTag("a")
	}
	return parts
}

func (c *OpConverter) Content() string {
	if c.op.IsBlockDefining() {
		return ""
	}

	var content string
	switch {
	case c.op.Insert.Kind == delta.KindMention:
		content = mentionLabel(c.op.Insert.MentionRecord())
	case c.op.IsText(), c.op.IsFormula():
		content = c.op.Insert.Value
	}

	if c.opts.EncodeHTML {
		return encodeHTML(content)
	}
	return content
}

// Tags теги операции от внешнего к внутреннему.
func (c *OpConverter) Tags() []string {
	attrs := c.op.Attributes

	switch {
	case c.op.Insert.Kind == delta.KindMention:
		return []string{"a"}
	case c.op.IsVideo():
		return []string{"iframe"}
	case c.op.IsImage():
		return []string{"img"}
	case !c.op.IsText():
		return []string{"span"}
	}

	if c.op.IsBlockDefining() {
		switch {
		case attrs.Blockquote:
			return []string{"blockquote"}
		case attrs.CodeBlock:
			return []string{"pre"}
		case attrs.List != "":
			return []string{"li"}
		case attrs.Header > 0:
			return []string{"h" + strconv.Itoa(attrs.Header)}
		default:
			return []string{c.opts.paragraphTag()}
		}
	}

	var tags []string
	if attrs.Link != "" {
		tags = append(tags, "a")
	} else if attrs.Mentions {
		tags = append(tags, "a")
	}
	switch attrs.Script {
	case "sub":
		tags = append(tags, "sub")
	case "super":
		tags = append(tags, "sup")
	}
	if attrs.Bold {
		tags = append(tags, "strong")
	}
	if attrs.Italic {
		tags = append(tags, "em")
	}
	if attrs.Strike {
		tags = append(tags, "s")
	}
	if attrs.Underline {
		tags = append(tags, "u")
	}
	if attrs.Code {
		tags = append(tags, "code")
	}
	return tags
}

func (c *OpConverter) CSSClasses() []string {
	attrs := c.op.Attributes

	var classes []string
	if attrs.Indent > 0 {
		classes = append(classes, "indent-"+strconv.Itoa(attrs.Indent))
	}
	if attrs.Align != "" {
		classes = append(classes, "align-"+attrs.Align)
	}
	if attrs.Direction != "" {
		classes = append(classes, "direction-"+attrs.Direction)
	}
	if attrs.Font != "" {
		classes = append(classes, "font-"+attrs.Font)
	}
	if attrs.Size != "" {
		classes = append(classes, "size-"+attrs.Size)
	}
	if c.opts.AllowBackgroundClasses && attrs.Background != "" {
		classes = append(classes, "background-"+attrs.Background)
	}
	switch {
	case c.op.IsFormula():
		classes = append(classes, "formula")
	case c.op.IsVideo():
		classes = append(classes, "video")
	case c.op.IsImage():
		classes = append(classes, "image")
	}

	for i := range classes {
		classes[i] = c.opts.prefixClass(classes[i])
	}
	return classes
}

func (c *OpConverter) CSSStyles() []string {
	attrs := c.op.Attributes

	var styles []string
	if attrs.Color != "" {
		styles = append(styles, "color:"+attrs.Color)
	}
	if attrs.Background != "" && !c.opts.AllowBackgroundClasses {
		styles = append(styles, "background-color:"+attrs.Background)
	}
	return styles
}

func (c *OpConverter) TagAttributes() []TagAttr {
	attrs := c.op.Attributes
	if attrs.Code && !c.op.IsLink() && !c.op.IsBlockDefining() {
		return nil
	}

	var tagAttrs []TagAttr
	if classes := c.CSSClasses(); len(classes) > 0 {
		tagAttrs = append(tagAttrs, TagAttr{"class", strings.Join(classes, " ")})
	}

	switch {
	case c.op.IsImage():
		if attrs.Width != "" {
			tagAttrs = append(tagAttrs, TagAttr{"width", attrs.Width})
		}
		return append(tagAttrs, TagAttr{"src", c.op.Insert.Value})
	case c.op.IsACheckList() && c.op.IsBlockDefining():
		checked := "false"
		if c.op.IsCheckedList() {
			checked = "true"
		}
		return append(tagAttrs, TagAttr{"data-checked", checked})
	case c.op.IsFormula():
		return tagAttrs
	case c.op.IsVideo():
		return append(tagAttrs,
			TagAttr{"frameborder", "0"},
			TagAttr{"allowfullscreen", "true"},
			TagAttr{"src", c.op.Insert.Value},
		)
	case c.op.IsMentions():
		return append(tagAttrs, c.mentionAttrs()...)
	}

	if styles := c.CSSStyles(); len(styles) > 0 {
		tagAttrs = append(tagAttrs, TagAttr{"style", strings.Join(styles, ";")})
	}
	if c.op.IsCodeBlock() && attrs.CodeLang != "" {
		tagAttrs = append(tagAttrs, TagAttr{"data-language", attrs.CodeLang})
	}
	if c.op.IsBlockDefining() {
		return tagAttrs
	}
	if c.op.IsLink() {
		tagAttrs = append(tagAttrs, c.LinkAttrs()...)
	}
	return tagAttrs
}

// LinkAttrs href, target и rel ссылки. Значения операции приоритетнее общих настроек.
func (c *OpConverter) LinkAttrs() []TagAttr {
	attrs := c.op.Attributes
	res := []TagAttr{{"href", attrs.Link}}

	target := attrs.Target
	if target == "" {
		target = c.opts.LinkTarget
	}
	if target != "" {
		res = append(res, TagAttr{"target", target})
	}

	rel := attrs.Rel
	if rel == "" {
		rel = c.opts.LinkRel
	}
	if rel != "" {
		res = append(res, TagAttr{"rel", rel})
	}
	return res
}

func (c *OpConverter) mentionAttrs() []TagAttr {
	mention := c.op.Attributes.Mention
	if c.op.Insert.Kind == delta.KindMention {
		mention = c.op.Insert.MentionRecord()
	}

	var res []TagAttr
	if class := mentionField(mention, "class"); class != "" {
		res = append(res, TagAttr{"class", class})
	}

	endPoint, slug := mentionField(mention, "end-point"), mentionField(mention, "slug")
	switch {
	case mentionField(mention, "link") != "":
		res = append(res, TagAttr{"href", mentionField(mention, "link")})
	case endPoint != "" && slug != "":
		res = append(res, TagAttr{"href", endPoint + "/" + slug})
	default:
		res = append(res, TagAttr{"href", "about:blank"})
	}

	if target := mentionField(mention, "target"); target != "" {
		res = append(res, TagAttr{"target", target})
	}
	return res
}

func mentionField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// mentionLabel текст упоминания: denotationChar + value, либо name.
func mentionLabel(m map[string]any) string {
	if v := mentionField(m, "value"); v != "" {
		return mentionField(m, "denotationChar") + v
	}
	return mentionField(m, "name")
}
