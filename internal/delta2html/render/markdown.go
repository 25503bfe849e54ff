package render

import (
	"bytes"
	"io"
	"strings"

	"github.com/aisa-it/delta2html/internal/delta2html/delta"
	"github.com/aisa-it/delta2html/internal/delta2html/grouper"
	md "github.com/nao1215/markdown"
)

const markdownListIndent = "    "

// MarkdownRenderer отрисовывает дерево групп в Markdown.
type MarkdownRenderer struct {
	opts   Options
	custom CustomRenderer
}

func NewMarkdownRenderer(opts Options, custom CustomRenderer) *MarkdownRenderer {
	return &MarkdownRenderer{opts: opts, custom: custom}
}

func (r *MarkdownRenderer) Convert(raw []delta.RawOp) (string, error) {
	groups, err := grouper.GroupRaw(raw, r.opts.Merge)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, groups); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render пишет группы в w. Группы верхнего уровня разделяются пустой строкой.
func (r *MarkdownRenderer) Render(w io.Writer, groups []grouper.Group) error {
	doc := md.NewMarkdown(w)
	written := 0
	for _, g := range groups {
		text := r.renderGroup(g)
		if text == "" {
			continue
		}
		if written > 0 {
			doc.PlainText("")
		}
		doc.PlainText(text)
		written++
	}
	return doc.Build()
}

func (r *MarkdownRenderer) renderGroup(g grouper.Group) string {
	doc := md.NewMarkdown(io.Discard)

	switch gg := g.(type) {
	case *grouper.ListGroup:
		for _, l := range r.listLines(gg, 0) {
			doc.PlainText(l)
		}
	case *grouper.Block:
		r.renderBlock(doc, gg.BlockOp, gg.Ops)
	case *grouper.MergedBlock:
		r.renderBlock(doc, gg.BlockOp(), gg.Ops())
	case *grouper.VideoItem:
		doc.PlainText(md.Link(gg.Op.Insert.Value, gg.Op.Insert.Value))
	case *grouper.InlineRun:
		var paragraphs []string
		for _, line := range splitLines(gg.Ops) {
			if text := r.inlines(line, nil); text != "" {
				paragraphs = append(paragraphs, text)
			}
		}
		for i, p := range paragraphs {
			if i > 0 {
				doc.PlainText("")
			}
			doc.PlainText(p)
		}
	}
	return doc.String()
}

func (r *MarkdownRenderer) renderBlock(doc *md.Markdown, bop delta.Op, ops []delta.Op) {
	if bop.IsCustom() {
		if text := r.customText(bop, nil); text != "" {
			doc.PlainText(text)
		}
		return
	}

	attrs := bop.Attributes
	switch {
	case bop.IsCodeBlock():
		var sb strings.Builder
		for _, op := range ops {
			if op.IsCustom() {
				sb.WriteString(r.customText(op, &bop))
			} else {
				sb.WriteString(op.Insert.Value)
			}
		}
		doc.CodeBlocks(md.SyntaxHighlight(attrs.CodeLang), sb.String())
	case bop.IsHeader():
		text := r.joinLines(ops, &bop, " ")
		switch attrs.Header {
		case 1:
			doc.H1(text)
		case 2:
			doc.H2(text)
		case 3:
			doc.H3(text)
		case 4:
			doc.H4(text)
		case 5:
			doc.H5(text)
		default:
			doc.H6(text)
		}
	case bop.IsBlockquote():
		doc.Blockquote(r.joinLines(ops, &bop, delta.NewLine))
	default:
		if text := r.joinLines(ops, &bop, delta.NewLine); text != "" {
			doc.PlainText(text)
		}
	}
}

// listLines строки списка одного уровня вместе с вложенными списками.
// Маркеры генерирует библиотека, вложенность задается отступом.
func (r *MarkdownRenderer) listLines(list *grouper.ListGroup, depth int) []string {
	if len(list.Items) == 0 {
		return nil
	}

	texts := make([]string, len(list.Items))
	for i, li := range list.Items {
		texts[i] = r.joinLines(li.Item.Ops, &li.Item.BlockOp, " ")
	}

	scratch := md.NewMarkdown(io.Discard)
	first := list.Items[0].Item.BlockOp
	switch {
	case first.IsOrderedList():
		scratch.OrderedList(texts...)
	case first.IsACheckList():
		set := make([]md.CheckBoxSet, len(list.Items))
		for i, li := range list.Items {
			set[i] = md.CheckBoxSet{Checked: li.Item.BlockOp.IsCheckedList(), Text: texts[i]}
		}
		scratch.CheckBox(set)
	default:
		scratch.BulletList(texts...)
	}

	prefix := strings.Repeat(markdownListIndent, depth)
	var lines []string
	for i, line := range strings.Split(scratch.String(), delta.NewLine) {
		lines = append(lines, prefix+line)
		if i < len(list.Items) && list.Items[i].InnerList != nil {
			lines = append(lines, r.listLines(list.Items[i].InnerList, depth+1)...)
		}
	}
	return lines
}

// joinLines отрисовывает строчные операции блока, переносы заменяются на sep.
func (r *MarkdownRenderer) joinLines(ops []delta.Op, contextOp *delta.Op, sep string) string {
	var parts []string
	for _, line := range splitLines(ops) {
		parts = append(parts, r.inlines(line, contextOp))
	}
	return strings.Join(parts, sep)
}

func (r *MarkdownRenderer) inlines(ops []delta.Op, contextOp *delta.Op) string {
	var sb strings.Builder
	for _, op := range ops {
		sb.WriteString(r.inline(op, contextOp, sb.Len() == 0))
	}
	return sb.String()
}

// inline отрисовывает одну операцию. lineStart означает, что перед ней в строке
// ничего нет, и маркеры блоков в начале текста нужно экранировать.
func (r *MarkdownRenderer) inline(op delta.Op, contextOp *delta.Op, lineStart bool) string {
	attrs := op.Attributes

	switch op.Insert.Kind {
	case delta.KindImage:
		img := md.Image("", op.Insert.Value)
		if attrs.Link != "" {
			return md.Link(img, attrs.Link)
		}
		return img
	case delta.KindVideo:
		return md.Link(op.Insert.Value, op.Insert.Value)
	case delta.KindFormula:
		return "$" + op.Insert.Value + "$"
	case delta.KindMention:
		record := op.Insert.MentionRecord()
		label := escapeMarkdown(mentionLabel(record))
		if href := mentionHref(record); href != "" {
			return md.Link(label, href)
		}
		return label
	case delta.KindCustom:
		return r.customText(op, contextOp)
	}

	text := op.Insert.Value
	if text == "" || text == delta.NewLine {
		return ""
	}
	if attrs.Code {
		text = md.Code(text)
	} else {
		text = escapeMarkdown(text)
		if lineStart {
			text = escapeLineStart(text)
		}
	}
	if attrs.Strike {
		text = md.Strikethrough(text)
	}
	if attrs.Italic {
		text = md.Italic(text)
	}
	if attrs.Bold {
		text = md.Bold(text)
	}
	if attrs.Link != "" {
		text = md.Link(text, attrs.Link)
	} else if attrs.Mentions {
		if href := mentionHref(attrs.Mention); href != "" {
			text = md.Link(text, href)
		}
	}
	return text
}

func (r *MarkdownRenderer) customText(op delta.Op, contextOp *delta.Op) string {
	if r.custom == nil {
		return ""
	}
	return r.custom.RenderCustom(op, contextOp)
}

func mentionHref(m map[string]any) string {
	if link := mentionField(m, "link"); link != "" {
		return link
	}
	endPoint, slug := mentionField(m, "end-point"), mentionField(m, "slug")
	if endPoint != "" && slug != "" {
		return endPoint + "/" + slug
	}
	return ""
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	"~", `\~`,
)

// escapeMarkdown экранирует символы строчной разметки в тексте.
func escapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

// escapeLineStart экранирует маркер блока в начале строки: заголовок,
// цитату, пункт маркированного или нумерованного списка.
func escapeLineStart(text string) string {
	trimmed := strings.TrimLeft(text, " ")
	indent := len(text) - len(trimmed)
	if trimmed == "" || indent > 3 {
		return text
	}

	switch trimmed[0] {
	case '#', '>', '-', '+', '=':
		return text[:indent] + `\` + trimmed
	}

	digits := 0
	for digits < len(trimmed) && digits < 9 && trimmed[digits] >= '0' && trimmed[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits < len(trimmed) && (trimmed[digits] == '.' || trimmed[digits] == ')') {
		return text[:indent] + trimmed[:digits] + `\` + trimmed[digits:]
	}
	return text
}

// splitLines режет операции по простым переносам строки.
// Завершающий перенос не дает пустой строки.
func splitLines(ops []delta.Op) [][]delta.Op {
	var (
		lines   [][]delta.Op
		current []delta.Op
	)
	for i, op := range ops {
		if op.IsJustNewline() {
			lines = append(lines, current)
			current = nil
			if i == len(ops)-1 {
				return lines
			}
			continue
		}
		current = append(current, op)
	}
	return append(lines, current)
}
