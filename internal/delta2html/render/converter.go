package render

import (
	"strings"

	"github.com/aisa-it/delta2html/internal/delta2html/delta"
	"github.com/aisa-it/delta2html/internal/delta2html/grouper"
)

// Hooks перехват отрисовки групп верхнего уровня.
// Непустой результат BeforeRender заменяет стандартную отрисовку группы,
// AfterRender получает итоговый HTML группы и может его изменить.
type Hooks interface {
	BeforeRender(groupType grouper.GroupType, group grouper.Group) string
	AfterRender(groupType grouper.GroupType, html string) string
}

// HookFuncs реализация Hooks на функциях, любая из которых может быть nil.
type HookFuncs struct {
	Before func(groupType grouper.GroupType, group grouper.Group) string
	After  func(groupType grouper.GroupType, html string) string
}

func (h HookFuncs) BeforeRender(groupType grouper.GroupType, group grouper.Group) string {
	if h.Before == nil {
		return ""
	}
	return h.Before(groupType, group)
}

func (h HookFuncs) AfterRender(groupType grouper.GroupType, html string) string {
	if h.After == nil {
		return html
	}
	return h.After(groupType, html)
}

// CustomRenderer отрисовка произвольных embed. contextOp блочная операция,
// внутри которой находится embed, либо nil.
type CustomRenderer interface {
	RenderCustom(op delta.Op, contextOp *delta.Op) string
}

type CustomRendererFunc func(op delta.Op, contextOp *delta.Op) string

func (f CustomRendererFunc) RenderCustom(op delta.Op, contextOp *delta.Op) string {
	return f(op, contextOp)
}

type ConverterOption func(*Converter)

func WithHooks(h Hooks) ConverterOption {
	return func(c *Converter) {
		c.hooks = h
	}
}

func WithCustomRenderer(r CustomRenderer) ConverterOption {
	return func(c *Converter) {
		c.custom = r
	}
}

// Converter преобразует документ в HTML. После создания не изменяется
// и может использоваться из нескольких горутин, если это допускают хуки.
type Converter struct {
	opts   Options
	hooks  Hooks
	custom CustomRenderer
}

func NewConverter(opts Options, options ...ConverterOption) *Converter {
	c := &Converter{opts: opts}
	for _, o := range options {
		o(c)
	}
	return c
}

func (c *Converter) Options() Options {
	return c.opts
}

// Convert классифицирует, группирует и отрисовывает сырые операции.
func (c *Converter) Convert(raw []delta.RawOp) (string, error) {
	groups, err := grouper.GroupRaw(raw, c.opts.Merge)
	if err != nil {
		return "", err
	}
	return c.RenderGroups(groups), nil
}

func (c *Converter) ConvertOps(ops []delta.Op) string {
	return c.RenderGroups(grouper.GroupOps(ops, c.opts.Merge))
}

func (c *Converter) RenderGroups(groups []grouper.Group) string {
	var sb strings.Builder
	for _, g := range groups {
		sb.WriteString(c.renderGroup(g))
	}
	return sb.String()
}

func (c *Converter) renderGroup(g grouper.Group) string {
	return c.renderWithHooks(g.Type(), g, func() string {
		switch gg := g.(type) {
		case *grouper.ListGroup:
			return c.renderList(gg)
		case *grouper.Block:
			return c.renderBlock(gg.BlockOp, gg.Ops)
		case *grouper.MergedBlock:
			return c.renderBlock(gg.BlockOp(), gg.Ops())
		case *grouper.VideoItem:
			return NewOpConverter(gg.Op, c.opts).HTML()
		case *grouper.InlineRun:
			return c.renderInlines(gg.Ops, true)
		}
		return ""
	})
}

func (c *Converter) renderWithHooks(groupType grouper.GroupType, g grouper.Group, render func() string) string {
	var html string
	if c.hooks != nil {
		html = c.hooks.BeforeRender(groupType, g)
	}
	if html == "" {
		html = render()
	}
	if c.hooks != nil {
		html = c.hooks.AfterRender(groupType, html)
	}
	return html
}

func (c *Converter) renderList(list *grouper.ListGroup) string {
	if len(list.Items) == 0 {
		return ""
	}

	first := list.Items[0].Item.BlockOp
	tag := listTag(first)

	var sb strings.Builder
	sb.WriteString(makeStartTag(tag, listAttrs(first)))
	for _, li := range list.Items {
		sb.WriteString(c.renderListItem(li))
	}
	sb.WriteString(makeEndTag(tag))
	return sb.String()
}

func (c *Converter) renderListItem(li *grouper.ListItem) string {
	parts := NewOpConverter(li.Item.BlockOp.WithIndent(0), c.opts).Parts()

	html := parts.OpeningTag + c.renderInlines(li.Item.Ops, false)
	if li.InnerList != nil {
		html += c.renderList(li.InnerList)
	}
	return html + parts.ClosingTag
}

func (c *Converter) renderBlock(bop delta.Op, ops []delta.Op) string {
	if bop.IsCustom() {
		return c.renderCustom(bop, nil)
	}

	parts := NewOpConverter(bop, c.opts).Parts()

	if bop.IsCodeBlock() {
		var sb strings.Builder
		for _, op := range ops {
			if op.IsCustom() {
				sb.WriteString(c.renderCustom(op, &bop))
			} else {
				sb.WriteString(op.Insert.Value)
			}
		}
		return parts.OpeningTag + encodeHTML(sb.String()) + parts.ClosingTag
	}

	var sb strings.Builder
	for _, op := range ops {
		sb.WriteString(c.renderInline(op, &bop))
	}
	inlines := sb.String()
	if inlines == "" {
		inlines = brTag
	}
	return parts.OpeningTag + inlines + parts.ClosingTag
}

// renderInlines отрисовывает строчные операции. Завершающий перенос строки отбрасывается.
func (c *Converter) renderInlines(ops []delta.Op, wrapInParagraph bool) string {
	last := len(ops) - 1

	var sb strings.Builder
	for i, op := range ops {
		if i > 0 && i == last && op.IsJustNewline() {
			continue
		}
		sb.WriteString(c.renderInline(op, nil))
	}

	if !wrapInParagraph {
		return sb.String()
	}
	tag := c.opts.paragraphTag()
	return makeStartTag(tag, nil) + sb.String() + makeEndTag(tag)
}

func (c *Converter) renderInline(op delta.Op, contextOp *delta.Op) string {
	if op.IsCustom() {
		return c.renderCustom(op, contextOp)
	}
	return strings.ReplaceAll(NewOpConverter(op, c.opts).HTML(), delta.NewLine, brTag)
}

func (c *Converter) renderCustom(op delta.Op, contextOp *delta.Op) string {
	if c.custom == nil {
		return ""
	}
	return c.custom.RenderCustom(op, contextOp)
}

func listTag(op delta.Op) string {
	if op.IsOrderedList() {
		return "ol"
	}
	return "ul"
}

func listAttrs(op delta.Op) []TagAttr {
	switch {
	case op.IsCheckedList():
		return []TagAttr{{"data-checked", "true"}}
	case op.IsUncheckedList():
		return []TagAttr{{"data-checked", "false"}}
	}
	return nil
}
