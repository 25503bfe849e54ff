package tiptap

import (
	"encoding/json"
	"log/slog"

	"github.com/aisa-it/delta2html/internal/delta2html/delta"
	"github.com/aisa-it/delta2html/internal/delta2html/grouper"
)

// SerializeRaw группирует сырые операции и сериализует результат в TipTap JSON.
func SerializeRaw(raw []delta.RawOp, opts grouper.MergeOptions) ([]byte, error) {
	groups, err := grouper.GroupRaw(raw, opts)
	if err != nil {
		return nil, err
	}
	return Serialize(groups)
}

// Serialize сериализует дерево групп в TipTap JSON.
func Serialize(groups []grouper.Group) ([]byte, error) {
	return json.Marshal(Document(groups))
}

func Document(groups []grouper.Group) TipTapDocument {
	doc := TipTapDocument{
		Type:    "doc",
		Content: make([]TipTapNode, 0, len(groups)),
	}
	for _, g := range groups {
		doc.Content = append(doc.Content, serializeGroup(g)...)
	}
	return doc
}

func serializeGroup(g grouper.Group) []TipTapNode {
	switch gg := g.(type) {
	case *grouper.InlineRun:
		lines := splitLines(gg.Ops)
		nodes := make([]TipTapNode, 0, len(lines))
		for _, line := range lines {
			nodes = append(nodes, TipTapNode{Type: "paragraph", Content: serializeInlines(line)})
		}
		return nodes
	case *grouper.Block:
		return []TipTapNode{serializeBlock(gg.BlockOp, gg.Ops)}
	case *grouper.MergedBlock:
		return []TipTapNode{serializeBlock(gg.BlockOp(), gg.Ops())}
	case *grouper.VideoItem:
		return []TipTapNode{serializeVideo(gg.Op)}
	case *grouper.ListGroup:
		return []TipTapNode{serializeList(gg)}
	default:
		slog.Warn("Unknown group type for serialization", "type", g)
		return nil
	}
}

// serializeBlock преобразует блочную операцию и ее содержимое в TipTap ноду.
func serializeBlock(bop delta.Op, ops []delta.Op) TipTapNode {
	attrs := bop.Attributes

	switch {
	case bop.IsCustom():
		return serializeEmbed(bop)
	case bop.IsCodeBlock():
		return serializeCode(bop, ops)
	case bop.IsHeader():
		return TipTapNode{
			Type:    "heading",
			Attrs:   withBlockAttrs(map[string]any{"level": attrs.Header}, attrs),
			Content: serializeInlines(ops),
		}
	case bop.IsBlockquote():
		node := TipTapNode{Type: "blockquote"}
		for _, line := range splitLines(ops) {
			node.Content = append(node.Content, TipTapNode{
				Type:    "paragraph",
				Attrs:   withBlockAttrs(nil, attrs),
				Content: serializeInlines(line),
			})
		}
		return node
	default:
		return TipTapNode{
			Type:    "paragraph",
			Attrs:   withBlockAttrs(nil, attrs),
			Content: serializeInlines(ops),
		}
	}
}

// serializeCode код хранится как текстовая нода внутри codeBlock.
func serializeCode(bop delta.Op, ops []delta.Op) TipTapNode {
	node := TipTapNode{Type: "codeBlock"}
	if bop.Attributes.CodeLang != "" {
		node.Attrs = map[string]any{"language": bop.Attributes.CodeLang}
	}

	var text string
	for _, op := range ops {
		if op.IsText() {
			text += op.Insert.Value
		}
	}
	if text != "" {
		node.Content = []TipTapNode{{Type: "text", Text: text}}
	}
	return node
}

// serializeList преобразует ListGroup в bulletList, orderedList или taskList.
func serializeList(list *grouper.ListGroup) TipTapNode {
	listType, itemType := "bulletList", "listItem"
	if len(list.Items) > 0 {
		first := list.Items[0].Item.BlockOp
		switch {
		case first.IsOrderedList():
			listType = "orderedList"
		case first.IsACheckList():
			listType, itemType = "taskList", "taskItem"
		}
	}

	node := TipTapNode{
		Type:    listType,
		Content: make([]TipTapNode, 0, len(list.Items)),
	}

	for _, li := range list.Items {
		item := TipTapNode{
			Type: itemType,
			Content: []TipTapNode{{
				Type:    "paragraph",
				Attrs:   withBlockAttrs(nil, li.Item.BlockOp.Attributes),
				Content: serializeInlines(li.Item.Ops),
			}},
		}
		if itemType == "taskItem" {
			item.Attrs = map[string]any{"checked": li.Item.BlockOp.IsCheckedList()}
		}
		if li.InnerList != nil {
			item.Content = append(item.Content, serializeList(li.InnerList))
		}
		node.Content = append(node.Content, item)
	}
	return node
}

func serializeInlines(ops []delta.Op) []TipTapNode {
	var nodes []TipTapNode
	for _, op := range ops {
		if node := serializeInline(op); node != nil {
			nodes = append(nodes, *node)
		}
	}
	return nodes
}

func serializeInline(op delta.Op) *TipTapNode {
	switch op.Insert.Kind {
	case delta.KindText:
		if op.Insert.Value == delta.NewLine {
			return &TipTapNode{Type: "hardBreak"}
		}
		return &TipTapNode{
			Type:  "text",
			Text:  op.Insert.Value,
			Marks: marksFromAttributes(op.Attributes),
		}
	case delta.KindImage:
		return serializeImage(op)
	case delta.KindVideo:
		node := serializeVideo(op)
		return &node
	case delta.KindFormula:
		return &TipTapNode{
			Type:  "inlineMath",
			Attrs: map[string]any{"latex": op.Insert.Value},
		}
	case delta.KindMention:
		return serializeMention(op)
	case delta.KindCustom:
		node := serializeEmbed(op)
		return &node
	}
	return nil
}

func serializeImage(op delta.Op) *TipTapNode {
	node := &TipTapNode{
		Type:  "image",
		Attrs: map[string]any{"src": op.Insert.Value},
	}
	if op.Attributes.Width != "" {
		node.Attrs["width"] = op.Attributes.Width
	}
	if op.Attributes.Link != "" {
		node.Marks = []TipTapMark{{Type: "link", Attrs: map[string]any{"href": op.Attributes.Link}}}
	}
	return node
}

func serializeVideo(op delta.Op) TipTapNode {
	return TipTapNode{
		Type:  "video",
		Attrs: map[string]any{"src": op.Insert.Value},
	}
}

func serializeMention(op delta.Op) *TipTapNode {
	record := op.Insert.MentionRecord()
	attrs := map[string]any{}

	for _, key := range []string{"id", "slug", "value"} {
		if id := getAttrString(record, key); id != "" {
			attrs["id"] = id
			break
		}
	}
	if label := getAttrString(record, "value"); label != "" {
		attrs["label"] = label
	} else if name := getAttrString(record, "name"); name != "" {
		attrs["label"] = name
	}
	if char := getAttrString(record, "denotationChar"); char != "" {
		attrs["mentionSuggestionChar"] = char
	}

	return &TipTapNode{Type: "mention", Attrs: attrs}
}

// serializeEmbed произвольный embed сохраняется как есть.
func serializeEmbed(op delta.Op) TipTapNode {
	return TipTapNode{
		Type: "embed",
		Attrs: map[string]any{
			"kind":  op.Insert.CustomKind,
			"value": op.Insert.Payload,
		},
	}
}

// withBlockAttrs добавляет выравнивание, направление и отступ блока.
func withBlockAttrs(m map[string]any, attrs delta.Attributes) map[string]any {
	set := func(key string, v any) {
		if m == nil {
			m = make(map[string]any)
		}
		m[key] = v
	}
	if attrs.Align != "" {
		set("textAlign", attrs.Align)
	}
	if attrs.Direction != "" {
		set("dir", attrs.Direction)
	}
	if attrs.Indent > 0 {
		set("indent", attrs.Indent)
	}
	return m
}
