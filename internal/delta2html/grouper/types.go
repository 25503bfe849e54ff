// Пакет grouper строит иерархическую структуру документа из плоской последовательности операций.
//
// Основные возможности:
//   - Связывание строчных операций с завершающей их блочной операцией.
//   - Слияние подряд идущих блоков одного стиля (цитаты, заголовки, код).
//   - Восстановление дерева вложенных списков по уровням отступа.
package grouper

import (
	"encoding/json"

	"github.com/aisa-it/delta2html/internal/delta2html/delta"
)

type GroupType int

const (
	GroupInline GroupType = iota
	GroupBlock
	GroupList
	GroupVideo
)

func (t GroupType) String() string {
	switch t {
	case GroupInline:
		return "inline-group"
	case GroupBlock:
		return "block"
	case GroupList:
		return "list"
	case GroupVideo:
		return "video"
	}
	return "unknown"
}

func (t GroupType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Group элемент результирующей последовательности:
// *InlineRun, *Block, *MergedBlock, *VideoItem или *ListGroup.
type Group interface {
	Type() GroupType
}

// InlineRun строчное содержимое без завершающей блочной операции.
type InlineRun struct {
	Ops []delta.Op
}

// Block логический блок: строчное содержимое и завершающая его операция.
type Block struct {
	BlockOp delta.Op
	Ops     []delta.Op
}

// MergedBlock подряд идущие блоки одного стиля.
type MergedBlock struct {
	Blocks []*Block
}

// VideoItem самостоятельное видео.
type VideoItem struct {
	Op delta.Op
}

type ListGroup struct {
	Items []*ListItem
}

type ListItem struct {
	Item      *Block
	InnerList *ListGroup
}

func (*InlineRun) Type() GroupType   { return GroupInline }
func (*Block) Type() GroupType       { return GroupBlock }
func (*MergedBlock) Type() GroupType { return GroupBlock }
func (*VideoItem) Type() GroupType   { return GroupVideo }
func (*ListGroup) Type() GroupType   { return GroupList }

// BlockOp операция, задающая стиль объединенного блока.
func (m *MergedBlock) BlockOp() delta.Op {
	return m.Blocks[0].BlockOp
}

// Ops содержимое всех блоков, разделенное переносами строк.
// Пустой блок представлен одиночным переносом.
func (m *MergedBlock) Ops() []delta.Op {
	var ops []delta.Op
	last := len(m.Blocks) - 1
	for i, b := range m.Blocks {
		if len(b.Ops) == 0 {
			ops = append(ops, delta.NewLineOp())
			continue
		}
		ops = append(ops, b.Ops...)
		if i < last {
			ops = append(ops, delta.NewLineOp())
		}
	}
	return ops
}

// Walk обходит все операции дерева групп в порядке документа.
func Walk(groups []Group, fn func(delta.Op)) {
	for _, g := range groups {
		walkGroup(g, fn)
	}
}

func walkGroup(g Group, fn func(delta.Op)) {
	switch gg := g.(type) {
	case *InlineRun:
		for _, op := range gg.Ops {
			fn(op)
		}
	case *Block:
		walkBlock(gg, fn)
	case *MergedBlock:
		for _, b := range gg.Blocks {
			walkBlock(b, fn)
		}
	case *VideoItem:
		fn(gg.Op)
	case *ListGroup:
		walkList(gg, fn)
	}
}

func walkBlock(b *Block, fn func(delta.Op)) {
	for _, op := range b.Ops {
		fn(op)
	}
	fn(b.BlockOp)
}

func walkList(l *ListGroup, fn func(delta.Op)) {
	for _, li := range l.Items {
		walkBlock(li.Item, fn)
		if li.InnerList != nil {
			walkList(li.InnerList, fn)
		}
	}
}

// CountOps количество операций, достижимых из дерева групп.
func CountOps(groups []Group) int {
	n := 0
	Walk(groups, func(delta.Op) { n++ })
	return n
}

func (g *InlineRun) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type GroupType  `json:"type"`
		Ops  []delta.Op `json:"ops"`
	}{g.Type(), g.Ops})
}

func (g *Block) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    GroupType  `json:"type"`
		BlockOp delta.Op   `json:"op"`
		Ops     []delta.Op `json:"ops"`
	}{g.Type(), g.BlockOp, g.Ops})
}

func (g *MergedBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   GroupType `json:"type"`
		Merged bool      `json:"merged"`
		Blocks []*Block  `json:"blocks"`
	}{g.Type(), true, g.Blocks})
}

func (g *VideoItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type GroupType `json:"type"`
		Op   delta.Op  `json:"op"`
	}{g.Type(), g.Op})
}

func (g *ListGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  GroupType   `json:"type"`
		Items []*ListItem `json:"items"`
	}{g.Type(), g.Items})
}

func (li *ListItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Item      *Block     `json:"item"`
		InnerList *ListGroup `json:"inner_list,omitempty"`
	}{li.Item, li.InnerList})
}
