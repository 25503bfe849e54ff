package delta

import "encoding/json"

// Op классифицированная insert-операция. Значение неизменяемое:
// все модификации возвращают копию.
type Op struct {
	Insert     Insert
	Attributes Attributes
}

func New(insert Insert, attrs Attributes) Op {
	attrs.Indent = clampIndent(attrs.Indent)
	return Op{Insert: insert, Attributes: attrs}
}

// NewLineOp операция-перенос без атрибутов.
func NewLineOp() Op {
	return Op{Insert: Text(NewLine)}
}

// WithIndent возвращает копию операции с заданным отступом.
func (o Op) WithIndent(n int) Op {
	o.Attributes.Indent = clampIndent(n)
	return o
}

func (o Op) isNewLine() bool {
	return o.Insert.Kind == KindText && o.Insert.Value == NewLine
}

// IsBlockDefining перенос строки с блочными атрибутами: завершает блок и задает его стиль.
func (o Op) IsBlockDefining() bool {
	return o.isNewLine() && o.Attributes.HasBlockAttributes()
}

// IsJustNewline перенос строки без блочных атрибутов (перенос внутри абзаца).
func (o Op) IsJustNewline() bool {
	return o.isNewLine() && !o.Attributes.HasBlockAttributes()
}

func (o Op) IsContainerBlock() bool {
	return o.IsBlockquote() || o.IsHeader() || o.IsCodeBlock()
}

func (o Op) IsBlockquote() bool {
	return o.Attributes.Blockquote
}

func (o Op) IsHeader() bool {
	return o.Attributes.Header > 0
}

func (o Op) IsCodeBlock() bool {
	return o.Attributes.CodeBlock
}

func (o Op) IsSameHeaderAs(other Op) bool {
	return o.IsHeader() && o.Attributes.Header == other.Attributes.Header
}

// HasSameAdiAs совпадение выравнивания, направления и отступа.
func (o Op) HasSameAdiAs(other Op) bool {
	return o.Attributes.Align == other.Attributes.Align &&
		o.Attributes.Direction == other.Attributes.Direction &&
		o.Attributes.Indent == other.Attributes.Indent
}

func (o Op) HasSameIndentationAs(other Op) bool {
	return o.Attributes.Indent == other.Attributes.Indent
}

func (o Op) HasHigherIndentThan(other Op) bool {
	return o.Attributes.Indent > other.Attributes.Indent
}

// IsInline не контейнерный блок и не видео.
func (o Op) IsInline() bool {
	return !(o.IsContainerBlock() || o.IsVideo())
}

func (o Op) IsList() bool {
	return o.Attributes.List != ""
}

func (o Op) IsOrderedList() bool {
	return o.Attributes.List == ListOrdered
}

func (o Op) IsBulletList() bool {
	return o.Attributes.List == ListBullet
}

func (o Op) IsCheckedList() bool {
	return o.Attributes.List == ListChecked
}

func (o Op) IsUncheckedList() bool {
	return o.Attributes.List == ListUnchecked
}

func (o Op) IsACheckList() bool {
	return o.IsCheckedList() || o.IsUncheckedList()
}

// IsSameListAs оба элемента списка одного семейства: нумерованный или маркированный
// (bullet, checked и unchecked считаются одним семейством).
func (o Op) IsSameListAs(other Op) bool {
	return o.IsList() && other.IsList() && o.listFamily() == other.listFamily()
}

func (o Op) listFamily() ListType {
	if o.IsOrderedList() {
		return ListOrdered
	}
	return ListBullet
}

func (o Op) IsText() bool {
	return o.Insert.Kind == KindText
}

func (o Op) IsImage() bool {
	return o.Insert.Kind == KindImage
}

func (o Op) IsFormula() bool {
	return o.Insert.Kind == KindFormula
}

func (o Op) IsVideo() bool {
	return o.Insert.Kind == KindVideo
}

func (o Op) IsLink() bool {
	return o.IsText() && o.Attributes.Link != ""
}

func (o Op) IsCustom() bool {
	return o.Insert.Kind == KindCustom
}

// IsCustomEmbedBlock произвольный embed, который рисуется отдельным блоком.
func (o Op) IsCustomEmbedBlock() bool {
	return o.IsCustom() && o.Attributes.RenderAsBlock
}

func (o Op) IsMentions() bool {
	return o.Insert.Kind == KindMention || (o.IsText() && o.Attributes.Mentions)
}

// Raw возвращает операцию в исходном виде {insert, attributes}.
func (o Op) Raw() RawOp {
	return RawOp{
		Insert:     o.Insert.raw(),
		Attributes: o.Attributes.Raw(),
	}
}

func (o Op) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Raw())
}
