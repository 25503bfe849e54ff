package grouper

import (
	"log/slog"
	"slices"

	"github.com/aisa-it/delta2html/internal/delta2html/delta"
)

// MergeOptions флаги слияния подряд идущих блоков одного стиля.
type MergeOptions struct {
	Blockquotes bool
	Headers     bool
	CodeBlocks  bool
}

func DefaultMergeOptions() MergeOptions {
	return MergeOptions{
		Blockquotes: true,
		Headers:     true,
		CodeBlocks:  true,
	}
}

// GroupOps полный конвейер: связывание с блоками, слияние, вложение списков.
func GroupOps(ops []delta.Op, opts MergeOptions) []Group {
	paired := PairOpsWithTheirBlock(ops)
	merged := MergeSameStyleBlocks(paired, opts)
	nested := NestLists(merged)
	slog.Debug("Delta grouped", "ops", len(ops), "paired", len(paired), "groups", len(nested))
	return nested
}

// GroupRaw классифицирует сырые операции и группирует их.
func GroupRaw(raw []delta.RawOp, opts MergeOptions) ([]Group, error) {
	ops, err := delta.Convert(raw)
	if err != nil {
		return nil, err
	}
	return GroupOps(ops, opts), nil
}

// PairOpsWithTheirBlock разбивает поток операций на блоки.
// Строчные операции копятся в буфере; блочная операция забирает из буфера все,
// что идет после последнего простого переноса строки, остальное уходит в InlineRun.
// Видео и блочные embed сбрасывают буфер и выводятся отдельно.
func PairOpsWithTheirBlock(ops []delta.Op) []Group {
	var result []Group
	start := 0
	lastNewline := -1

	flushInline := func(end int) {
		if end > start {
			result = append(result, &InlineRun{Ops: slices.Clone(ops[start:end])})
		}
	}

	for i, op := range ops {
		switch {
		case op.IsBlockDefining():
			if lastNewline >= start {
				flushInline(lastNewline + 1)
				start = lastNewline + 1
			}
			result = append(result, &Block{BlockOp: op, Ops: slices.Clone(ops[start:i])})
		case op.IsVideo():
			flushInline(i)
			result = append(result, &VideoItem{Op: op})
		case op.IsCustomEmbedBlock():
			flushInline(i)
			result = append(result, &Block{BlockOp: op})
		default:
			if op.IsJustNewline() {
				lastNewline = i
			}
			continue
		}
		start = i + 1
		lastNewline = -1
	}
	flushInline(len(ops))

	return result
}

// MergeSameStyleBlocks заменяет подряд идущие блоки одного стиля на MergedBlock.
// Одиночный подходящий блок тоже становится MergedBlock из одного элемента,
// прочие группы проходят без изменений.
func MergeSameStyleBlocks(groups []Group, opts MergeOptions) []Group {
	result := make([]Group, 0, len(groups))
	var run *MergedBlock

	for _, g := range groups {
		b, ok := g.(*Block)
		if !ok || !opts.mergeable(b.BlockOp) {
			result = append(result, g)
			run = nil
			continue
		}

		if run != nil && opts.sameStyle(run.Blocks[len(run.Blocks)-1].BlockOp, b.BlockOp) {
			run.Blocks = append(run.Blocks, b)
			continue
		}

		run = &MergedBlock{Blocks: []*Block{b}}
		result = append(result, run)
	}
	return result
}

func (o MergeOptions) mergeable(op delta.Op) bool {
	if !op.IsBlockDefining() || op.IsList() {
		return false
	}
	return (o.Blockquotes && op.IsBlockquote()) ||
		(o.Headers && op.IsHeader()) ||
		(o.CodeBlocks && op.IsCodeBlock())
}

func (o MergeOptions) sameStyle(prev, op delta.Op) bool {
	if !prev.HasSameAdiAs(op) {
		return false
	}
	return (o.Blockquotes && prev.IsBlockquote() && op.IsBlockquote()) ||
		(o.Headers && prev.IsSameHeaderAs(op)) ||
		(o.CodeBlocks && prev.IsCodeBlock() && op.IsCodeBlock())
}
