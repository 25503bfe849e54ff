package grouper

import (
	"testing"

	"github.com/aisa-it/delta2html/internal/delta2html/delta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string) delta.Op {
	return delta.New(delta.Text(s), delta.Attributes{})
}

func nl(attrs delta.Attributes) delta.Op {
	return delta.New(delta.Text(delta.NewLine), attrs)
}

func listItem(lt delta.ListType, indent int) delta.Op {
	return nl(delta.Attributes{List: lt, Indent: indent})
}

func video(src string) delta.Op {
	return delta.New(delta.Video(src), delta.Attributes{})
}

func TestPairOpsWithTheirBlock(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, PairOpsWithTheirBlock(nil))
	})

	t.Run("trailing inline run", func(t *testing.T) {
		groups := PairOpsWithTheirBlock([]delta.Op{text("a"), nl(delta.Attributes{}), text("b")})
		require.Len(t, groups, 1)
		run, ok := groups[0].(*InlineRun)
		require.True(t, ok)
		assert.Len(t, run.Ops, 3)
	})

	t.Run("block takes ops after last plain newline", func(t *testing.T) {
		ops := []delta.Op{
			text("intro"),
			nl(delta.Attributes{}),
			text("Title"),
			text(" more"),
			nl(delta.Attributes{Header: 1}),
		}
		groups := PairOpsWithTheirBlock(ops)
		require.Len(t, groups, 2)

		run, ok := groups[0].(*InlineRun)
		require.True(t, ok)
		assert.Equal(t, ops[:2], run.Ops)

		block, ok := groups[1].(*Block)
		require.True(t, ok)
		assert.Equal(t, ops[4], block.BlockOp)
		assert.Equal(t, ops[2:4], block.Ops)
	})

	t.Run("empty block", func(t *testing.T) {
		groups := PairOpsWithTheirBlock([]delta.Op{nl(delta.Attributes{Blockquote: true})})
		require.Len(t, groups, 1)
		block := groups[0].(*Block)
		assert.Empty(t, block.Ops)
	})

	t.Run("custom embed block", func(t *testing.T) {
		embed := delta.New(delta.Custom("chart", "c1"), delta.Attributes{RenderAsBlock: true})
		groups := PairOpsWithTheirBlock([]delta.Op{text("a"), embed, text("b")})
		require.Len(t, groups, 3)
		assert.IsType(t, &InlineRun{}, groups[0])
		block := groups[1].(*Block)
		assert.Equal(t, embed, block.BlockOp)
		assert.Empty(t, block.Ops)
		assert.IsType(t, &InlineRun{}, groups[2])
	})

	t.Run("source is not modified", func(t *testing.T) {
		ops := []delta.Op{text("a"), nl(delta.Attributes{Header: 1})}
		groups := PairOpsWithTheirBlock(ops)
		groups[0].(*Block).Ops[0] = text("changed")
		assert.Equal(t, "a", ops[0].Insert.Value)
	})
}

// Видео между двумя абзацами дает три группы верхнего уровня.
func TestVideoBetweenParagraphs(t *testing.T) {
	ops := []delta.Op{
		text("before"),
		nl(delta.Attributes{}),
		video("https://v"),
		text("after"),
		nl(delta.Attributes{}),
	}

	groups := GroupOps(ops, DefaultMergeOptions())
	require.Len(t, groups, 3)
	assert.IsType(t, &InlineRun{}, groups[0])
	assert.IsType(t, &VideoItem{}, groups[1])
	assert.IsType(t, &InlineRun{}, groups[2])
	assert.Equal(t, GroupVideo, groups[1].Type())
}

func TestMergeHeaders(t *testing.T) {
	ops := []delta.Op{
		text("a"),
		nl(delta.Attributes{Header: 1}),
		text("b"),
		nl(delta.Attributes{Header: 1}),
	}

	groups := GroupOps(ops, DefaultMergeOptions())
	require.Len(t, groups, 1)
	merged, ok := groups[0].(*MergedBlock)
	require.True(t, ok)
	assert.Len(t, merged.Blocks, 2)
	assert.Equal(t, GroupBlock, merged.Type())
}

func TestMergeSameStyleBlocks(t *testing.T) {
	quote := func(s string, attrs delta.Attributes) []delta.Op {
		attrs.Blockquote = true
		return []delta.Op{text(s), nl(attrs)}
	}

	t.Run("different levels do not merge", func(t *testing.T) {
		ops := []delta.Op{text("a"), nl(delta.Attributes{Header: 1}), text("b"), nl(delta.Attributes{Header: 2})}
		groups := MergeSameStyleBlocks(PairOpsWithTheirBlock(ops), DefaultMergeOptions())
		require.Len(t, groups, 2)
		assert.Len(t, groups[0].(*MergedBlock).Blocks, 1)
		assert.Len(t, groups[1].(*MergedBlock).Blocks, 1)
	})

	t.Run("re-indented blockquote starts new group", func(t *testing.T) {
		var ops []delta.Op
		ops = append(ops, quote("a", delta.Attributes{})...)
		ops = append(ops, quote("b", delta.Attributes{})...)
		ops = append(ops, quote("c", delta.Attributes{Indent: 1})...)
		groups := MergeSameStyleBlocks(PairOpsWithTheirBlock(ops), DefaultMergeOptions())
		require.Len(t, groups, 2)
		assert.Len(t, groups[0].(*MergedBlock).Blocks, 2)
		assert.Len(t, groups[1].(*MergedBlock).Blocks, 1)
	})

	t.Run("plain blocks pass through", func(t *testing.T) {
		ops := []delta.Op{text("a"), nl(delta.Attributes{Align: "center"}), text("b"), nl(delta.Attributes{Align: "center"})}
		groups := MergeSameStyleBlocks(PairOpsWithTheirBlock(ops), DefaultMergeOptions())
		require.Len(t, groups, 2)
		assert.IsType(t, &Block{}, groups[0])
		assert.IsType(t, &Block{}, groups[1])
	})

	t.Run("list blocks are never merged", func(t *testing.T) {
		ops := []delta.Op{
			text("a"), nl(delta.Attributes{List: delta.ListBullet, Blockquote: true}),
			text("b"), nl(delta.Attributes{List: delta.ListBullet, Blockquote: true}),
		}
		groups := MergeSameStyleBlocks(PairOpsWithTheirBlock(ops), DefaultMergeOptions())
		require.Len(t, groups, 2)
		assert.IsType(t, &Block{}, groups[0])
	})

	t.Run("inline run breaks the run", func(t *testing.T) {
		ops := []delta.Op{
			text("a"), nl(delta.Attributes{CodeBlock: true}),
			video("https://v"),
			text("b"), nl(delta.Attributes{CodeBlock: true}),
		}
		groups := MergeSameStyleBlocks(PairOpsWithTheirBlock(ops), DefaultMergeOptions())
		require.Len(t, groups, 3)
		assert.IsType(t, &MergedBlock{}, groups[0])
		assert.IsType(t, &VideoItem{}, groups[1])
		assert.IsType(t, &MergedBlock{}, groups[2])
	})

	t.Run("idempotent", func(t *testing.T) {
		var ops []delta.Op
		ops = append(ops, quote("a", delta.Attributes{})...)
		ops = append(ops, quote("b", delta.Attributes{})...)
		ops = append(ops, text("c"), nl(delta.Attributes{Header: 3}))
		once := MergeSameStyleBlocks(PairOpsWithTheirBlock(ops), DefaultMergeOptions())
		twice := MergeSameStyleBlocks(once, DefaultMergeOptions())
		assert.Equal(t, once, twice)
	})
}

func TestMergeFlagIndependence(t *testing.T) {
	ops := []delta.Op{
		text("h1"), nl(delta.Attributes{Header: 1}),
		text("h2"), nl(delta.Attributes{Header: 1}),
		text("q1"), nl(delta.Attributes{Blockquote: true}),
		text("q2"), nl(delta.Attributes{Blockquote: true}),
	}

	opts := DefaultMergeOptions()
	opts.Headers = false
	groups := GroupOps(ops, opts)
	require.Len(t, groups, 3)

	assert.IsType(t, &Block{}, groups[0])
	assert.IsType(t, &Block{}, groups[1])
	quotes, ok := groups[2].(*MergedBlock)
	require.True(t, ok)
	assert.Len(t, quotes.Blocks, 2)

	opts = DefaultMergeOptions()
	opts.Blockquotes = false
	groups = GroupOps(ops, opts)
	require.Len(t, groups, 3)
	assert.Len(t, groups[0].(*MergedBlock).Blocks, 2)
	assert.IsType(t, &Block{}, groups[1])
	assert.IsType(t, &Block{}, groups[2])
}

func TestMergedBlockOps(t *testing.T) {
	m := &MergedBlock{Blocks: []*Block{
		{BlockOp: nl(delta.Attributes{CodeBlock: true}), Ops: []delta.Op{text("a")}},
		{BlockOp: nl(delta.Attributes{CodeBlock: true})},
		{BlockOp: nl(delta.Attributes{CodeBlock: true}), Ops: []delta.Op{text("b")}},
	}}

	var values []string
	for _, op := range m.Ops() {
		values = append(values, op.Insert.Value)
	}
	assert.Equal(t, []string{"a", "\n", "\n", "b"}, values)
	assert.True(t, m.BlockOp().IsCodeBlock())
}

func TestRoundTripCount(t *testing.T) {
	ops := []delta.Op{
		text("p"), nl(delta.Attributes{}),
		text("h"), nl(delta.Attributes{Header: 2}),
		text("h"), nl(delta.Attributes{Header: 2}),
		text("one"), listItem(delta.ListOrdered, 0),
		text("two"), listItem(delta.ListOrdered, 1),
		text("three"), listItem(delta.ListBullet, 3),
		listItem(delta.ListBullet, 0),
		video("https://v"),
		text("q"), nl(delta.Attributes{Blockquote: true}),
		delta.New(delta.Custom("chart", 1.0), delta.Attributes{RenderAsBlock: true}),
		text("tail"),
	}

	groups := GroupOps(ops, DefaultMergeOptions())
	assert.Equal(t, len(ops), CountOps(groups))

	var walked []delta.Op
	Walk(groups, func(op delta.Op) { walked = append(walked, op) })
	require.Len(t, walked, len(ops))
	for i := range ops {
		assert.Equal(t, ops[i].Insert, walked[i].Insert, "op %d keeps document order", i)
	}
}

func TestGroupRaw(t *testing.T) {
	groups, err := GroupRaw([]delta.RawOp{
		{Insert: "Hello\nWorld"},
		{Insert: "\n", Attributes: map[string]any{"list": "bullet"}},
	}, DefaultMergeOptions())
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.IsType(t, &InlineRun{}, groups[0])
	assert.IsType(t, &ListGroup{}, groups[1])

	_, err = GroupRaw([]delta.RawOp{{Insert: 1.0}}, DefaultMergeOptions())
	assert.ErrorIs(t, err, delta.ErrMalformedInput)
}
