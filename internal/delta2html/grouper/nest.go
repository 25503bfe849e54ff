package grouper

// NestLists заменяет каждую непрерывную серию элементов списка на корневой ListGroup
// с вложенными списками, восстановленными по отступам. Любая другая группа завершает серию.
func NestLists(groups []Group) []Group {
	result := make([]Group, 0, len(groups))
	var run []*Block

	flush := func() {
		if len(run) > 0 {
			result = append(result, nestRun(run))
			run = nil
		}
	}

	for _, g := range groups {
		if b, ok := g.(*Block); ok && b.BlockOp.IsList() {
			run = append(run, b)
			continue
		}
		flush()
		result = append(result, g)
	}
	flush()

	return result
}

type listFrame struct {
	group  *ListGroup
	indent int
}

// nestRun строит дерево для одной серии.
// Глубже текущего уровня открывается ровно один вложенный список под последним элементом,
// поэтому скачок отступа 0 -> 2 дает один промежуточный уровень.
// Отступ размещенной операции сбрасывается в 0: вложенность выражена структурой дерева.
func nestRun(run []*Block) *ListGroup {
	root := &ListGroup{}
	stack := []listFrame{{group: root}}

	for _, b := range run {
		d := b.BlockOp.Attributes.Indent

		for len(stack) > 1 && stack[len(stack)-1].indent > d {
			stack = stack[:len(stack)-1]
		}

		top := stack[len(stack)-1]
		if d > top.indent && len(top.group.Items) > 0 {
			parent := top.group.Items[len(top.group.Items)-1]
			if parent.InnerList == nil {
				parent.InnerList = &ListGroup{}
			}
			stack = append(stack, listFrame{group: parent.InnerList})
		}

		current := &stack[len(stack)-1]
		current.group.Items = append(current.group.Items, &ListItem{
			Item: &Block{BlockOp: b.BlockOp.WithIndent(0), Ops: b.Ops},
		})
		current.indent = d
	}

	return root
}
