package category

import "github.com/fekuna/omnipos-admin-service/internal/model"

// BuildTree nests a flat category list under parent_id in one pass.
//
// Each input category appears exactly once in the result: as a root when
// parent_id is empty or names a category that is not in the list, otherwise
// as a child of that category. Children keep the relative order of the
// input. Categories caught in a parent cycle (self-parenting included) are
// unreachable from any root after the pass; they are promoted to roots in
// input order so the result is always a finite tree. When an id repeats,
// only its first occurrence is used.
func BuildTree(flat []model.Category) []*model.Category {
	lookup := make(map[string]*model.Category, len(flat))
	order := make([]*model.Category, 0, len(flat))
	for i := range flat {
		if _, dup := lookup[flat[i].ID]; dup {
			continue
		}
		c := flat[i]
		c.Children = []*model.Category{}
		lookup[c.ID] = &c
		order = append(order, &c)
	}

	roots := []*model.Category{}
	attachedTo := make(map[string]*model.Category, len(order))

	for _, node := range order {
		if node.ParentID == nil || *node.ParentID == "" {
			roots = append(roots, node)
			continue
		}
		parent, ok := lookup[*node.ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
		attachedTo[node.ID] = parent
	}

	reached := make(map[string]bool, len(order))
	for _, r := range roots {
		markReached(r, reached)
	}

	for _, node := range order {
		if reached[node.ID] {
			continue
		}
		if parent := attachedTo[node.ID]; parent != nil {
			parent.Children = removeChild(parent.Children, node)
		}
		roots = append(roots, node)
		markReached(node, reached)
	}

	return roots
}

// Flatten walks a tree depth first, parents before children.
func Flatten(roots []*model.Category) []*model.Category {
	var out []*model.Category
	stack := make([]*model.Category, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return out
}

func markReached(root *model.Category, reached map[string]bool) {
	stack := []*model.Category{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[n.ID] {
			continue
		}
		reached[n.ID] = true
		stack = append(stack, n.Children...)
	}
}

func removeChild(children []*model.Category, target *model.Category) []*model.Category {
	out := children[:0]
	for _, c := range children {
		if c != target {
			out = append(out, c)
		}
	}
	return out
}
