package ast

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// findMatchingDescendant locates the node covering exactly [start, end) in a
// freshly parsed tree. Descent is guided: only children whose own range
// fully contains the target are entered, which skips trivial wrapper nodes
// grammars interleave around the construct. Node identity never survives
// across parses; only byte offsets are trusted.
func findMatchingDescendant(node *tree_sitter.Node, start, end int) *tree_sitter.Node {
	if int(node.StartByte()) == start && int(node.EndByte()) == end {
		return node
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if int(child.StartByte()) <= start && int(child.EndByte()) >= end {
			if found := findMatchingDescendant(child, start, end); found != nil {
				return found
			}
		}
	}

	return nil
}
