// Package taxonomy classifies item templates by base class.
//
// Item templates form a tree through their _parent references; an item is
// "of" a base class when that class appears anywhere above it. Only
// templates of type Item are classified: base-class nodes belong to no
// category, not even their ancestors'. [Tree]
// implements [host.Classifier] over a loaded item table, and [BuildIndex]
// turns any classifier into a precomputed category-to-items index so that
// rule application walks each category's members directly instead of asking
// the classifier once per item per rule.
package taxonomy

import (
	"github.com/MrWong99/tablepatch/pkg/host"
	"github.com/MrWong99/tablepatch/pkg/tables"
)

// maxDepth bounds parent-chain walks so a malformed (cyclic) table cannot hang
// the classifier. Real hierarchies are well under ten levels deep.
const maxDepth = 64

var _ host.Classifier = (*Tree)(nil)

// Tree answers base-class questions from the parent links of an item table.
// It is read-only after construction and safe for concurrent use.
type Tree struct {
	parents map[string]string
	items   map[string]bool
}

// New builds a Tree from items. Later changes to items are not observed.
func New(items map[string]*tables.Item) *Tree {
	t := &Tree{
		parents: make(map[string]string, len(items)),
		items:   make(map[string]bool, len(items)),
	}
	for id, it := range items {
		if it == nil {
			continue
		}
		t.parents[id] = it.Parent
		if it.Type == tables.TypeItem {
			t.items[id] = true
		}
	}
	return t
}

// IsOfCategory reports whether itemID is an Item template and category is
// one of its ancestors. An item is not considered a member of its own ID.
func (t *Tree) IsOfCategory(itemID, category string) bool {
	if category == "" || !t.items[itemID] {
		return false
	}
	cur := t.parents[itemID]
	for depth := 0; cur != "" && depth < maxDepth; depth++ {
		if cur == category {
			return true
		}
		cur = t.parents[cur]
	}
	return false
}

// Ancestors returns the parent chain of itemID, nearest first.
func (t *Tree) Ancestors(itemID string) []string {
	var out []string
	cur := t.parents[itemID]
	for depth := 0; cur != "" && depth < maxDepth; depth++ {
		out = append(out, cur)
		cur = t.parents[cur]
	}
	return out
}

// Len returns the number of templates known to the tree.
func (t *Tree) Len() int {
	return len(t.parents)
}
