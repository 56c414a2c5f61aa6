package taxonomy

import (
	"slices"

	"github.com/MrWong99/tablepatch/pkg/host"
	"github.com/MrWong99/tablepatch/pkg/tables"
)

// Index maps a category to the IDs of the items belonging to it, sorted.
type Index map[string][]string

// BuildIndex classifies every item once for each of the given categories.
// Duplicate categories are ignored. The classifier is consulted exactly
// len(items) * len(unique categories) times.
func BuildIndex(items map[string]*tables.Item, c host.Classifier, categories ...string) Index {
	ix := make(Index, len(categories))
	for _, cat := range categories {
		if _, seen := ix[cat]; seen {
			continue
		}
		ix[cat] = []string{}
	}
	for id, it := range items {
		if it == nil {
			continue
		}
		for cat := range ix {
			if c.IsOfCategory(id, cat) {
				ix[cat] = append(ix[cat], id)
			}
		}
	}
	for cat := range ix {
		slices.Sort(ix[cat])
	}
	return ix
}

// Items returns the IDs indexed under category. The result must not be modified.
func (ix Index) Items(category string) []string {
	return ix[category]
}

// Contains reports whether id is indexed under category.
func (ix Index) Contains(category, id string) bool {
	_, found := slices.BinarySearch(ix[category], id)
	return found
}
