package tables

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// StageList is the ordered list of a hideout area's stages.
//
// The host stores stages as an object keyed by ordinal ("0", "1", ...).
// StageList accepts that form as well as a plain JSON array and always
// encodes as an array in ordinal order.
type StageList []*HideoutStage

// UnmarshalJSON implements [json.Unmarshaler].
func (s *StageList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var list []*HideoutStage
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*s = list
		return nil
	}

	var keyed map[string]*HideoutStage
	if err := json.Unmarshal(data, &keyed); err != nil {
		return fmt.Errorf("tables: stages: %w", err)
	}
	type entry struct {
		ord   int
		stage *HideoutStage
	}
	entries := make([]entry, 0, len(keyed))
	for k, v := range keyed {
		ord, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("tables: stage key %q is not an ordinal", k)
		}
		entries = append(entries, entry{ord: ord, stage: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ord < entries[j].ord })

	list := make(StageList, len(entries))
	for i, e := range entries {
		list[i] = e.stage
	}
	*s = list
	return nil
}
