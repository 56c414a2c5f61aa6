package tables

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// Extra holds the members of a host record that tablepatch does not model,
// keyed by JSON name. They are kept verbatim so that a decoded record encodes
// back to everything the host wrote, not just the modelled fields.
type Extra map[string]json.RawMessage

// fieldNames caches the JSON member names of modelled struct types.
var fieldNames sync.Map // reflect.Type -> map[string]struct{}

func jsonNames(t reflect.Type) map[string]struct{} {
	if v, ok := fieldNames.Load(t); ok {
		return v.(map[string]struct{})
	}
	names := make(map[string]struct{}, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		names[name] = struct{}{}
	}
	v, _ := fieldNames.LoadOrStore(t, names)
	return v.(map[string]struct{})
}

// DecodeWithExtra decodes data into known and returns the members of the
// JSON object that no field of T claims. T must be a struct type without its
// own UnmarshalJSON; callers pass a method-less alias of their record type.
func DecodeWithExtra[T any](data []byte, known *T) (Extra, error) {
	if err := json.Unmarshal(data, known); err != nil {
		return nil, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for name := range jsonNames(reflect.TypeFor[T]()) {
		delete(all, name)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return Extra(all), nil
}

// EncodeWithExtra encodes known and merges extra into the resulting object.
// Modelled fields win over an extra member of the same name.
func EncodeWithExtra[T any](known *T, extra Extra) ([]byte, error) {
	data, err := json.Marshal(known)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for name, raw := range extra {
		if _, ok := all[name]; !ok {
			all[name] = raw
		}
	}
	return json.Marshal(all)
}

// The methods below route every host record through DecodeWithExtra and
// EncodeWithExtra.

func (it *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	extra, err := DecodeWithExtra(data, (*plain)(it))
	it.Extra = extra
	return err
}

func (it Item) MarshalJSON() ([]byte, error) {
	type plain Item
	return EncodeWithExtra((*plain)(&it), it.Extra)
}

func (p *ItemProps) UnmarshalJSON(data []byte) error {
	type plain ItemProps
	extra, err := DecodeWithExtra(data, (*plain)(p))
	p.Extra = extra
	return err
}

func (p ItemProps) MarshalJSON() ([]byte, error) {
	type plain ItemProps
	return EncodeWithExtra((*plain)(&p), p.Extra)
}

func (g *Grid) UnmarshalJSON(data []byte) error {
	type plain Grid
	extra, err := DecodeWithExtra(data, (*plain)(g))
	g.Extra = extra
	return err
}

func (g Grid) MarshalJSON() ([]byte, error) {
	type plain Grid
	return EncodeWithExtra((*plain)(&g), g.Extra)
}

func (p *GridProps) UnmarshalJSON(data []byte) error {
	type plain GridProps
	extra, err := DecodeWithExtra(data, (*plain)(p))
	p.Extra = extra
	return err
}

func (p GridProps) MarshalJSON() ([]byte, error) {
	type plain GridProps
	return EncodeWithExtra((*plain)(&p), p.Extra)
}

func (f *GridFilter) UnmarshalJSON(data []byte) error {
	type plain GridFilter
	extra, err := DecodeWithExtra(data, (*plain)(f))
	f.Extra = extra
	return err
}

func (f GridFilter) MarshalJSON() ([]byte, error) {
	type plain GridFilter
	return EncodeWithExtra((*plain)(&f), f.Extra)
}

func (a *HideoutArea) UnmarshalJSON(data []byte) error {
	type plain HideoutArea
	extra, err := DecodeWithExtra(data, (*plain)(a))
	a.Extra = extra
	return err
}

func (a HideoutArea) MarshalJSON() ([]byte, error) {
	type plain HideoutArea
	return EncodeWithExtra((*plain)(&a), a.Extra)
}

func (s *HideoutStage) UnmarshalJSON(data []byte) error {
	type plain HideoutStage
	extra, err := DecodeWithExtra(data, (*plain)(s))
	s.Extra = extra
	return err
}

func (s HideoutStage) MarshalJSON() ([]byte, error) {
	type plain HideoutStage
	return EncodeWithExtra((*plain)(&s), s.Extra)
}

func (l *Location) UnmarshalJSON(data []byte) error {
	type plain Location
	extra, err := DecodeWithExtra(data, (*plain)(l))
	l.Extra = extra
	return err
}

func (l Location) MarshalJSON() ([]byte, error) {
	type plain Location
	return EncodeWithExtra((*plain)(&l), l.Extra)
}

func (b *LocationBase) UnmarshalJSON(data []byte) error {
	type plain LocationBase
	extra, err := DecodeWithExtra(data, (*plain)(b))
	b.Extra = extra
	return err
}

func (b LocationBase) MarshalJSON() ([]byte, error) {
	type plain LocationBase
	return EncodeWithExtra((*plain)(&b), b.Extra)
}

func (g *Globals) UnmarshalJSON(data []byte) error {
	type plain Globals
	extra, err := DecodeWithExtra(data, (*plain)(g))
	g.Extra = extra
	return err
}

func (g Globals) MarshalJSON() ([]byte, error) {
	type plain Globals
	return EncodeWithExtra((*plain)(&g), g.Extra)
}

func (c *GlobalsConfig) UnmarshalJSON(data []byte) error {
	type plain GlobalsConfig
	extra, err := DecodeWithExtra(data, (*plain)(c))
	c.Extra = extra
	return err
}

func (c GlobalsConfig) MarshalJSON() ([]byte, error) {
	type plain GlobalsConfig
	return EncodeWithExtra((*plain)(&c), c.Extra)
}

func (c *ExpConfig) UnmarshalJSON(data []byte) error {
	type plain ExpConfig
	extra, err := DecodeWithExtra(data, (*plain)(c))
	c.Extra = extra
	return err
}

func (c ExpConfig) MarshalJSON() ([]byte, error) {
	type plain ExpConfig
	return EncodeWithExtra((*plain)(&c), c.Extra)
}

func (c *KillExpConfig) UnmarshalJSON(data []byte) error {
	type plain KillExpConfig
	extra, err := DecodeWithExtra(data, (*plain)(c))
	c.Extra = extra
	return err
}

func (c KillExpConfig) MarshalJSON() ([]byte, error) {
	type plain KillExpConfig
	return EncodeWithExtra((*plain)(&c), c.Extra)
}

func (c *RagFairConfig) UnmarshalJSON(data []byte) error {
	type plain RagFairConfig
	extra, err := DecodeWithExtra(data, (*plain)(c))
	c.Extra = extra
	return err
}

func (c RagFairConfig) MarshalJSON() ([]byte, error) {
	type plain RagFairConfig
	return EncodeWithExtra((*plain)(&c), c.Extra)
}
