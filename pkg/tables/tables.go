// Package tables defines the host database records that tablepatch reads and
// mutates: item templates, hideout areas, locations and the globals document.
//
// Only the fields the patch rules touch are modelled; every other member of a
// host record is kept in the record's [Extra] and written back unchanged.
// Fields whose absence is meaningful to the host are pointers so that "not
// declared" and "declared as zero" remain distinguishable after a
// decode/encode round trip. Records are created by the loader and afterwards
// only mutated in place.
package tables

import (
	"encoding/json"
	"fmt"
)

// Tables is the in-memory host database handed to post-database-load hooks.
type Tables struct {
	Globals   *Globals             `json:"globals"`
	Locations map[string]*Location `json:"locations"`
	Hideout   *Hideout             `json:"hideout"`
	Templates *Templates           `json:"templates"`
}

// Item returns the item template with the given ID.
func (t *Tables) Item(id string) (*Item, bool) {
	if t == nil || t.Templates == nil {
		return nil, false
	}
	it, ok := t.Templates.Items[id]
	return it, ok && it != nil
}

// Location returns the location record registered under name.
func (t *Tables) Location(name string) (*Location, bool) {
	if t == nil {
		return nil, false
	}
	loc, ok := t.Locations[name]
	return loc, ok && loc != nil
}

// Templates groups the template tables. Only items are needed.
type Templates struct {
	Items map[string]*Item `json:"items"`
}

// Item is a single item template.
type Item struct {
	ID     string    `json:"_id"`
	Name   string    `json:"_name"`
	Parent string    `json:"_parent"`
	Type   string    `json:"_type"`
	Props  ItemProps `json:"_props"`

	Extra Extra `json:"-"`
}

// ItemProps is the properties bag of an item template.
type ItemProps struct {
	Name                          string   `json:"Name,omitempty"`
	ShortName                     string   `json:"ShortName,omitempty"`
	Weight                        *float64 `json:"Weight,omitempty"`
	StackMaxSize                  *int     `json:"StackMaxSize,omitempty"`
	ExaminedByDefault             *bool    `json:"ExaminedByDefault,omitempty"`
	RaidModdable                  *bool    `json:"RaidModdable,omitempty"`
	DiscardLimit                  *int     `json:"DiscardLimit,omitempty"`
	IsAlwaysAvailableForInsurance *bool    `json:"IsAlwaysAvailableForInsurance,omitempty"`
	InsuranceDisabled             *bool    `json:"InsuranceDisabled,omitempty"`
	BlocksArmorVest               *bool    `json:"BlocksArmorVest,omitempty"`
	MaximumNumberOfUsage          *int     `json:"MaximumNumberOfUsage,omitempty"`
	Grids                         []Grid   `json:"Grids,omitempty"`

	Extra Extra `json:"-"`
}

// Grid is one container slot grid of an item.
type Grid struct {
	ID     string    `json:"_id"`
	Name   string    `json:"_name"`
	Parent string    `json:"_parent"`
	Props  GridProps `json:"_props"`

	Extra Extra `json:"-"`
}

// GridProps describes the grid size and the item types it accepts.
// A nil Filters slice means the host declared no filter list at all.
type GridProps struct {
	Filters []GridFilter `json:"filters"`
	CellsH  int          `json:"cellsH"`
	CellsV  int          `json:"cellsV"`

	Extra Extra `json:"-"`
}

// GridFilter restricts a grid to (or excludes) item templates and base classes.
type GridFilter struct {
	Filter         []string `json:"Filter"`
	ExcludedFilter []string `json:"ExcludedFilter"`

	Extra Extra `json:"-"`
}

// Hideout holds the hideout area definitions.
type Hideout struct {
	Areas []*HideoutArea `json:"areas"`
}

// HideoutArea is a single hideout area and its upgrade stages.
type HideoutArea struct {
	ID     string    `json:"_id"`
	Type   int       `json:"type"`
	Stages StageList `json:"stages"`

	Extra Extra `json:"-"`
}

// HideoutStage is one upgrade level of a hideout area.
type HideoutStage struct {
	ConstructionTime float64 `json:"constructionTime"`
	Description      string  `json:"description,omitempty"`

	Extra Extra `json:"-"`
}

// Location is a raid map.
type Location struct {
	Base LocationBase `json:"base"`

	Extra Extra `json:"-"`
}

// LocationBase is the base document of a location.
type LocationBase struct {
	ID         string   `json:"Id"`
	Name       string   `json:"Name"`
	AccessKeys []string `json:"AccessKeys"`

	Extra Extra `json:"-"`
}

// Globals is the globals document. Only its config block is modelled.
type Globals struct {
	Config GlobalsConfig `json:"config"`

	Extra Extra `json:"-"`
}

// GlobalsConfig holds the global gameplay switches.
type GlobalsConfig struct {
	UncheckOnShot        bool          `json:"UncheckOnShot"`
	DiscardLimitsEnabled bool          `json:"DiscardLimitsEnabled"`
	Exp                  ExpConfig     `json:"exp"`
	RagFair              RagFairConfig `json:"RagFair"`

	Extra Extra `json:"-"`
}

// ExpConfig groups experience settings.
type ExpConfig struct {
	Kill KillExpConfig `json:"kill"`

	Extra Extra `json:"-"`
}

// KillExpConfig holds kill experience settings.
type KillExpConfig struct {
	LongShotDistance float64 `json:"longShotDistance"`

	Extra Extra `json:"-"`
}

// RagFairConfig holds flea market settings.
type RagFairConfig struct {
	MinUserLevel int `json:"minUserLevel"`

	Extra Extra `json:"-"`
}

// Clone returns a deep copy of t made through its JSON form, so unmodelled
// members are copied too.
func (t *Tables) Clone() (*Tables, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("tables: clone: %w", err)
	}
	var out Tables
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("tables: clone: %w", err)
	}
	return &out, nil
}
