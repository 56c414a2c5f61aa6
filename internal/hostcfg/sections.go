// Package hostcfg holds the host's named runtime config sections.
//
// A section is a plain struct owned by the [Registry]. [Registry.Section]
// returns the registry's own pointer, so a modification that mutates the
// section changes what the host reads afterwards.
package hostcfg

import "github.com/MrWong99/tablepatch/pkg/tables"

// Section names as used by the host's config server.
const (
	InRaidName        = "spt-inraid"
	SeasonalEventName = "spt-seasonalevents"
)

// InRaid is the in-raid behaviour section.
type InRaid struct {
	// AlwaysKeepFoundInRaidOnRaidEnd keeps found-in-raid status on items
	// brought out of a raid regardless of how the raid ended.
	AlwaysKeepFoundInRaidOnRaidEnd bool `json:"alwaysKeepFoundInRaidonRaidEnd"`

	// KeepFiRSecureContainerOnDeath keeps found-in-raid status on secure
	// container contents when the player dies.
	KeepFiRSecureContainerOnDeath bool `json:"keepFiRSecureContainerOnDeath"`

	// PlayerScavHostileChancePercent is the chance that scavs are hostile
	// towards a player scav.
	PlayerScavHostileChancePercent float64 `json:"playerScavHostileChancePercent"`

	// Extra holds the host keys tablepatch does not model.
	Extra tables.Extra `json:"-"`
}

// SeasonalEvent is the seasonal event section.
type SeasonalEvent struct {
	// EnableSeasonalEventDetection lets the host switch seasonal events on
	// from the system date.
	EnableSeasonalEventDetection bool `json:"enableSeasonalEventDetection"`

	// Events lists the configured seasonal events.
	Events []SeasonalEventEntry `json:"events"`

	// Extra holds the host keys tablepatch does not model.
	Extra tables.Extra `json:"-"`
}

// SeasonalEventEntry is a single configured seasonal event window.
type SeasonalEventEntry struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	StartDay   int    `json:"startDay"`
	StartMonth int    `json:"startMonth"`
	EndDay     int    `json:"endDay"`
	EndMonth   int    `json:"endMonth"`

	// Extra holds the host keys tablepatch does not model.
	Extra tables.Extra `json:"-"`
}

// Definition describes where a known section lives and how to allocate it.
type Definition struct {
	Name     string
	Document string
	New      func() any
}

// Known lists the sections loaded by [Load].
var Known = []Definition{
	{Name: InRaidName, Document: "configs/inraid.json", New: func() any { return &InRaid{} }},
	{Name: SeasonalEventName, Document: "configs/seasonalevents.json", New: func() any { return &SeasonalEvent{} }},
}

func (s *InRaid) UnmarshalJSON(data []byte) error {
	type plain InRaid
	extra, err := tables.DecodeWithExtra(data, (*plain)(s))
	s.Extra = extra
	return err
}

func (s InRaid) MarshalJSON() ([]byte, error) {
	type plain InRaid
	return tables.EncodeWithExtra((*plain)(&s), s.Extra)
}

func (s *SeasonalEvent) UnmarshalJSON(data []byte) error {
	type plain SeasonalEvent
	extra, err := tables.DecodeWithExtra(data, (*plain)(s))
	s.Extra = extra
	return err
}

func (s SeasonalEvent) MarshalJSON() ([]byte, error) {
	type plain SeasonalEvent
	return tables.EncodeWithExtra((*plain)(&s), s.Extra)
}

func (e *SeasonalEventEntry) UnmarshalJSON(data []byte) error {
	type plain SeasonalEventEntry
	extra, err := tables.DecodeWithExtra(data, (*plain)(e))
	e.Extra = extra
	return err
}

func (e SeasonalEventEntry) MarshalJSON() ([]byte, error) {
	type plain SeasonalEventEntry
	return tables.EncodeWithExtra((*plain)(&e), e.Extra)
}
