// Package startup patches the host's live runtime config sections once the
// server has finished loading.
package startup

import (
	"fmt"

	"github.com/MrWong99/tablepatch/internal/hostcfg"
	"github.com/MrWong99/tablepatch/pkg/host"
)

// LoadedMessage is logged once per successful [Apply].
const LoadedMessage = "[tablepatch] personal edits are now active."

// Apply keeps found-in-raid status at raid end and on secure container
// contents after death, and turns seasonal event detection off. Both sections
// are resolved before either is modified. Exactly one informational line is
// written to logger on success.
func Apply(registry host.ConfigRegistry, logger host.Logger) error {
	inRaid, err := hostcfg.Get[*hostcfg.InRaid](registry, hostcfg.InRaidName)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	seasonal, err := hostcfg.Get[*hostcfg.SeasonalEvent](registry, hostcfg.SeasonalEventName)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}

	inRaid.AlwaysKeepFoundInRaidOnRaidEnd = true
	inRaid.KeepFiRSecureContainerOnDeath = true
	seasonal.EnableSeasonalEventDetection = false

	logger.LogWithColor(LoadedMessage, host.TextBlack, host.BackgroundYellow)
	return nil
}
