package startup_test

import (
	"errors"
	"testing"

	"github.com/MrWong99/tablepatch/internal/hostcfg"
	"github.com/MrWong99/tablepatch/internal/startup"
	"github.com/MrWong99/tablepatch/pkg/host"
	"github.com/MrWong99/tablepatch/pkg/host/mock"
)

func sections() (*hostcfg.InRaid, *hostcfg.SeasonalEvent, *hostcfg.Registry) {
	inRaid := &hostcfg.InRaid{PlayerScavHostileChancePercent: 15}
	seasonal := &hostcfg.SeasonalEvent{
		EnableSeasonalEventDetection: true,
		Events:                       []hostcfg.SeasonalEventEntry{{Name: "halloween", Type: "HALLOWEEN"}},
	}
	reg := hostcfg.NewRegistry()
	reg.Register(hostcfg.InRaidName, inRaid)
	reg.Register(hostcfg.SeasonalEventName, seasonal)
	return inRaid, seasonal, reg
}

func TestApply(t *testing.T) {
	t.Parallel()
	inRaid, seasonal, reg := sections()
	log := &mock.Logger{}

	if err := startup.Apply(reg, log); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if !inRaid.AlwaysKeepFoundInRaidOnRaidEnd || !inRaid.KeepFiRSecureContainerOnDeath {
		t.Errorf("in-raid section = %+v, want both found-in-raid flags true", *inRaid)
	}
	if inRaid.PlayerScavHostileChancePercent != 15 {
		t.Errorf("unrelated field changed: %v", inRaid.PlayerScavHostileChancePercent)
	}
	if seasonal.EnableSeasonalEventDetection {
		t.Error("seasonal event detection still enabled")
	}
	if len(seasonal.Events) != 1 {
		t.Errorf("events changed: %+v", seasonal.Events)
	}

	calls := log.Calls()
	if len(calls) != 1 {
		t.Fatalf("logger calls = %d, want 1: %+v", len(calls), calls)
	}
	c := calls[0]
	if c.Level != "info" || !c.Colored || c.Msg != startup.LoadedMessage {
		t.Errorf("log call = %+v", c)
	}
	if c.Text != host.TextBlack || c.Background != host.BackgroundYellow {
		t.Errorf("colours = %s/%s, want black/yellowBG", c.Text, c.Background)
	}
}

func TestApply_OneLinePerInvocation(t *testing.T) {
	t.Parallel()
	_, _, reg := sections()
	log := &mock.Logger{}

	for i := 1; i <= 3; i++ {
		if err := startup.Apply(reg, log); err != nil {
			t.Fatal(err)
		}
		if n := len(log.CallsAt("info")); n != i {
			t.Errorf("after %d runs info calls = %d", i, n)
		}
	}
	if n := len(log.Calls()); n != 3 {
		t.Errorf("total calls = %d, want 3", n)
	}
}

func TestApply_MissingSection(t *testing.T) {
	t.Parallel()
	inRaid := &hostcfg.InRaid{}
	reg := hostcfg.NewRegistry()
	reg.Register(hostcfg.InRaidName, inRaid)
	reg.Register("spt-seasonalevent", &hostcfg.SeasonalEvent{})
	log := &mock.Logger{}

	err := startup.Apply(reg, log)
	var mse *hostcfg.MissingSectionError
	if !errors.As(err, &mse) {
		t.Fatalf("err = %v, want *MissingSectionError", err)
	}
	if mse.Name != hostcfg.SeasonalEventName || mse.Suggestion != "spt-seasonalevent" {
		t.Errorf("err = %+v", *mse)
	}
	if inRaid.AlwaysKeepFoundInRaidOnRaidEnd || inRaid.KeepFiRSecureContainerOnDeath {
		t.Error("in-raid section modified although the run failed")
	}
	if len(log.Calls()) != 0 {
		t.Errorf("logged on failure: %+v", log.Calls())
	}
}

func TestApply_WrongSectionType(t *testing.T) {
	t.Parallel()
	reg := &mock.ConfigRegistry{Sections: map[string]any{
		hostcfg.InRaidName:        hostcfg.InRaid{},
		hostcfg.SeasonalEventName: &hostcfg.SeasonalEvent{},
	}}
	if err := startup.Apply(reg, &mock.Logger{}); err == nil {
		t.Fatal("expected error for non-pointer section")
	}
}

func TestApply_RegistryError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	reg := &mock.ConfigRegistry{Err: boom}
	if err := startup.Apply(reg, &mock.Logger{}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if got := reg.Requested(); len(got) != 1 || got[0] != hostcfg.InRaidName {
		t.Errorf("requested = %v", got)
	}
}
