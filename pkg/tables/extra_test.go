package tables_test

import (
	"encoding/json"
	"testing"

	"github.com/MrWong99/tablepatch/pkg/tables"
)

const hostItem = `{
	"_id": "5449016a4bdc2d6f028b456f",
	"_name": "item_money_rouble",
	"_parent": "543be5dd4bdc2deb348b4569",
	"_type": "Item",
	"_proto": "5449016a4bdc2d6f028b456f",
	"_props": {
		"Name": "Roubles",
		"StackMaxSize": 500000,
		"Width": 1,
		"Prefab": {"path": "assets/content/items/money/item_money_rouble.bundle", "rcid": ""},
		"Grids": [{
			"_id": "g1",
			"_name": "main",
			"_parent": "5449016a4bdc2d6f028b456f",
			"_proto": "55d329c24bdc2d892f8b4567",
			"_props": {
				"filters": [{"Filter": ["a"], "ExcludedFilter": [], "locked": false}],
				"cellsH": 2,
				"cellsV": 2,
				"maxWeight": 0
			}
		}]
	}
}`

func TestItem_KeepsUnmodelledMembers(t *testing.T) {
	t.Parallel()
	var it tables.Item
	if err := json.Unmarshal([]byte(hostItem), &it); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if it.Props.StackMaxSize == nil || *it.Props.StackMaxSize != 500000 {
		t.Fatalf("StackMaxSize = %v", it.Props.StackMaxSize)
	}
	if _, ok := it.Props.Extra["StackMaxSize"]; ok {
		t.Error("modelled field also kept in Extra")
	}
	if string(it.Props.Extra["Width"]) != "1" {
		t.Errorf("Extra[Width] = %s, want 1", it.Props.Extra["Width"])
	}

	*it.Props.StackMaxSize = 5000000
	data, err := json.Marshal(&it)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["_proto"] != "5449016a4bdc2d6f028b456f" {
		t.Errorf("_proto = %v", got["_proto"])
	}
	props := got["_props"].(map[string]any)
	if props["StackMaxSize"] != float64(5000000) {
		t.Errorf("StackMaxSize = %v, want the patched value", props["StackMaxSize"])
	}
	if props["Width"] != float64(1) {
		t.Errorf("Width = %v", props["Width"])
	}
	if prefab, ok := props["Prefab"].(map[string]any); !ok || prefab["path"] == "" {
		t.Errorf("Prefab = %v", props["Prefab"])
	}
	grid := props["Grids"].([]any)[0].(map[string]any)
	if grid["_proto"] != "55d329c24bdc2d892f8b4567" {
		t.Errorf("grid _proto = %v", grid["_proto"])
	}
	gp := grid["_props"].(map[string]any)
	if gp["maxWeight"] != float64(0) {
		t.Errorf("grid maxWeight = %v", gp["maxWeight"])
	}
	filter := gp["filters"].([]any)[0].(map[string]any)
	if filter["locked"] != false {
		t.Errorf("filter locked = %v", filter["locked"])
	}
}

func TestItem_ModelledFieldWinsOverExtra(t *testing.T) {
	t.Parallel()
	it := tables.Item{
		ID:    "a",
		Extra: tables.Extra{"_id": json.RawMessage(`"stale"`), "_proto": json.RawMessage(`"p"`)},
	}
	data, err := json.Marshal(it)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["_id"] != "a" || got["_proto"] != "p" {
		t.Errorf("encoded = %s", data)
	}
}

func TestGlobals_KeepsUnmodelledConfig(t *testing.T) {
	t.Parallel()
	const doc = `{"config": {"UncheckOnShot": true, "exp": {"kill": {"longShotDistance": 100, "victimLevelExp": 10}, "heal": {}}, "RagFair": {"minUserLevel": 15, "enabled": true}, "Health": {}}, "bot_presets": []}`
	var g tables.Globals
	if err := json.Unmarshal([]byte(doc), &g); err != nil {
		t.Fatal(err)
	}
	g.Config.RagFair.MinUserLevel = 5
	data, err := json.Marshal(g)
	if err != nil {
		t.Fatal(err)
	}

	var got struct {
		BotPresets []any `json:"bot_presets"`
		Config     struct {
			Health map[string]any `json:"Health"`
			Exp    struct {
				Heal map[string]any `json:"heal"`
				Kill struct {
					VictimLevelExp int `json:"victimLevelExp"`
				} `json:"kill"`
			} `json:"exp"`
			RagFair struct {
				Enabled      bool `json:"enabled"`
				MinUserLevel int  `json:"minUserLevel"`
			} `json:"RagFair"`
		} `json:"config"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.BotPresets == nil || got.Config.Health == nil || got.Config.Exp.Heal == nil {
		t.Errorf("unmodelled members dropped: %s", data)
	}
	if got.Config.Exp.Kill.VictimLevelExp != 10 || !got.Config.RagFair.Enabled {
		t.Errorf("nested unmodelled members dropped: %s", data)
	}
	if got.Config.RagFair.MinUserLevel != 5 {
		t.Errorf("minUserLevel = %d, want 5", got.Config.RagFair.MinUserLevel)
	}
}
