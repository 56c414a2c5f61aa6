package tables

// Base-class template IDs. An item belongs to a base class when the class
// appears anywhere on its parent chain.
const (
	BaseItem         = "54009119af1c4c0052000000"
	BaseVest         = "5448e5284bdc2d4c138b4569"
	BaseKey          = "543be5e94bdc2df1348b4568"
	BaseAmmo         = "5485a8684bdc2da71d8b4567"
	BaseFoodDrink    = "543be6674bdc2df1348b4569"
	BaseMeds         = "543be5664bdc2dd4348b4569"
	BaseMobContainer = "5448bf274bdc2dfc2f8b456a"
	BaseMoney        = "543be5dd4bdc2deb348b4569"
)

// Template kinds (the _type field). Only TypeItem templates are concrete
// items; TypeNode templates are the base classes themselves.
const (
	TypeItem = "Item"
	TypeNode = "Node"
)

// Container template IDs patched by identifier.
const (
	ThiccItemCase = "5c0a840b86f7742ffa4f2482"
	ItemCase      = "59fb042886f7746c5005a7b2"
	SICCPouch     = "5d235bb686f77443f4331278"
)

// Laboratory is the locations-table key of the laboratory map.
const Laboratory = "laboratory"

// BaseClassNames maps the well-known base classes to readable names used in
// logs and metric attributes.
var BaseClassNames = map[string]string{
	BaseItem:         "item",
	BaseVest:         "vest",
	BaseKey:          "key",
	BaseAmmo:         "ammo",
	BaseFoodDrink:    "food_drink",
	BaseMeds:         "meds",
	BaseMobContainer: "secure_container",
	BaseMoney:        "money",
}
