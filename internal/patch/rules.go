package patch

import (
	"github.com/MrWong99/tablepatch/pkg/tables"
)

// Rule names, used as report keys and metric attributes.
const (
	RuleExamined        = "item_examined"
	RuleRaidModdable    = "item_raid_moddable"
	RuleInsurance       = "item_insurance_disabled"
	RuleVestArmor       = "vest_allow_armor"
	RuleKeyWeight       = "key_weight"
	RuleKeyUsage        = "key_usage"
	RuleAmmoWeight      = "ammo_weight"
	RuleFoodDrinkWeight = "food_drink_weight"
	RuleMedsWeight      = "meds_weight"
	RuleSecureFilters   = "secure_container_filters"
	RuleMoneyStack      = "money_stack"
)

// rule overwrites one field of every item in a category. apply reports
// whether it changed anything.
type rule struct {
	name     string
	category string
	apply    func(p *tables.ItemProps) bool
}

var rules = []rule{
	{RuleExamined, tables.BaseItem, func(p *tables.ItemProps) bool { return forceTrue(&p.ExaminedByDefault) }},
	{RuleRaidModdable, tables.BaseItem, func(p *tables.ItemProps) bool { return forceTrue(&p.RaidModdable) }},
	{RuleInsurance, tables.BaseItem, disableInsurance},
	{RuleVestArmor, tables.BaseVest, func(p *tables.ItemProps) bool { return clearFlag(p.BlocksArmorVest) }},
	{RuleKeyWeight, tables.BaseKey, func(p *tables.ItemProps) bool { return zeroFloat(p.Weight) }},
	{RuleKeyUsage, tables.BaseKey, func(p *tables.ItemProps) bool { return zeroInt(p.MaximumNumberOfUsage) }},
	{RuleAmmoWeight, tables.BaseAmmo, func(p *tables.ItemProps) bool { return zeroFloat(p.Weight) }},
	{RuleFoodDrinkWeight, tables.BaseFoodDrink, func(p *tables.ItemProps) bool { return zeroFloat(p.Weight) }},
	{RuleMedsWeight, tables.BaseMeds, func(p *tables.ItemProps) bool { return zeroFloat(p.Weight) }},
	{RuleSecureFilters, tables.BaseMobContainer, clearGridFilters},
	{RuleMoneyStack, tables.BaseMoney, multiplyStack},
}

// ruleCategories returns the categories the rule set needs indexed.
func ruleCategories() []string {
	cats := make([]string, 0, len(rules))
	for _, r := range rules {
		cats = append(cats, r.category)
	}
	return cats
}

func forceTrue(b **bool) bool {
	if *b != nil && **b {
		return false
	}
	v := true
	*b = &v
	return true
}

func clearFlag(b *bool) bool {
	if b == nil || !*b {
		return false
	}
	*b = false
	return true
}

// zeroFloat zeroes f only when it is declared and non-zero, so absent fields
// stay absent.
func zeroFloat(f *float64) bool {
	if f == nil || *f == 0 {
		return false
	}
	*f = 0
	return true
}

func zeroInt(i *int) bool {
	if i == nil || *i == 0 {
		return false
	}
	*i = 0
	return true
}

// disableInsurance turns insurance off for items with a discard limit unless
// they are flagged as always insurable.
func disableInsurance(p *tables.ItemProps) bool {
	if p.DiscardLimit == nil || *p.DiscardLimit < 0 {
		return false
	}
	if p.IsAlwaysAvailableForInsurance != nil && *p.IsAlwaysAvailableForInsurance {
		return false
	}
	if p.InsuranceDisabled != nil && *p.InsuranceDisabled {
		return false
	}
	v := true
	p.InsuranceDisabled = &v
	return true
}

// clearGridFilters empties every declared grid filter list.
func clearGridFilters(p *tables.ItemProps) bool {
	changed := false
	for i := range p.Grids {
		f := &p.Grids[i].Props.Filters
		if *f == nil {
			continue
		}
		if len(*f) > 0 {
			changed = true
		}
		*f = []tables.GridFilter{}
	}
	return changed
}

// multiplyStack scales the stack size of money. It compounds on every call.
func multiplyStack(p *tables.ItemProps) bool {
	if p.StackMaxSize == nil || *p.StackMaxSize == 0 {
		return false
	}
	*p.StackMaxSize *= MoneyStackFactor
	return true
}
