/*
Package game
File: models.go
Description:
    Defines the data structures that describe the progression catalog:
    purchasable units, skills, achievements, quests, unlock gates and the
    global balance constants. They map directly onto 'catalog.yaml' and are
    also served as-is by the JSON API.

    No logic is performed here beyond small enum helpers.
*/

package game

import "github.com/everforgeworks/study-ascension/internal/numeric"

// Currency names a spendable balance held in State.Wallet.
type Currency string

const (
	CurrencyPoints      Currency = "points"       // Primary currency earned by clicks and production
	CurrencyImages      Currency = "images"       // Secondary currency, spent on professors
	CurrencyAscension   Currency = "ascension"    // Tier-2 currency granted by Ascension
	CurrencyPrestige    Currency = "prestige"     // Tier-3 currency granted by Prestige
	CurrencyStudiesSP   Currency = "studies_sp"   // Skill points for the studies tree
	CurrencyAscensionSP Currency = "ascension_sp" // Skill points for the ascension tree
	CurrencyPrestigeSP  Currency = "prestige_sp"  // Skill points for the prestige tree
)

// Currencies lists every currency in a stable order.
var Currencies = []Currency{
	CurrencyPoints, CurrencyImages, CurrencyAscension, CurrencyPrestige,
	CurrencyStudiesSP, CurrencyAscensionSP, CurrencyPrestigeSP,
}

// Scope tags state with the coarsest reset tier that clears it.
type Scope string

const (
	ScopeRun       Scope = "run"       // Cleared by Ascension
	ScopeAscension Scope = "ascension" // Cleared by Prestige
	ScopePermanent Scope = "permanent" // Cleared only by a hard reset
)

func (s Scope) rank() int {
	switch s {
	case ScopeRun:
		return 0
	case ScopeAscension:
		return 1
	case ScopePermanent:
		return 2
	}
	return -1
}

// ClearedBy reports whether a reset of tier t wipes state of scope s.
func (s Scope) ClearedBy(t Scope) bool {
	return s.rank() >= 0 && s.rank() <= t.rank()
}

// Scope of each currency balance.
func (c Currency) Scope() Scope {
	switch c {
	case CurrencyAscension, CurrencyAscensionSP:
		return ScopeAscension
	case CurrencyPrestige, CurrencyPrestigeSP:
		return ScopePermanent
	}
	return ScopeRun
}

// Tree identifies one of the three skill trees.
type Tree string

const (
	TreeStudies   Tree = "studies"
	TreeAscension Tree = "ascension"
	TreePrestige  Tree = "prestige"
)

// Trees in rebuild order.
var Trees = []Tree{TreeStudies, TreeAscension, TreePrestige}

func (t Tree) Scope() Scope {
	switch t {
	case TreeAscension:
		return ScopeAscension
	case TreePrestige:
		return ScopePermanent
	}
	return ScopeRun
}

// Points is the currency spent to level skills of this tree.
func (t Tree) Points() Currency {
	switch t {
	case TreeAscension:
		return CurrencyAscensionSP
	case TreePrestige:
		return CurrencyPrestigeSP
	}
	return CurrencyStudiesSP
}

// EffectOp selects how an EffectSpec folds into the accumulator.
type EffectOp string

const (
	OpAdd      EffectOp = "add"      // value += amount * level
	OpScale    EffectOp = "scale"    // value *= 1 + amount * level
	OpMultiply EffectOp = "multiply" // value *= amount ^ level
)

// EffectSpec is one contribution to a named accumulator entry.
type EffectSpec struct {
	Target EffectName    `yaml:"target" json:"target"` // Accumulator entry (e.g. "student_output")
	Op     EffectOp      `yaml:"op" json:"op"`         // add | scale | multiply
	Amount numeric.Value `yaml:"amount" json:"amount"` // Magnitude per level / owned unit
}

// Condition is a threshold on a state metric. All conditions of a list must hold.
type Condition struct {
	Metric string        `yaml:"metric" json:"metric"` // See State metrics (e.g. "owned:professor")
	Min    numeric.Value `yaml:"min" json:"min"`       // Inclusive lower bound
}

// RewardKind closes the set of reward shapes.
type RewardKind string

const (
	RewardGrant       RewardKind = "grant"        // One-time currency grant
	RewardEffect      RewardKind = "effect"       // Multiplier/additive grant, re-applied on every rebuild
	RewardSkillPoints RewardKind = "skill_points" // One-time skill point grant to a tree
	RewardBonus       RewardKind = "bonus"        // Adds to the permanent production bonus once
)

// Reward describes what an achievement or quest gives.
type Reward struct {
	Kind     RewardKind    `yaml:"kind" json:"kind"`
	Currency Currency      `yaml:"currency,omitempty" json:"currency,omitempty"` // grant only
	Tree     Tree          `yaml:"tree,omitempty" json:"tree,omitempty"`         // skill_points only
	Amount   numeric.Value `yaml:"amount,omitempty" json:"amount,omitempty"`     // grant, skill_points, bonus
	Effect   *EffectSpec   `yaml:"effect,omitempty" json:"effect,omitempty"`     // effect only
}

// UnitGrant is a side grant paid out per unit bought (professors award ascension skill points).
type UnitGrant struct {
	Currency Currency      `yaml:"currency" json:"currency"`
	PerUnit  numeric.Value `yaml:"per_unit" json:"per_unit"`
}

// Ownable is any unit the player can buy more of.
type Ownable struct {
	Key      string        `yaml:"key" json:"key"`             // Unique ID (e.g. "student")
	Name     string        `yaml:"name" json:"name"`           // Display name
	Scope    Scope         `yaml:"scope" json:"scope"`         // Reset tier that clears the owned count
	Currency Currency      `yaml:"currency" json:"currency"`   // What it is paid with
	BaseCost numeric.Value `yaml:"base_cost" json:"base_cost"` // Cost of the first unit
	Growth   numeric.Value `yaml:"growth" json:"growth"`       // Cost ratio between consecutive units
	Gate     string        `yaml:"gate,omitempty" json:"gate,omitempty"`

	// Cost reduction entry specific to this unit (the global "all_cost" always applies too).
	CostEffect EffectName `yaml:"cost_effect,omitempty" json:"cost_effect,omitempty"`

	// Production: count * Production * OutputEffect, optionally amplified by another unit.
	Production      numeric.Value `yaml:"production,omitempty" json:"production,omitempty"`
	OutputEffect    EffectName    `yaml:"output_effect,omitempty" json:"output_effect,omitempty"`
	AmplifiedBy     string        `yaml:"amplified_by,omitempty" json:"amplified_by,omitempty"`         // Output scales with (owned(key)*AmplifierEffect + 1)
	AmplifierEffect EffectName    `yaml:"amplifier_effect,omitempty" json:"amplifier_effect,omitempty"` // Per-amplifier strength
	AmplifierBoost  EffectName    `yaml:"amplifier_boost,omitempty" json:"amplifier_boost,omitempty"`   // Applied as (1 + value)
	BoostEffects    []EffectName  `yaml:"boost_effects,omitempty" json:"boost_effects,omitempty"`       // Summed, applied as (1 + sum)

	// Structures raise the global structure multiplier instead of producing.
	StructureBonus numeric.Value `yaml:"structure_bonus,omitempty" json:"structure_bonus,omitempty"`

	Yields Currency   `yaml:"yields,omitempty" json:"yields,omitempty"` // Each unit adds 1 of this currency; the held balance drives the price
	Grants *UnitGrant `yaml:"grants,omitempty" json:"grants,omitempty"`

	// Permanent purchases: prerequisites and per-owned-unit effects.
	Requires []Condition `yaml:"requires,omitempty" json:"requires,omitempty"`
	Effects  []EffectSpec `yaml:"effects,omitempty" json:"effects,omitempty"`

	AutomationCost numeric.Value `yaml:"automation_cost,omitempty" json:"automation_cost,omitempty"` // PA to enable auto-buy; zero = not automatable
}

// Automatable reports whether the unit can be auto-bought.
func (o *Ownable) Automatable() bool { return o.AutomationCost.IsPositive() }

// Feature is a one-off unlock bought with a currency (bulk buying, automation).
type Feature struct {
	Key       string        `yaml:"key" json:"key"`
	Name      string        `yaml:"name" json:"name"`
	Currency  Currency      `yaml:"currency" json:"currency"`
	Cost      numeric.Value `yaml:"cost" json:"cost"`
	Reducible bool          `yaml:"reducible" json:"reducible"` // Automation cost reductions apply
}

// Gate is a one-way unlock flag.
type Gate struct {
	Key        string      `yaml:"key" json:"key"`
	Name       string      `yaml:"name" json:"name"`
	Conditions []Condition `yaml:"conditions" json:"conditions"`
}

// SkillNode is one node of a skill tree.
type SkillNode struct {
	ID            string        `yaml:"id" json:"id"`
	Name          string        `yaml:"name" json:"name"`
	Tree          Tree          `yaml:"tree" json:"tree"`
	Cost          numeric.Value `yaml:"cost" json:"cost"` // Points per level
	MaxLevel      int           `yaml:"max_level" json:"max_level"`
	Tier          int           `yaml:"tier" json:"tier"`
	Prerequisites []string      `yaml:"prerequisites,omitempty" json:"prerequisites,omitempty"` // Must be at max level
	Effects       []EffectSpec  `yaml:"effects" json:"effects"`
}

// Achievement unlocks automatically once its conditions hold.
type Achievement struct {
	Key        string      `yaml:"key" json:"key"`
	Name       string      `yaml:"name" json:"name"`
	Conditions []Condition `yaml:"conditions" json:"conditions"`
	Reward     Reward      `yaml:"reward" json:"reward"`
}

// Quest completes automatically and is claimed by the player.
type Quest struct {
	Key        string      `yaml:"key" json:"key"`
	Name       string      `yaml:"name" json:"name"`
	Category   string      `yaml:"category" json:"category"`
	Conditions []Condition `yaml:"conditions" json:"conditions"`
	Reward     Reward      `yaml:"reward" json:"reward"`
	Permanent  bool        `yaml:"permanent" json:"permanent"` // Survives Ascension and Prestige
}

// Balance stores the global tuning constants.
type Balance struct {
	AscensionThreshold numeric.Value `yaml:"ascension_threshold" json:"ascension_threshold"` // Run points per PA
	PrestigeThreshold  numeric.Value `yaml:"prestige_threshold" json:"prestige_threshold"`   // Earned PA per PP
	AscensionGate      string        `yaml:"ascension_gate" json:"ascension_gate"`           // Ownable that must be owned to ascend
	AscensionGateMin   numeric.Value `yaml:"ascension_gate_min" json:"ascension_gate_min"`
	PrestigeGate       string        `yaml:"prestige_gate" json:"prestige_gate"` // Permanent purchase required to prestige
	PrestigeGateMin    numeric.Value `yaml:"prestige_gate_min" json:"prestige_gate_min"`
	PrestigeSkillPoint numeric.Value `yaml:"prestige_skill_points" json:"prestige_skill_points"` // Granted on every Prestige

	ClickFraction      numeric.Value `yaml:"click_fraction" json:"click_fraction"`             // Share of the production rate a click is worth
	ReductionCeiling   numeric.Value `yaml:"reduction_ceiling" json:"reduction_ceiling"`       // Upper clamp for cost reductions
	AscensionBonusRate numeric.Value `yaml:"ascension_bonus_rate" json:"ascension_bonus_rate"` // Per (ascension count * earned PA)
	PrestigeOutputRate numeric.Value `yaml:"prestige_output_rate" json:"prestige_output_rate"` // Output bonus per prestige

	BuyMaxCeiling     int64 `yaml:"buy_max_ceiling" json:"buy_max_ceiling"`         // Iteration bound for "max" purchases
	OfflineMinSeconds int64 `yaml:"offline_min_seconds" json:"offline_min_seconds"` // Gaps shorter than this earn nothing

	GuaranteedOwnable string `yaml:"guaranteed_ownable" json:"guaranteed_ownable"` // Raised to GuaranteedEffect after Ascension
}

// Catalog is the root configuration struct, mapping to the entire 'catalog.yaml' file.
type Catalog struct {
	Balance      Balance       `yaml:"balance" json:"balance"`
	Ownables     []Ownable     `yaml:"ownables" json:"ownables"`
	Features     []Feature     `yaml:"features" json:"features"`
	Gates        []Gate        `yaml:"gates" json:"gates"`
	Skills       []SkillNode   `yaml:"skills" json:"skills"`
	Achievements []Achievement `yaml:"achievements" json:"achievements"`
	Quests       []Quest       `yaml:"quests" json:"quests"`

	ownables     map[string]*Ownable
	features     map[string]*Feature
	gates        map[string]*Gate
	skills       map[string]*SkillNode
	achievements map[string]*Achievement
	quests       map[string]*Quest
}
