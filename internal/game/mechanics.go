/*
Package game
File: mechanics.go
Description:
    Contains the economy formulas and catalog lookup helpers.
    This includes unit costs, the production rate, the click value and
    automation prices. Every function is pure: it reads the State, the
    Catalog and the effect table and returns a number.
*/

package game

import (
	"fmt"

	"github.com/everforgeworks/study-ascension/internal/numeric"
)

// Ownable retrieves a purchasable unit by key.
func (c *Catalog) Ownable(key string) (*Ownable, error) {
	if o, ok := c.ownables[key]; ok {
		return o, nil
	}
	return nil, fmt.Errorf("%w: ownable %q", ErrUnknownEntity, key)
}

// Feature retrieves a one-off unlock by key.
func (c *Catalog) Feature(key string) (*Feature, error) {
	if f, ok := c.features[key]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: feature %q", ErrUnknownEntity, key)
}

// Skill retrieves a node of a tree.
func (c *Catalog) Skill(tree Tree, id string) (*SkillNode, error) {
	if n, ok := c.skills[skillKey(tree, id)]; ok {
		return n, nil
	}
	return nil, fmt.Errorf("%w: skill %s/%s", ErrUnknownEntity, tree, id)
}

// Quest retrieves a quest by key.
func (c *Catalog) Quest(key string) (*Quest, error) {
	if q, ok := c.quests[key]; ok {
		return q, nil
	}
	return nil, fmt.Errorf("%w: quest %q", ErrUnknownEntity, key)
}

// ParseTree validates a tree name coming from a client.
func ParseTree(s string) (Tree, error) {
	for _, t := range Trees {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: tree %q", ErrUnknownEntity, s)
}

// reduction reads a cost-reduction entry clamped to [0, ceiling].
func reduction(fx *Effects, n EffectName, ceiling numeric.Value) numeric.Value {
	if n == "" {
		return numeric.Zero
	}
	return fx.Get(n).Clamp(numeric.Zero, ceiling)
}

// discount applies one or more clamped reductions and floors the result at 1.
func discount(raw numeric.Value, fx *Effects, ceiling numeric.Value, names ...EffectName) numeric.Value {
	for _, n := range names {
		raw = raw.Mul(numeric.One.Sub(reduction(fx, n, ceiling)))
	}
	// Safety Clamp
	// Nothing is ever free, however many reductions stack up.
	return numeric.Max(numeric.One, raw.Floor())
}

// UnitCost is the price of the next unit when `owned` are already held.
// Formula: floor(Base * Growth^owned * (1 - itemReduction) * (1 - allReduction)), min 1.
// Units without a cost channel (structures, diplomas) are never discounted.
func UnitCost(o *Ownable, owned numeric.Value, fx *Effects, b Balance) numeric.Value {
	raw := o.BaseCost.Mul(o.Growth.PowInt(owned.Int64()))
	if o.CostEffect == "" {
		return numeric.Max(numeric.One, raw.Floor())
	}
	return discount(raw, fx, b.ReductionCeiling, o.CostEffect, EffectAllCost)
}

// CostFunc prices the unit bought when `owned` are already held.
type CostFunc func(owned numeric.Value) numeric.Value

func costFunc(o *Ownable, fx *Effects, b Balance) CostFunc {
	return func(owned numeric.Value) numeric.Value {
		return UnitCost(o, owned, fx, b)
	}
}

// AutomationPrice is what enabling auto-buy for o costs, in ascension points.
func AutomationPrice(o *Ownable, fx *Effects, b Balance) numeric.Value {
	return discount(o.AutomationCost, fx, b.ReductionCeiling, EffectAutomationCost, EffectAllCost)
}

// FeaturePrice is the cost of a one-off feature after reductions.
func FeaturePrice(f *Feature, fx *Effects, b Balance) numeric.Value {
	if !f.Reducible {
		return f.Cost
	}
	return discount(f.Cost, fx, b.ReductionCeiling, EffectAutomationCost, EffectAllCost)
}

// unitOutput is the raw points/second of every unit of o.
// Formula: owned * Production * Output * (owned(amp)*AmpEffect + 1) * (1 + AmpBoost) * (1 + sum(Boosts))
func unitOutput(o *Ownable, s *State, fx *Effects) numeric.Value {
	owned := s.OwnedCount(o.Key)
	if owned.IsZero() || !o.Production.IsPositive() {
		return numeric.Zero
	}
	out := owned.Mul(o.Production)
	if o.OutputEffect != "" {
		out = out.Mul(fx.Get(o.OutputEffect))
	}
	if o.AmplifiedBy != "" {
		strength := numeric.One
		if o.AmplifierEffect != "" {
			strength = fx.Get(o.AmplifierEffect)
		}
		out = out.Mul(s.OwnedCount(o.AmplifiedBy).Mul(strength).Add(numeric.One))
		if o.AmplifierBoost != "" {
			out = out.Mul(numeric.One.Add(fx.Get(o.AmplifierBoost)))
		}
	}
	if len(o.BoostEffects) > 0 {
		sum := numeric.Zero
		for _, n := range o.BoostEffects {
			sum = sum.Add(fx.Get(n))
		}
		out = out.Mul(numeric.One.Add(sum))
	}
	return out
}

// ProductionRate is the total points generated per second.
// Formula: Subtotal
//
//	* (1 + AscensionCount * AscensionEarned * AscensionBonusRate) * (1 + ascension_bonus)
//	* (1 + PrestigeOutputRate * PrestigeCount + doctorate_output)
//	* (1 + achievement_bonus)
//	* all_output
//	* structure_output * (1 + sum(owned * StructureBonus * structure effect))
func ProductionRate(s *State, c *Catalog, fx *Effects) numeric.Value {
	b := c.Balance

	// 1. Raw output of producing units
	subtotal := numeric.Zero
	structures := numeric.Zero
	for i := range c.Ownables {
		o := &c.Ownables[i]
		subtotal = subtotal.Add(unitOutput(o, s, fx))
		if o.StructureBonus.IsPositive() {
			bonus := s.OwnedCount(o.Key).Mul(o.StructureBonus)
			if o.OutputEffect != "" {
				bonus = bonus.Mul(fx.Get(o.OutputEffect))
			}
			structures = structures.Add(bonus)
		}
	}
	if subtotal.IsZero() {
		return numeric.Zero
	}

	// 2. Reset-tier multipliers
	ascension := numeric.One.Add(s.AscensionCount.Mul(s.AscensionEarned).Mul(b.AscensionBonusRate))
	ascension = ascension.Mul(numeric.One.Add(fx.Get(EffectAscensionBonus)))
	prestige := numeric.One.Add(b.PrestigeOutputRate.Mul(s.PrestigeCount)).Add(fx.Get(EffectDoctorateOutput))

	// 3. Global multipliers
	achievements := numeric.One.Add(fx.Get(EffectAchievementBonus))
	structure := fx.Get(EffectStructureOutput).Mul(numeric.One.Add(structures))

	rate := subtotal.Mul(ascension).Mul(prestige).Mul(achievements).Mul(fx.Get(EffectAllOutput)).Mul(structure)
	return numeric.Max(numeric.Zero, rate)
}

// ClickValue is the points granted by one manual click.
// Formula: click_bonus + rate * ClickFraction, or exactly 1 when that is not positive.
func ClickValue(rate numeric.Value, fx *Effects, b Balance) numeric.Value {
	v := fx.Get(EffectClickBonus).Add(rate.Mul(b.ClickFraction))
	if !v.IsPositive() {
		return numeric.One
	}
	return v
}
