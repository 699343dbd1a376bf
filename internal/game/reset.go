/*
Package game
File: reset.go
Description:
    The two reset tiers and their currency grants.

    Ascension trades the run's production for ascension points (PA) and
    clears run-scoped state. Prestige trades the PA earned across ascensions
    for prestige points (PP) and clears run and ascension state. The grant
    is always computed before anything is cleared.
*/

package game

import (
	"fmt"

	"github.com/everforgeworks/study-ascension/internal/numeric"
)

// AscensionGrant is the PA an Ascension would pay right now.
// Formula: floor(floor(RunTotal / Threshold) * ascension_gain * (1 + postdoc_gain))
func AscensionGrant(s *State, c *Catalog, fx *Effects) numeric.Value {
	base := s.RunTotal.FloorDiv(c.Balance.AscensionThreshold)
	if base.LessThan(numeric.One) {
		return numeric.Zero
	}
	gain := fx.Get(EffectAscensionGain).Mul(numeric.One.Add(fx.Get(EffectPostdocGain)))
	return base.Mul(gain).Floor()
}

// PrestigeGrant is the PP a Prestige would pay right now.
// Formula: floor(floor(AscensionEarned / Threshold) * prestige_gain)
func PrestigeGrant(s *State, c *Catalog, fx *Effects) numeric.Value {
	base := s.AscensionEarned.FloorDiv(c.Balance.PrestigeThreshold)
	if base.LessThan(numeric.One) {
		return numeric.Zero
	}
	return base.Mul(fx.Get(EffectPrestigeGain)).Floor()
}

func requireOwned(s *State, key string, atLeast numeric.Value) error {
	if s.OwnedCount(key).LessThan(atLeast) {
		return fmt.Errorf("%w: requires %s %s (have %s)", ErrPreconditionNotMet, atLeast, key, s.OwnedCount(key))
	}
	return nil
}

// ascend performs an Ascension and returns the PA granted.
func ascend(s *State, c *Catalog, fx *Effects) (numeric.Value, error) {
	b := c.Balance
	if err := requireOwned(s, b.AscensionGate, b.AscensionGateMin); err != nil {
		return numeric.Zero, err
	}
	grant := AscensionGrant(s, c, fx)
	if !grant.IsPositive() {
		return numeric.Zero, fmt.Errorf("%w: %s run points needed, have %s", ErrInsufficientResources, b.AscensionThreshold, s.RunTotal)
	}

	s.clearScope(c, ScopeRun)
	s.AscensionCount = s.AscensionCount.Add(numeric.One)
	s.AscensionEarned = s.AscensionEarned.Add(grant)
	s.credit(CurrencyAscension, grant)
	guaranteeMinimum(s, c, fx)
	return grant, nil
}

// prestige performs a Prestige and returns the PP granted.
func prestige(s *State, c *Catalog, fx *Effects) (numeric.Value, error) {
	b := c.Balance
	if err := requireOwned(s, b.PrestigeGate, b.PrestigeGateMin); err != nil {
		return numeric.Zero, err
	}
	grant := PrestigeGrant(s, c, fx)
	if !grant.IsPositive() {
		return numeric.Zero, fmt.Errorf("%w: %s ascension points earned needed, have %s", ErrInsufficientResources, b.PrestigeThreshold, s.AscensionEarned)
	}

	s.clearScope(c, ScopeAscension)
	s.PrestigeCount = s.PrestigeCount.Add(numeric.One)
	s.credit(CurrencyPrestige, grant)
	s.credit(CurrencyPrestigeSP, b.PrestigeSkillPoint.Mul(fx.Get(EffectSkillPointGain)))
	guaranteeMinimum(s, c, fx)
	return grant, nil
}

// guaranteeMinimum raises the guaranteed unit to the doctorate minimum after a reset.
func guaranteeMinimum(s *State, c *Catalog, fx *Effects) {
	key := c.Balance.GuaranteedOwnable
	if key == "" {
		return
	}
	floor := fx.Get(EffectDoctorateMinClassrooms).Floor()
	if floor.GreaterThan(s.OwnedCount(key)) {
		s.Owned[key] = floor
	}
}
