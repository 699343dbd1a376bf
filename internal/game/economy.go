/*
Package game
File: economy.go
Description:
    Handles the time-driven side of the economy.
    This includes:
    1. Crediting production for the time elapsed between ticks.
    2. Crediting offline production when a save is loaded.
    3. Running auto-buy for every automated unit.
    4. Buying automation slots and one-off features.
*/

package game

import (
	"fmt"
	"time"

	"github.com/everforgeworks/study-ascension/internal/numeric"
)

var millisPerSecond = numeric.FromInt(1000)

// seconds converts a duration to fractional seconds at millisecond resolution.
func seconds(d time.Duration) numeric.Value {
	return numeric.FromInt(d.Milliseconds()).Div(millisPerSecond)
}

// produce credits `rate` points per second for `elapsed`.
// Produced points count toward the run total used by Ascension.
func produce(s *State, rate numeric.Value, elapsed time.Duration) numeric.Value {
	gained := rate.Mul(seconds(elapsed))
	if !gained.IsPositive() {
		return numeric.Zero
	}
	s.credit(CurrencyPoints, gained)
	s.RunTotal = s.RunTotal.Add(gained)
	return gained
}

// offlineGain credits production for time spent away.
// Formula: rate * (1 + offline_output) * whole seconds away.
// Nothing is credited when the setting is off or the gap is shorter than OfflineMinSeconds.
func offlineGain(s *State, rate numeric.Value, fx *Effects, b Balance, away time.Duration) numeric.Value {
	secs := int64(away / time.Second)
	if !s.Settings.OfflineProgress || secs <= b.OfflineMinSeconds {
		return numeric.Zero
	}
	gained := rate.Mul(numeric.One.Add(fx.Get(EffectOfflineOutput))).Mul(numeric.FromInt(secs))
	if !gained.IsPositive() {
		return numeric.Zero
	}
	s.credit(CurrencyPoints, gained)
	s.RunTotal = s.RunTotal.Add(gained)
	return gained
}

// runAutomation buys one unit of every automated ownable the balance covers.
// Failures are silent: an unaffordable unit is simply retried next tick.
func runAutomation(x evalContext) []string {
	if !x.state.Features[FeatureAutomation] {
		return nil
	}
	var bought []string
	for i := range x.catalog.Ownables {
		o := &x.catalog.Ownables[i]
		if !x.state.Automation[o.Key] {
			continue
		}
		if _, _, err := buy(x, o.Key, Count(1), true); err == nil {
			bought = append(bought, o.Key)
		}
	}
	return bought
}

// toggleAutomation flips auto-buy for a unit and returns the new setting.
// The first activation is paid in ascension points; later toggles are free.
func toggleAutomation(s *State, c *Catalog, fx *Effects, key string) (bool, error) {
	o, err := c.Ownable(key)
	if err != nil {
		return false, err
	}
	if !s.Features[FeatureAutomation] {
		return false, fmt.Errorf("%w: feature %s not unlocked", ErrPreconditionNotMet, FeatureAutomation)
	}
	if !o.Automatable() {
		return false, fmt.Errorf("%w: %s cannot be automated", ErrPreconditionNotMet, key)
	}

	on, paid := s.Automation[key]
	if paid {
		s.Automation[key] = !on
		return !on, nil
	}

	price := AutomationPrice(o, fx, c.Balance)
	if s.Balance(CurrencyAscension).LessThan(price) {
		return false, fmt.Errorf("%w: automating %s costs %s %s", ErrInsufficientResources, key, price, CurrencyAscension)
	}
	s.debit(CurrencyAscension, price)
	s.Automation[key] = true
	return true, nil
}

// unlockFeature buys a one-off feature.
func unlockFeature(s *State, c *Catalog, fx *Effects, key string) (*Feature, error) {
	f, err := c.Feature(key)
	if err != nil {
		return nil, err
	}
	if s.Features[key] {
		return f, fmt.Errorf("%w: %s already unlocked", ErrPreconditionNotMet, key)
	}
	price := FeaturePrice(f, fx, c.Balance)
	if s.Balance(f.Currency).LessThan(price) {
		return f, fmt.Errorf("%w: %s costs %s %s", ErrInsufficientResources, key, price, f.Currency)
	}
	s.debit(f.Currency, price)
	s.Features[key] = true
	return f, nil
}
