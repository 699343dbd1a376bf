package game

import (
	"testing"

	"github.com/everforgeworks/study-ascension/internal/numeric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func defaultCatalog(t testing.TB) *Catalog {
	t.Helper()
	c, err := DefaultCatalog()
	require.NoError(t, err)
	return c
}

func val(s string) numeric.Value { return numeric.MustParse(s) }

func TestUnitCost_Curve(t *testing.T) {
	c := defaultCatalog(t)
	student, _ := c.Ownable("student")
	fx := NewEffects()

	want := []string{"10", "11", "13", "15", "17", "20", "23", "26", "30", "35"}
	for n, w := range want {
		got := UnitCost(student, numeric.FromInt(int64(n)), fx, c.Balance)
		assert.Equal(t, w, got.String(), "cost at owned=%d", n)
	}
}

func TestUnitCost_ReductionsStackAndClamp(t *testing.T) {
	c := defaultCatalog(t)
	classroom, _ := c.Ownable("classroom")

	fx := NewEffects()
	fx.set(EffectClassroomCost, val("0.5"))
	fx.set(EffectAllCost, val("0.1"))
	// 100 * 0.5 * 0.9
	assert.Equal(t, "45", UnitCost(classroom, numeric.Zero, fx, c.Balance).String())

	// A reduction above the ceiling acts as the ceiling, and the price never drops below 1.
	fx.set(EffectClassroomCost, val("3"))
	fx.set(EffectAllCost, val("3"))
	assert.Equal(t, "1", UnitCost(classroom, numeric.Zero, fx, c.Balance).String())

	// Negative reductions are treated as none.
	fx.set(EffectClassroomCost, val("-1"))
	fx.set(EffectAllCost, numeric.Zero)
	assert.Equal(t, "100", UnitCost(classroom, numeric.Zero, fx, c.Balance).String())
}

func TestUnitCost_StructuresIgnoreReductions(t *testing.T) {
	c := defaultCatalog(t)
	school, _ := c.Ownable("school")

	fx := NewEffects()
	fx.set(EffectAllCost, val("0.5"))
	assert.Equal(t, "1", UnitCost(school, numeric.Zero, fx, c.Balance).String())
	assert.Equal(t, "4", UnitCost(school, numeric.FromInt(10), fx, c.Balance).String())
}

func TestAutomationAndFeaturePrice(t *testing.T) {
	c := defaultCatalog(t)
	student, _ := c.Ownable("student")
	automation, _ := c.Feature(FeatureAutomation)
	bulk, _ := c.Feature(FeatureBulkPurchase)

	fx := NewEffects()
	assert.Equal(t, "100", AutomationPrice(student, fx, c.Balance).String())
	assert.Equal(t, "1000", FeaturePrice(automation, fx, c.Balance).String())

	fx.set(EffectAutomationCost, val("0.2"))
	assert.Equal(t, "80", AutomationPrice(student, fx, c.Balance).String())
	assert.Equal(t, "800", FeaturePrice(automation, fx, c.Balance).String())
	assert.Equal(t, "10", FeaturePrice(bulk, fx, c.Balance).String())
}

func TestProductionRate(t *testing.T) {
	c := defaultCatalog(t)

	t.Run("nothing owned produces nothing", func(t *testing.T) {
		s := NewState()
		assert.True(t, ProductionRate(s, c, RebuildEffects(s, c)).IsZero())
	})

	t.Run("students", func(t *testing.T) {
		s := NewState()
		s.Owned["student"] = numeric.FromInt(10)
		assert.Equal(t, "5", ProductionRate(s, c, NewEffects()).String())
	})

	t.Run("classrooms are amplified by professors", func(t *testing.T) {
		s := NewState()
		s.Owned["classroom"] = numeric.FromInt(2)
		s.Owned["professor"] = numeric.FromInt(3)
		// 2 * 25 * (3 + 1)
		assert.Equal(t, "200", ProductionRate(s, c, NewEffects()).String())
	})

	t.Run("reset tier multipliers", func(t *testing.T) {
		s := NewState()
		s.Owned["student"] = numeric.FromInt(2)
		s.AscensionCount = numeric.FromInt(2)
		s.AscensionEarned = numeric.FromInt(50)
		s.PrestigeCount = numeric.FromInt(1)
		// 1 * (1 + 2*50*0.01) * (1 + 0.1)
		assert.Equal(t, "2.2", ProductionRate(s, c, NewEffects()).String())
	})

	t.Run("structures and achievement bonus", func(t *testing.T) {
		s := NewState()
		s.Owned["student"] = numeric.FromInt(2)
		s.Owned["college"] = numeric.FromInt(2)
		fx := NewEffects()
		fx.set(EffectAchievementBonus, val("0.5"))
		// 1 * 1.5 * (1 + 2*0.1)
		assert.Equal(t, "1.8", ProductionRate(s, c, fx).String())
	})
}

func TestClickValue(t *testing.T) {
	c := defaultCatalog(t)
	fx := NewEffects()

	assert.Equal(t, "1", ClickValue(numeric.Zero, fx, c.Balance).String())
	assert.Equal(t, "5", ClickValue(numeric.FromInt(50), fx, c.Balance).String())

	fx.set(EffectClickBonus, val("2"))
	assert.Equal(t, "7", ClickValue(numeric.FromInt(50), fx, c.Balance).String())

	fx.set(EffectClickBonus, val("-10"))
	assert.Equal(t, "1", ClickValue(numeric.Zero, fx, c.Balance).String())
}

func TestUnitCost_MonotoneProperty(t *testing.T) {
	c := defaultCatalog(t)

	rapid.Check(t, func(t *rapid.T) {
		o := &c.Ownables[rapid.IntRange(0, len(c.Ownables)-1).Draw(t, "ownable")]
		owned := numeric.FromInt(rapid.Int64Range(0, 300).Draw(t, "owned"))
		fx := NewEffects()
		if o.CostEffect != "" {
			fx.set(o.CostEffect, numeric.FromInt(rapid.Int64Range(-50, 200).Draw(t, "item")).Div(numeric.FromInt(100)))
		}
		fx.set(EffectAllCost, numeric.FromInt(rapid.Int64Range(-50, 200).Draw(t, "all")).Div(numeric.FromInt(100)))

		here := UnitCost(o, owned, fx, c.Balance)
		next := UnitCost(o, owned.Add(numeric.One), fx, c.Balance)
		if here.LessThan(numeric.One) {
			t.Fatalf("cost %s below 1", here)
		}
		if next.LessThan(here) {
			t.Fatalf("cost decreased from %s to %s", here, next)
		}
	})
}
