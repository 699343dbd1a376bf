package game

import (
	"testing"

	"github.com/everforgeworks/study-ascension/internal/numeric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalFor(s *State, c *Catalog) evalContext {
	fx := RebuildEffects(s, c)
	return evalContext{state: s, catalog: c, fx: fx, rate: ProductionRate(s, c, fx)}
}

func TestEvaluateAchievements_PaysOnce(t *testing.T) {
	c := defaultCatalog(t)
	s := NewState()
	s.Owned["school"] = numeric.FromInt(1)

	unlocked := evaluateAchievements(evalFor(s, c))
	require.Len(t, unlocked, 1)
	assert.Equal(t, "ACH_SCHOOLS_1", unlocked[0].Key)
	assert.Equal(t, "0.001", s.AchievementBonus.String())

	assert.Empty(t, evaluateAchievements(evalFor(s, c)))
	assert.Equal(t, "0.001", s.AchievementBonus.String())

	// Unlocked achievements stay unlocked when the metric drops.
	delete(s.Owned, "school")
	assert.Empty(t, evaluateAchievements(evalFor(s, c)))
	assert.True(t, s.Achievements["ACH_SCHOOLS_1"])
}

func TestEvaluateAchievements_Grants(t *testing.T) {
	c := defaultCatalog(t)
	s := NewState()
	s.AscensionCount = numeric.FromInt(2)

	evaluateAchievements(evalFor(s, c))
	// ACH_ASCEND_1 and ACH_ASCEND_2
	assert.Equal(t, "15", s.Balance(CurrencyAscension).String())
}

func TestQuests_CompleteThenClaimOnce(t *testing.T) {
	c := defaultCatalog(t)
	s := NewState()
	fx := NewEffects()

	_, err := claimQuest(s, c, fx, "Q_FIRST_CLICK")
	assert.ErrorIs(t, err, ErrPreconditionNotMet)

	s.Clicks = numeric.One
	completed := evaluateQuests(evalFor(s, c))
	require.Len(t, completed, 1)
	assert.Equal(t, "completed", s.Quests["Q_FIRST_CLICK"].String())
	assert.True(t, s.Balance(CurrencyPoints).IsZero(), "completion alone pays nothing")

	_, err = claimQuest(s, c, fx, "Q_FIRST_CLICK")
	require.NoError(t, err)
	assert.Equal(t, "10", s.Balance(CurrencyPoints).String())
	assert.Equal(t, "claimed", s.Quests["Q_FIRST_CLICK"].String())

	_, err = claimQuest(s, c, fx, "Q_FIRST_CLICK")
	assert.ErrorIs(t, err, ErrPreconditionNotMet)
	assert.Equal(t, "10", s.Balance(CurrencyPoints).String())

	_, err = claimQuest(s, c, fx, "Q_NOPE")
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestApplyReward_SkillPointsScaleWithGain(t *testing.T) {
	s := NewState()
	fx := NewEffects()
	fx.set(EffectSkillPointGain, val("1.5"))

	applyReward(s, fx, Reward{Kind: RewardSkillPoints, Tree: TreeAscension, Amount: numeric.FromInt(2)})
	assert.Equal(t, "3", s.Balance(CurrencyAscensionSP).String())
}

func TestQuestsRunDoneMetric(t *testing.T) {
	c := defaultCatalog(t)
	s := NewState()
	x := evalFor(s, c)
	assert.True(t, x.metric("quests_run_done").IsZero())

	for _, q := range c.Quests {
		if !q.Permanent {
			s.Quests[q.Key] = QuestStatus{Completed: true}
		}
	}
	assert.Equal(t, "1", x.metric("quests_run_done").String())
}

func TestUnlockGates_Latch(t *testing.T) {
	c := defaultCatalog(t)
	s := NewState()
	s.credit(CurrencyPoints, numeric.FromInt(150))

	opened := unlockGates(evalFor(s, c))
	require.Len(t, opened, 1)
	assert.Equal(t, "classroom", opened[0].Key)

	s.debit(CurrencyPoints, numeric.FromInt(150))
	assert.Empty(t, unlockGates(evalFor(s, c)))
	assert.True(t, s.Unlocked["classroom"])
}
