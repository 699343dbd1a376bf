package game

import (
	"testing"

	"github.com/everforgeworks/study-ascension/internal/numeric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelSkill(t *testing.T) {
	c := defaultCatalog(t)
	s := NewState()
	s.credit(CurrencyStudiesSP, numeric.FromInt(10))

	_, _, err := levelSkill(s, c, TreeStudies, "STUDY_CLASS_EFFICIENCY")
	assert.ErrorIs(t, err, ErrPreconditionNotMet, "prerequisite not maxed")

	for want := 1; want <= 5; want++ {
		_, level, err := levelSkill(s, c, TreeStudies, "STUDY_STUDENT_EFFICIENCY")
		require.NoError(t, err)
		assert.Equal(t, want, level)
	}
	_, level, err := levelSkill(s, c, TreeStudies, "STUDY_STUDENT_EFFICIENCY")
	assert.ErrorIs(t, err, ErrPreconditionNotMet, "already at max level")
	assert.Equal(t, 5, level)

	_, level, err = levelSkill(s, c, TreeStudies, "STUDY_CLASS_EFFICIENCY")
	require.NoError(t, err)
	assert.Equal(t, 1, level)
	assert.Equal(t, "3", s.Balance(CurrencyStudiesSP).String())

	_, _, err = levelSkill(s, c, TreeStudies, "STUDY_ALL_COST_REDUCTION")
	assert.ErrorIs(t, err, ErrPreconditionNotMet)

	_, _, err = levelSkill(s, c, TreeAscension, "STUDY_CLICK_POWER")
	assert.ErrorIs(t, err, ErrUnknownEntity, "node belongs to another tree")
}

func TestLevelSkill_NeedsPoints(t *testing.T) {
	c := defaultCatalog(t)
	s := NewState()

	_, _, err := levelSkill(s, c, TreePrestige, "PRES_PP_BOOST")
	assert.ErrorIs(t, err, ErrInsufficientResources)

	s.credit(CurrencyPrestigeSP, numeric.One)
	_, _, err = levelSkill(s, c, TreePrestige, "PRES_PP_BOOST")
	require.NoError(t, err)
	assert.Equal(t, "1.25", RebuildEffects(s, c).Get(EffectPrestigeGain).String())
}

func TestResetSkills_RefundsEverything(t *testing.T) {
	c := defaultCatalog(t)
	s := NewState()
	s.setSkillLevel(TreeStudies, "STUDY_CLICK_POWER", 3)
	s.setSkillLevel(TreeStudies, "STUDY_PROFESSOR_EFFICIENCY", 2)
	s.setSkillLevel(TreeAscension, "ASC_PA_BOOST", 1)

	refund := resetSkills(s, c, TreeStudies)
	// 3*1 + 2*5
	assert.Equal(t, "13", refund.String())
	assert.Equal(t, "13", s.Balance(CurrencyStudiesSP).String())
	assert.Equal(t, 0, s.SkillLevel(TreeStudies, "STUDY_CLICK_POWER"))
	assert.Equal(t, 1, s.SkillLevel(TreeAscension, "ASC_PA_BOOST"))

	assert.True(t, resetSkills(s, c, TreeStudies).IsZero())
}
