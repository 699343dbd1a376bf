/*
Package game
File: effects.go
Description:
    The effect accumulator. Every modifier in the game (skill levels,
    permanent purchases, achievement and quest rewards) folds into a single
    table of named values that the formulas in mechanics.go read from.

    The table is never edited incrementally. RebuildEffects recomputes it
    from scratch out of the State, so applying it twice yields the same
    result and a reset can never leave a stale bonus behind.
*/

package game

import (
	"sort"

	"github.com/everforgeworks/study-ascension/internal/numeric"
)

// EffectName keys an entry of the accumulator.
type EffectName string

const (
	EffectClickBonus EffectName = "click_bonus"

	EffectStudentOutput    EffectName = "student_output"
	EffectClassroomOutput  EffectName = "classroom_output"
	EffectProfessorOutput  EffectName = "professor_output"
	EffectAllOutput        EffectName = "all_output"
	EffectStructureOutput  EffectName = "structure_output"
	EffectSchoolOutput     EffectName = "school_output"
	EffectHighschoolOutput EffectName = "highschool_output"
	EffectCollegeOutput    EffectName = "college_output"
	EffectOfflineOutput    EffectName = "offline_output"

	EffectAscensionGain  EffectName = "ascension_gain"
	EffectPrestigeGain   EffectName = "prestige_gain"
	EffectAscensionBonus EffectName = "ascension_bonus"
	EffectSkillPointGain EffectName = "skill_point_gain"

	EffectStudentCost    EffectName = "student_cost"
	EffectClassroomCost  EffectName = "classroom_cost"
	EffectImageCost      EffectName = "image_cost"
	EffectProfessorCost  EffectName = "professor_cost"
	EffectAllCost        EffectName = "all_cost"
	EffectAutomationCost EffectName = "automation_cost"

	EffectBachelorProfessor      EffectName = "bachelor_professor"
	EffectMaster1Classroom       EffectName = "master1_classroom"
	EffectMaster2Classroom       EffectName = "master2_classroom"
	EffectDoctorateOutput        EffectName = "doctorate_output"
	EffectDoctorateMinClassrooms EffectName = "doctorate_min_classrooms"
	EffectPostdocGain            EffectName = "postdoc_gain"

	EffectAchievementBonus EffectName = "achievement_bonus"
)

// Multiplier entries default to 1, everything else defaults to 0.
var multiplierEffects = map[EffectName]bool{
	EffectStudentOutput:    true,
	EffectClassroomOutput:  true,
	EffectProfessorOutput:  true,
	EffectAllOutput:        true,
	EffectStructureOutput:  true,
	EffectSchoolOutput:     true,
	EffectHighschoolOutput: true,
	EffectCollegeOutput:    true,
	EffectAscensionGain:    true,
	EffectPrestigeGain:     true,
	EffectSkillPointGain:   true,
}

var additiveEffects = map[EffectName]bool{
	EffectClickBonus:             true,
	EffectOfflineOutput:          true,
	EffectAscensionBonus:         true,
	EffectStudentCost:            true,
	EffectClassroomCost:          true,
	EffectImageCost:              true,
	EffectProfessorCost:          true,
	EffectAllCost:                true,
	EffectAutomationCost:         true,
	EffectBachelorProfessor:      true,
	EffectMaster1Classroom:       true,
	EffectMaster2Classroom:       true,
	EffectDoctorateOutput:        true,
	EffectDoctorateMinClassrooms: true,
	EffectPostdocGain:            true,
	EffectAchievementBonus:       true,
}

// Known reports whether n is a recognised accumulator entry.
func (n EffectName) Known() bool {
	return multiplierEffects[n] || additiveEffects[n]
}

func (n EffectName) defaultValue() numeric.Value {
	if multiplierEffects[n] {
		return numeric.One
	}
	return numeric.Zero
}

// Effects is the derived modifier table. Missing entries read as their default.
type Effects struct {
	values map[EffectName]numeric.Value
}

func NewEffects() *Effects {
	return &Effects{values: make(map[EffectName]numeric.Value)}
}

// Get returns the current value of an entry.
func (e *Effects) Get(n EffectName) numeric.Value {
	if v, ok := e.values[n]; ok {
		return v
	}
	return n.defaultValue()
}

// Apply folds one effect into the table, level times.
func (e *Effects) Apply(es EffectSpec, level numeric.Value) {
	if !level.IsPositive() {
		return
	}
	cur := e.Get(es.Target)
	switch es.Op {
	case OpAdd:
		cur = cur.Add(es.Amount.Mul(level))
	case OpScale:
		cur = cur.Mul(numeric.One.Add(es.Amount.Mul(level)))
	case OpMultiply:
		cur = cur.Mul(es.Amount.PowInt(level.Int64()))
	}
	e.values[es.Target] = cur
}

func (e *Effects) set(n EffectName, v numeric.Value) {
	e.values[n] = v
}

// Snapshot returns every known entry as decimal strings.
func (e *Effects) Snapshot() map[string]string {
	out := make(map[string]string, len(multiplierEffects)+len(additiveEffects))
	for n := range multiplierEffects {
		out[string(n)] = e.Get(n).String()
	}
	for n := range additiveEffects {
		out[string(n)] = e.Get(n).String()
	}
	return out
}

// EffectNames lists every known entry sorted by name.
func EffectNames() []EffectName {
	names := make([]EffectName, 0, len(multiplierEffects)+len(additiveEffects))
	for n := range multiplierEffects {
		names = append(names, n)
	}
	for n := range additiveEffects {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// RebuildEffects derives the accumulator from state.
// Order: defaults, skills (studies, ascension, prestige), permanent purchases,
// achievement effect rewards, claimed quest effect rewards, then the running
// achievement bonus.
func RebuildEffects(s *State, c *Catalog) *Effects {
	fx := NewEffects()

	// 1. Skill levels, tree by tree
	for _, tree := range Trees {
		for i := range c.Skills {
			node := &c.Skills[i]
			if node.Tree != tree {
				continue
			}
			level := s.SkillLevel(tree, node.ID)
			if level == 0 {
				continue
			}
			for _, es := range node.Effects {
				fx.Apply(es, numeric.FromInt(int64(level)))
			}
		}
	}

	// 2. Permanent purchases at their owned count
	for i := range c.Ownables {
		o := &c.Ownables[i]
		if len(o.Effects) == 0 {
			continue
		}
		owned := s.OwnedCount(o.Key)
		for _, spec := range o.Effects {
			fx.Apply(spec, owned)
		}
	}

	// 3. Effect rewards of unlocked achievements
	for i := range c.Achievements {
		a := &c.Achievements[i]
		if a.Reward.Kind == RewardEffect && s.Achievements[a.Key] {
			fx.Apply(*a.Reward.Effect, numeric.One)
		}
	}

	// 4. Effect rewards of claimed quests
	for i := range c.Quests {
		q := &c.Quests[i]
		if q.Reward.Kind == RewardEffect && s.Quests[q.Key].Claimed {
			fx.Apply(*q.Reward.Effect, numeric.One)
		}
	}

	// 5. Running bonus owned by the state
	fx.set(EffectAchievementBonus, fx.Get(EffectAchievementBonus).Add(s.AchievementBonus))

	return fx
}
