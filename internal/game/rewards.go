/*
Package game
File: rewards.go
Description:
    Achievements and quests.

    Achievements unlock by themselves and pay out immediately. Quests move
    from pending to completed by themselves but only pay out when the player
    claims them. Both pay out exactly once: the unlocked/claimed flag is set
    in the same step that applies the reward.
*/

package game

import "fmt"

// applyReward pays out one-shot rewards. Effect rewards are not applied
// here: RebuildEffects re-derives them from the unlocked/claimed flags.
func applyReward(s *State, fx *Effects, r Reward) {
	switch r.Kind {
	case RewardGrant:
		s.credit(r.Currency, r.Amount)
	case RewardSkillPoints:
		s.credit(r.Tree.Points(), r.Amount.Mul(fx.Get(EffectSkillPointGain)))
	case RewardBonus:
		s.AchievementBonus = s.AchievementBonus.Add(r.Amount)
	}
}

// evaluateAchievements unlocks every achievement whose conditions now hold.
func evaluateAchievements(x evalContext) []*Achievement {
	var unlocked []*Achievement
	for i := range x.catalog.Achievements {
		a := &x.catalog.Achievements[i]
		if x.state.Achievements[a.Key] || !x.met(a.Conditions) {
			continue
		}
		x.state.Achievements[a.Key] = true
		applyReward(x.state, x.fx, a.Reward)
		unlocked = append(unlocked, a)
	}
	return unlocked
}

// evaluateQuests marks pending quests completed once their conditions hold.
func evaluateQuests(x evalContext) []*Quest {
	var completed []*Quest
	for i := range x.catalog.Quests {
		q := &x.catalog.Quests[i]
		st := x.state.Quests[q.Key]
		if st.Completed || !x.met(q.Conditions) {
			continue
		}
		st.Completed = true
		x.state.Quests[q.Key] = st
		completed = append(completed, q)
	}
	return completed
}

func claimQuest(s *State, c *Catalog, fx *Effects, key string) (*Quest, error) {
	q, err := c.Quest(key)
	if err != nil {
		return nil, err
	}
	st := s.Quests[key]
	switch {
	case st.Claimed:
		return q, fmt.Errorf("%w: quest %s already claimed", ErrPreconditionNotMet, key)
	case !st.Completed:
		return q, fmt.Errorf("%w: quest %s not completed", ErrPreconditionNotMet, key)
	}
	st.Claimed = true
	s.Quests[key] = st
	applyReward(s, fx, q.Reward)
	return q, nil
}
