/*
Package game
File: gates.go
Description:
    Condition evaluation and unlock gates.

    Catalog conditions are thresholds on named metrics read from the State.
    Gates latch: once a gate's conditions hold it stays unlocked for good,
    even if the metric later drops (spending points does not re-hide the
    classroom).

    Metric names:
        <currency>                 balance held (points, images, ...)
        owned:<ownable>            units owned
        automation:<ownable>       1 when auto-buy is running
        feature:<feature>          1 when bought
        unlocked:<gate>            1 when latched
        achievement:<achievement>  1 when unlocked
        skill_levels:<tree>        sum of levels in a tree
        skills_maxed:<tree>        1 when every node of a tree is at max level
        run_total, clicks, production, ascension_count, ascension_earned,
        prestige_count, achievements_unlocked, quests_completed,
        quests_run_done (1 when every non-permanent quest is completed)
*/

package game

import (
	"strings"

	"github.com/everforgeworks/study-ascension/internal/numeric"
)

var plainMetrics = map[string]bool{
	"run_total":             true,
	"clicks":                true,
	"production":            true,
	"ascension_count":       true,
	"ascension_earned":      true,
	"prestige_count":        true,
	"achievements_unlocked": true,
	"quests_completed":      true,
	"quests_run_done":       true,
}

func (c *Catalog) knownMetric(name string) bool {
	prefix, arg, scoped := strings.Cut(name, ":")
	if !scoped {
		return plainMetrics[name] || validCurrency(Currency(name))
	}
	switch prefix {
	case "owned", "automation":
		_, ok := c.ownables[arg]
		return ok
	case "feature":
		_, ok := c.features[arg]
		return ok
	case "unlocked":
		_, ok := c.gates[arg]
		return ok
	case "achievement":
		_, ok := c.achievements[arg]
		return ok
	case "skill_levels", "skills_maxed":
		t := Tree(arg)
		return t == TreeStudies || t == TreeAscension || t == TreePrestige
	}
	return false
}

// evalContext is the read-only view conditions are evaluated against.
type evalContext struct {
	state   *State
	catalog *Catalog
	fx      *Effects
	rate    numeric.Value
}

func flag(b bool) numeric.Value {
	if b {
		return numeric.One
	}
	return numeric.Zero
}

// metric resolves a metric name. Names are checked at catalog load, so an
// unknown one here reads as zero.
func (x evalContext) metric(name string) numeric.Value {
	s := x.state
	prefix, arg, scoped := strings.Cut(name, ":")
	if scoped {
		switch prefix {
		case "owned":
			return s.OwnedCount(arg)
		case "automation":
			return flag(s.Automation[arg])
		case "feature":
			return flag(s.Features[arg])
		case "unlocked":
			return flag(s.Unlocked[arg])
		case "achievement":
			return flag(s.Achievements[arg])
		case "skill_levels":
			total := 0
			for _, lvl := range s.Skills[Tree(arg)] {
				total += lvl
			}
			return numeric.FromInt(int64(total))
		case "skills_maxed":
			return flag(x.treeMaxed(Tree(arg)))
		}
		return numeric.Zero
	}

	switch name {
	case "run_total":
		return s.RunTotal
	case "clicks":
		return s.Clicks
	case "production":
		return x.rate
	case "ascension_count":
		return s.AscensionCount
	case "ascension_earned":
		return s.AscensionEarned
	case "prestige_count":
		return s.PrestigeCount
	case "achievements_unlocked":
		n := 0
		for _, ok := range s.Achievements {
			if ok {
				n++
			}
		}
		return numeric.FromInt(int64(n))
	case "quests_completed":
		n := 0
		for _, q := range s.Quests {
			if q.Completed {
				n++
			}
		}
		return numeric.FromInt(int64(n))
	case "quests_run_done":
		seen := false
		for _, q := range x.catalog.Quests {
			if q.Permanent {
				continue
			}
			seen = true
			if !s.Quests[q.Key].Completed {
				return numeric.Zero
			}
		}
		return flag(seen)
	}
	return s.Balance(Currency(name))
}

func (x evalContext) treeMaxed(tree Tree) bool {
	found := false
	for _, n := range x.catalog.Skills {
		if n.Tree != tree {
			continue
		}
		found = true
		if x.state.SkillLevel(tree, n.ID) < n.MaxLevel {
			return false
		}
	}
	return found
}

// met reports whether every condition holds. An empty list always holds.
func (x evalContext) met(conds []Condition) bool {
	for _, c := range conds {
		if x.metric(c.Metric).LessThan(c.Min) {
			return false
		}
	}
	return true
}

// unlockGates latches every gate whose conditions now hold and returns the
// newly unlocked ones in catalog order.
func unlockGates(x evalContext) []*Gate {
	var opened []*Gate
	for i := range x.catalog.Gates {
		g := &x.catalog.Gates[i]
		if x.state.Unlocked[g.Key] {
			continue
		}
		if x.met(g.Conditions) {
			x.state.Unlocked[g.Key] = true
			opened = append(opened, g)
		}
	}
	return opened
}
