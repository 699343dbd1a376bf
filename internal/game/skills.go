/*
Package game
File: skills.go
Description:
    Skill tree leveling and respec. Nodes are bought one level at a time
    with the tree's own points; a respec refunds everything spent on the tree.
*/

package game

import (
	"fmt"

	"github.com/everforgeworks/study-ascension/internal/numeric"
)

// levelSkill spends the tree's points to raise a node by one level.
// Every prerequisite must already be at its max level.
func levelSkill(s *State, c *Catalog, tree Tree, id string) (*SkillNode, int, error) {
	n, err := c.Skill(tree, id)
	if err != nil {
		return nil, 0, err
	}
	level := s.SkillLevel(tree, id)
	if level >= n.MaxLevel {
		return n, level, fmt.Errorf("%w: %s is at max level %d", ErrPreconditionNotMet, id, n.MaxLevel)
	}
	for _, p := range n.Prerequisites {
		pre, _ := c.Skill(tree, p)
		if s.SkillLevel(tree, p) < pre.MaxLevel {
			return n, level, fmt.Errorf("%w: %s requires %s at max level", ErrPreconditionNotMet, id, p)
		}
	}
	points := tree.Points()
	if s.Balance(points).LessThan(n.Cost) {
		return n, level, fmt.Errorf("%w: %s costs %s %s", ErrInsufficientResources, id, n.Cost, points)
	}

	s.debit(points, n.Cost)
	s.setSkillLevel(tree, id, level+1)
	return n, level + 1, nil
}

// resetSkills clears a tree and refunds every point spent on it.
func resetSkills(s *State, c *Catalog, tree Tree) numeric.Value {
	refund := numeric.Zero
	for _, n := range c.Skills {
		if n.Tree != tree {
			continue
		}
		if lvl := s.SkillLevel(tree, n.ID); lvl > 0 {
			refund = refund.Add(n.Cost.Mul(numeric.FromInt(int64(lvl))))
		}
	}
	delete(s.Skills, tree)
	s.credit(tree.Points(), refund)
	return refund
}
