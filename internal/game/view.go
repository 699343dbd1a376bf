/*
Package game
File: view.go
Description:
    The read-only View handed to clients: balances, prices, unlocks,
    skills and quest status, all computed under the engine lock.
*/

package game

import "github.com/everforgeworks/study-ascension/internal/numeric"

// OwnableView describes one unit as the client needs to render it.
type OwnableView struct {
	Key             string        `json:"key"`
	Name            string        `json:"name"`
	Scope           Scope         `json:"scope"`
	Currency        Currency      `json:"currency"`
	Owned           numeric.Value `json:"owned"`
	NextCost        numeric.Value `json:"next_cost"`
	Unlocked        bool          `json:"unlocked"`
	Automation      string        `json:"automation,omitempty"` // locked | on | off
	AutomationPrice numeric.Value `json:"automation_price,omitempty"`
}

type SkillView struct {
	Tree      Tree          `json:"tree"`
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Tier      int           `json:"tier"`
	Level     int           `json:"level"`
	MaxLevel  int           `json:"max_level"`
	Cost      numeric.Value `json:"cost"`
	Available bool          `json:"available"` // Prerequisites met and not maxed
}

type QuestView struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Status    string `json:"status"`
	Permanent bool   `json:"permanent"`
}

type FeatureView struct {
	Key      string        `json:"key"`
	Name     string        `json:"name"`
	Currency Currency      `json:"currency"`
	Price    numeric.Value `json:"price"`
	Owned    bool          `json:"owned"`
}

// View is a read-only snapshot of everything a client displays.
type View struct {
	SaveID           string                     `json:"save_id"`
	Wallet           map[Currency]numeric.Value `json:"wallet"`
	Rate             numeric.Value              `json:"rate"`
	ClickValue       numeric.Value              `json:"click_value"`
	RunTotal         numeric.Value              `json:"run_total"`
	Clicks           numeric.Value              `json:"clicks"`
	AscensionCount   numeric.Value              `json:"ascension_count"`
	AscensionEarned  numeric.Value              `json:"ascension_earned"`
	PrestigeCount    numeric.Value              `json:"prestige_count"`
	AchievementBonus numeric.Value              `json:"achievement_bonus"`
	AscensionGrant   numeric.Value              `json:"ascension_grant"` // What Ascend would pay now
	PrestigeGrant    numeric.Value              `json:"prestige_grant"`
	Ownables         []OwnableView              `json:"ownables"`
	Features         []FeatureView              `json:"features"`
	Skills           []SkillView                `json:"skills"`
	Quests           []QuestView                `json:"quests"`
	Achievements     []string                   `json:"achievements"` // Unlocked keys, catalog order
	Unlocked         []string                   `json:"unlocked"`     // Latched gate keys, catalog order
	Effects          map[string]string          `json:"effects"`
	Settings         Settings                   `json:"settings"`
}

// View builds the client snapshot.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, c, fx := e.state, e.catalog, e.fx
	v := View{
		SaveID:           s.SaveID,
		Wallet:           make(map[Currency]numeric.Value, len(Currencies)),
		Rate:             e.rate,
		ClickValue:       ClickValue(e.rate, fx, c.Balance),
		RunTotal:         s.RunTotal,
		Clicks:           s.Clicks,
		AscensionCount:   s.AscensionCount,
		AscensionEarned:  s.AscensionEarned,
		PrestigeCount:    s.PrestigeCount,
		AchievementBonus: s.AchievementBonus,
		AscensionGrant:   AscensionGrant(s, c, fx),
		PrestigeGrant:    PrestigeGrant(s, c, fx),
		Achievements:     []string{},
		Unlocked:         []string{},
		Effects:          fx.Snapshot(),
		Settings:         s.Settings,
	}
	for _, cur := range Currencies {
		v.Wallet[cur] = s.Balance(cur)
	}

	for i := range c.Ownables {
		o := &c.Ownables[i]
		ov := OwnableView{
			Key:      o.Key,
			Name:     o.Name,
			Scope:    o.Scope,
			Currency: o.Currency,
			Owned:    s.OwnedCount(o.Key),
			NextCost: UnitCost(o, s.PriceBasis(o), fx, c.Balance),
			Unlocked: o.Gate == "" || s.Unlocked[o.Gate],
		}
		if o.Automatable() {
			ov.Automation = s.automationStatus(o.Key)
			ov.AutomationPrice = AutomationPrice(o, fx, c.Balance)
		}
		v.Ownables = append(v.Ownables, ov)
	}

	for i := range c.Features {
		f := &c.Features[i]
		v.Features = append(v.Features, FeatureView{
			Key:      f.Key,
			Name:     f.Name,
			Currency: f.Currency,
			Price:    FeaturePrice(f, fx, c.Balance),
			Owned:    s.Features[f.Key],
		})
	}

	for _, n := range c.Skills {
		level := s.SkillLevel(n.Tree, n.ID)
		available := level < n.MaxLevel
		for _, p := range n.Prerequisites {
			if pre, err := c.Skill(n.Tree, p); err == nil && s.SkillLevel(n.Tree, p) < pre.MaxLevel {
				available = false
			}
		}
		v.Skills = append(v.Skills, SkillView{
			Tree:      n.Tree,
			ID:        n.ID,
			Name:      n.Name,
			Tier:      n.Tier,
			Level:     level,
			MaxLevel:  n.MaxLevel,
			Cost:      n.Cost,
			Available: available,
		})
	}

	for _, q := range c.Quests {
		v.Quests = append(v.Quests, QuestView{
			Key:       q.Key,
			Name:      q.Name,
			Category:  q.Category,
			Status:    s.Quests[q.Key].String(),
			Permanent: q.Permanent,
		})
	}
	for _, a := range c.Achievements {
		if s.Achievements[a.Key] {
			v.Achievements = append(v.Achievements, a.Key)
		}
	}
	for _, g := range c.Gates {
		if s.Unlocked[g.Key] {
			v.Unlocked = append(v.Unlocked, g.Key)
		}
	}
	return v
}
