/*
Package game
File: state.go
Description:
    Holds the mutable game state (balances, owned counts, skill levels,
    progression flags) and the static catalog loader.

    Every field of State belongs to exactly one reset scope. clearScope and
    View both derive that mapping from the catalog, so adding a new unit or
    skill in 'catalog.yaml' never requires touching the reset code.
*/

package game

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/everforgeworks/study-ascension/internal/numeric"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// QuestStatus tracks a quest's lifecycle: pending, completed, claimed.
type QuestStatus struct {
	Completed bool `json:"completed"`
	Claimed   bool `json:"claimed"`
}

func (q QuestStatus) String() string {
	switch {
	case q.Claimed:
		return "claimed"
	case q.Completed:
		return "completed"
	}
	return "pending"
}

// Settings are player preferences. They survive every reset but a hard one.
type Settings struct {
	OfflineProgress bool `json:"offline_progress"` // Credit production for time spent away
}

// State is the complete mutable progression of one player.
// It is the unit of persistence: the snapshot codec serializes exactly this struct.
type State struct {
	Version int       `json:"version"`
	SaveID  string    `json:"save_id"`  // Stable across saves, regenerated on hard reset
	SavedAt time.Time `json:"saved_at"` // Wall-clock of the last save, drives offline progress

	Wallet map[Currency]numeric.Value `json:"wallet"`
	Owned  map[string]numeric.Value   `json:"owned"`  // Ownable key -> count
	Skills map[Tree]map[string]int    `json:"skills"` // Tree -> node ID -> level

	// Run scope
	RunTotal   numeric.Value   `json:"run_total"` // Points produced since the last Ascension
	Clicks     numeric.Value   `json:"clicks"`
	Automation map[string]bool `json:"automation"` // Ownable key -> running; present only once paid

	// Ascension scope
	AscensionCount  numeric.Value `json:"ascension_count"`
	AscensionEarned numeric.Value `json:"ascension_earned"` // PA granted since the last Prestige

	// Permanent scope
	PrestigeCount    numeric.Value          `json:"prestige_count"`
	Features         map[string]bool        `json:"features"`
	Unlocked         map[string]bool        `json:"unlocked"` // Gate key -> latched
	Achievements     map[string]bool        `json:"achievements"`
	AchievementBonus numeric.Value          `json:"achievement_bonus"` // Running total of bonus rewards
	Quests           map[string]QuestStatus `json:"quests"`
	Settings         Settings               `json:"settings"`
}

// NewState returns a fresh game: empty balances and every flag off.
func NewState() *State {
	return &State{
		Version:      SnapshotVersion,
		SaveID:       uuid.NewString(),
		Wallet:       make(map[Currency]numeric.Value),
		Owned:        make(map[string]numeric.Value),
		Skills:       make(map[Tree]map[string]int),
		Automation:   make(map[string]bool),
		Features:     make(map[string]bool),
		Unlocked:     make(map[string]bool),
		Achievements: make(map[string]bool),
		Quests:       make(map[string]QuestStatus),
		Settings:     Settings{OfflineProgress: true},
	}
}

// Balance returns the amount held of a currency.
func (s *State) Balance(c Currency) numeric.Value {
	return s.Wallet[c]
}

func (s *State) credit(c Currency, amount numeric.Value) {
	s.Wallet[c] = s.Wallet[c].Add(amount)
}

// debit assumes the caller already checked the balance.
func (s *State) debit(c Currency, amount numeric.Value) {
	s.Wallet[c] = numeric.Max(numeric.Zero, s.Wallet[c].Sub(amount))
}

func (s *State) OwnedCount(key string) numeric.Value {
	return s.Owned[key]
}

// PriceBasis is the count the next unit of o is priced at. Units that yield
// a currency follow the balance held, so spending it lowers their price again.
func (s *State) PriceBasis(o *Ownable) numeric.Value {
	if o.Yields != "" {
		return s.Balance(o.Yields).Floor()
	}
	return s.OwnedCount(o.Key)
}

func (s *State) SkillLevel(tree Tree, id string) int {
	return s.Skills[tree][id]
}

func (s *State) setSkillLevel(tree Tree, id string, level int) {
	if s.Skills[tree] == nil {
		s.Skills[tree] = make(map[string]int)
	}
	s.Skills[tree][id] = level
}

// automationStatus is "locked" until paid for, then "on" or "off".
// A paid unit keeps its map entry while switched off.
func (s *State) automationStatus(key string) string {
	on, paid := s.Automation[key]
	switch {
	case !paid:
		return "locked"
	case on:
		return "on"
	}
	return "off"
}

// clearScope wipes every field whose scope is cleared by a reset of the given tier.
// Permanent state is left alone: a hard reset replaces the whole State instead.
func (s *State) clearScope(c *Catalog, tier Scope) {
	for _, cur := range Currencies {
		if cur.Scope().ClearedBy(tier) {
			delete(s.Wallet, cur)
		}
	}
	for i := range c.Ownables {
		if c.Ownables[i].Scope.ClearedBy(tier) {
			delete(s.Owned, c.Ownables[i].Key)
		}
	}
	for _, tree := range Trees {
		if tree.Scope().ClearedBy(tier) {
			delete(s.Skills, tree)
		}
	}

	s.RunTotal = numeric.Zero
	s.Clicks = numeric.Zero
	s.Automation = make(map[string]bool)
	for key := range s.Quests {
		if q, ok := c.quests[key]; ok && !q.Permanent {
			delete(s.Quests, key)
		}
	}

	if ScopeAscension.ClearedBy(tier) {
		s.AscensionCount = numeric.Zero
		s.AscensionEarned = numeric.Zero
	}
}

// View flattens every field of one scope into comparable strings.
func (s *State) View(c *Catalog, scope Scope) map[string]string {
	out := make(map[string]string)
	for _, cur := range Currencies {
		if cur.Scope() == scope {
			out["wallet:"+string(cur)] = s.Balance(cur).String()
		}
	}
	for _, o := range c.Ownables {
		if o.Scope == scope {
			out["owned:"+o.Key] = s.OwnedCount(o.Key).String()
		}
	}
	for _, n := range c.Skills {
		if n.Tree.Scope() == scope {
			out["skill:"+string(n.Tree)+":"+n.ID] = fmt.Sprint(s.SkillLevel(n.Tree, n.ID))
		}
	}
	for _, q := range c.Quests {
		if (q.Permanent && scope == ScopePermanent) || (!q.Permanent && scope == ScopeRun) {
			out["quest:"+q.Key] = s.Quests[q.Key].String()
		}
	}

	switch scope {
	case ScopeRun:
		out["run_total"] = s.RunTotal.String()
		out["clicks"] = s.Clicks.String()
		for _, o := range c.Ownables {
			if o.Automatable() {
				out["automation:"+o.Key] = s.automationStatus(o.Key)
			}
		}
	case ScopeAscension:
		out["ascension_count"] = s.AscensionCount.String()
		out["ascension_earned"] = s.AscensionEarned.String()
	case ScopePermanent:
		out["prestige_count"] = s.PrestigeCount.String()
		out["achievement_bonus"] = s.AchievementBonus.String()
		out["save_id"] = s.SaveID
		out["setting:offline_progress"] = fmt.Sprint(s.Settings.OfflineProgress)
		for _, a := range c.Achievements {
			out["achievement:"+a.Key] = fmt.Sprint(s.Achievements[a.Key])
		}
		for _, g := range c.Gates {
			out["unlocked:"+g.Key] = fmt.Sprint(s.Unlocked[g.Key])
		}
		for _, f := range c.Features {
			out["feature:"+f.Key] = fmt.Sprint(s.Features[f.Key])
		}
	}
	return out
}

// DefaultCatalog parses the catalog compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalog reads a catalog file. An empty path selects the embedded default.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}

	// 1. Read the YAML file
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	// 2. Decode and validate
	c, err := ParseCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes and validates a catalog document.
// Unknown YAML fields are rejected so that typos surface at startup.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) index() error {
	c.ownables = make(map[string]*Ownable, len(c.Ownables))
	c.features = make(map[string]*Feature, len(c.Features))
	c.skills = make(map[string]*SkillNode, len(c.Skills))
	c.achievements = make(map[string]*Achievement, len(c.Achievements))
	c.quests = make(map[string]*Quest, len(c.Quests))
	c.gates = make(map[string]*Gate, len(c.Gates))

	for i := range c.Ownables {
		o := &c.Ownables[i]
		if _, dup := c.ownables[o.Key]; dup || o.Key == "" {
			return fmt.Errorf("%w: duplicate or empty ownable key %q", ErrUnknownEntity, o.Key)
		}
		c.ownables[o.Key] = o
	}
	for i := range c.Features {
		f := &c.Features[i]
		if _, dup := c.features[f.Key]; dup || f.Key == "" {
			return fmt.Errorf("%w: duplicate or empty feature key %q", ErrUnknownEntity, f.Key)
		}
		c.features[f.Key] = f
	}
	for i := range c.Gates {
		g := &c.Gates[i]
		if _, dup := c.gates[g.Key]; dup || g.Key == "" {
			return fmt.Errorf("%w: duplicate or empty gate key %q", ErrUnknownEntity, g.Key)
		}
		c.gates[g.Key] = g
	}
	for i := range c.Skills {
		n := &c.Skills[i]
		k := skillKey(n.Tree, n.ID)
		if _, dup := c.skills[k]; dup || n.ID == "" {
			return fmt.Errorf("%w: duplicate or empty skill %q", ErrUnknownEntity, k)
		}
		c.skills[k] = n
	}
	for i := range c.Achievements {
		a := &c.Achievements[i]
		if _, dup := c.achievements[a.Key]; dup || a.Key == "" {
			return fmt.Errorf("%w: duplicate or empty achievement key %q", ErrUnknownEntity, a.Key)
		}
		c.achievements[a.Key] = a
	}
	for i := range c.Quests {
		q := &c.Quests[i]
		if _, dup := c.quests[q.Key]; dup || q.Key == "" {
			return fmt.Errorf("%w: duplicate or empty quest key %q", ErrUnknownEntity, q.Key)
		}
		c.quests[q.Key] = q
	}
	return nil
}

func (c *Catalog) validate() error {
	b := c.Balance
	if !b.AscensionThreshold.IsPositive() || !b.PrestigeThreshold.IsPositive() {
		return fmt.Errorf("%w: thresholds must be positive", ErrPreconditionNotMet)
	}
	if _, ok := c.ownables[b.AscensionGate]; !ok {
		return fmt.Errorf("%w: ascension gate %q", ErrUnknownEntity, b.AscensionGate)
	}
	if _, ok := c.ownables[b.PrestigeGate]; !ok {
		return fmt.Errorf("%w: prestige gate %q", ErrUnknownEntity, b.PrestigeGate)
	}
	if _, ok := c.ownables[b.GuaranteedOwnable]; b.GuaranteedOwnable != "" && !ok {
		return fmt.Errorf("%w: guaranteed ownable %q", ErrUnknownEntity, b.GuaranteedOwnable)
	}
	if b.BuyMaxCeiling <= 0 {
		return fmt.Errorf("%w: buy_max_ceiling must be positive", ErrPreconditionNotMet)
	}

	for _, o := range c.Ownables {
		if o.Scope.rank() < 0 {
			return fmt.Errorf("%w: ownable %s: scope %q", ErrUnknownEntity, o.Key, o.Scope)
		}
		if !validCurrency(o.Currency) {
			return fmt.Errorf("%w: ownable %s: currency %q", ErrUnknownEntity, o.Key, o.Currency)
		}
		if !o.BaseCost.IsPositive() || !o.Growth.IsPositive() {
			return fmt.Errorf("%w: ownable %s: base_cost and growth must be positive", ErrPreconditionNotMet, o.Key)
		}
		if _, ok := c.gates[o.Gate]; o.Gate != "" && !ok {
			return fmt.Errorf("%w: ownable %s: gate %q", ErrUnknownEntity, o.Key, o.Gate)
		}
		if _, ok := c.ownables[o.AmplifiedBy]; o.AmplifiedBy != "" && !ok {
			return fmt.Errorf("%w: ownable %s: amplified_by %q", ErrUnknownEntity, o.Key, o.AmplifiedBy)
		}
		for _, n := range append([]EffectName{o.CostEffect, o.OutputEffect, o.AmplifierEffect, o.AmplifierBoost}, o.BoostEffects...) {
			if n != "" && !n.Known() {
				return fmt.Errorf("%w: ownable %s: effect %q", ErrUnknownEntity, o.Key, n)
			}
		}
		if o.Yields != "" && !validCurrency(o.Yields) {
			return fmt.Errorf("%w: ownable %s: yields %q", ErrUnknownEntity, o.Key, o.Yields)
		}
		if o.Grants != nil && !validCurrency(o.Grants.Currency) {
			return fmt.Errorf("%w: ownable %s: grants %q", ErrUnknownEntity, o.Key, o.Grants.Currency)
		}
		if err := c.checkEffects(o.Effects); err != nil {
			return fmt.Errorf("ownable %s: %w", o.Key, err)
		}
		if err := c.checkConditions(o.Requires); err != nil {
			return fmt.Errorf("ownable %s: %w", o.Key, err)
		}
	}

	for _, f := range c.Features {
		if !validCurrency(f.Currency) {
			return fmt.Errorf("%w: feature %s: currency %q", ErrUnknownEntity, f.Key, f.Currency)
		}
	}
	for _, g := range c.Gates {
		if err := c.checkConditions(g.Conditions); err != nil {
			return fmt.Errorf("gate %s: %w", g.Key, err)
		}
	}

	for _, n := range c.Skills {
		if n.Tree.Scope() == ScopeRun && n.Tree != TreeStudies {
			return fmt.Errorf("%w: skill %s: tree %q", ErrUnknownEntity, n.ID, n.Tree)
		}
		if n.MaxLevel < 1 || !n.Cost.IsPositive() {
			return fmt.Errorf("%w: skill %s: max_level and cost must be positive", ErrPreconditionNotMet, n.ID)
		}
		for _, p := range n.Prerequisites {
			if _, ok := c.skills[skillKey(n.Tree, p)]; !ok {
				return fmt.Errorf("%w: skill %s: prerequisite %q", ErrUnknownEntity, n.ID, p)
			}
		}
		if err := c.checkEffects(n.Effects); err != nil {
			return fmt.Errorf("skill %s: %w", n.ID, err)
		}
	}

	for _, a := range c.Achievements {
		if err := c.checkConditions(a.Conditions); err != nil {
			return fmt.Errorf("achievement %s: %w", a.Key, err)
		}
		if err := c.checkReward(a.Reward); err != nil {
			return fmt.Errorf("achievement %s: %w", a.Key, err)
		}
	}
	for _, q := range c.Quests {
		if err := c.checkConditions(q.Conditions); err != nil {
			return fmt.Errorf("quest %s: %w", q.Key, err)
		}
		if err := c.checkReward(q.Reward); err != nil {
			return fmt.Errorf("quest %s: %w", q.Key, err)
		}
	}
	return nil
}

func (c *Catalog) checkEffects(specs []EffectSpec) error {
	for _, e := range specs {
		if !e.Target.Known() {
			return fmt.Errorf("%w: effect target %q", ErrUnknownEntity, e.Target)
		}
		switch e.Op {
		case OpAdd, OpScale, OpMultiply:
		default:
			return fmt.Errorf("%w: effect op %q", ErrUnknownEntity, e.Op)
		}
	}
	return nil
}

func (c *Catalog) checkConditions(conds []Condition) error {
	for _, cond := range conds {
		if !c.knownMetric(cond.Metric) {
			return fmt.Errorf("%w: metric %q", ErrUnknownEntity, cond.Metric)
		}
	}
	return nil
}

func (c *Catalog) checkReward(r Reward) error {
	switch r.Kind {
	case RewardGrant:
		if !validCurrency(r.Currency) {
			return fmt.Errorf("%w: reward currency %q", ErrUnknownEntity, r.Currency)
		}
	case RewardSkillPoints:
		if r.Tree != TreeStudies && r.Tree != TreeAscension && r.Tree != TreePrestige {
			return fmt.Errorf("%w: reward tree %q", ErrUnknownEntity, r.Tree)
		}
	case RewardEffect:
		if r.Effect == nil {
			return fmt.Errorf("%w: effect reward without effect", ErrUnknownEntity)
		}
		return c.checkEffects([]EffectSpec{*r.Effect})
	case RewardBonus:
	default:
		return fmt.Errorf("%w: reward kind %q", ErrUnknownEntity, r.Kind)
	}
	return nil
}

func validCurrency(c Currency) bool {
	for _, known := range Currencies {
		if c == known {
			return true
		}
	}
	return false
}

func skillKey(tree Tree, id string) string {
	return string(tree) + "/" + id
}
