/*
Package api
File: intents.go
Description:
    Player intents shared by the REST endpoints and the WebSocket channel.
    Both transports decode into Intent and hand it to apply, so a click
    over HTTP and a click over the socket run exactly the same code.
*/

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/everforgeworks/study-ascension/internal/game"
)

// Intent types.
const (
	IntentClick            = "click"
	IntentBuy              = "buy"
	IntentToggleAutomation = "toggle_automation"
	IntentUnlockFeature    = "unlock_feature"
	IntentLevelSkill       = "level_skill"
	IntentResetSkills      = "reset_skills"
	IntentReset            = "reset"
	IntentClaimQuest       = "claim_quest"
	IntentSettings         = "settings"
	IntentState            = "state"
)

// Reset tiers accepted by IntentReset.
const (
	TierAscension = "ascension"
	TierPrestige  = "prestige"
	TierHard      = "hard"
)

// ErrBadIntent marks a request the server could not make sense of.
var ErrBadIntent = errors.New("bad intent")

// Intent is one player action. Only the fields its Type needs are read.
type Intent struct {
	Type     string `json:"type"`
	Key      string `json:"key,omitempty"`      // ownable, feature or quest key
	Quantity string `json:"quantity,omitempty"` // "1", "10", "100" or "max"
	Tree     string `json:"tree,omitempty"`
	ID       string `json:"id,omitempty"` // skill node id
	Tier     string `json:"tier,omitempty"`
	Enabled  *bool  `json:"enabled,omitempty"`
	Confirm  bool   `json:"confirm,omitempty"` // required for a hard reset
}

// Result is what an intent answers with.
type Result struct {
	Intent string    `json:"intent"`
	Value  any       `json:"value,omitempty"`
	State  game.View `json:"state"`
}

// apply runs one intent against the engine.
func (s *Server) apply(ctx context.Context, in Intent) (Result, error) {
	var (
		value any
		err   error
	)

	switch in.Type {
	case IntentState:
	case IntentClick:
		value = s.engine.Click()

	case IntentBuy:
		var q game.Quantity
		if q, err = game.ParseQuantity(in.Quantity); err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrBadIntent, err)
		}
		value, err = s.engine.Buy(in.Key, q)

	case IntentToggleAutomation:
		value, err = s.engine.ToggleAutomation(in.Key)

	case IntentUnlockFeature:
		err = s.engine.UnlockFeature(in.Key)

	case IntentLevelSkill:
		var tree game.Tree
		if tree, err = game.ParseTree(in.Tree); err == nil {
			value, err = s.engine.LevelSkill(tree, in.ID)
		}

	case IntentResetSkills:
		var tree game.Tree
		if tree, err = game.ParseTree(in.Tree); err == nil {
			value, err = s.engine.ResetSkills(tree)
		}

	case IntentReset:
		switch in.Tier {
		case TierAscension:
			value, err = s.engine.Ascend()
		case TierPrestige:
			value, err = s.engine.Prestige()
		case TierHard:
			if !in.Confirm {
				return Result{}, fmt.Errorf("%w: hard reset needs confirm", ErrBadIntent)
			}
			err = s.engine.HardReset(ctx)
		default:
			return Result{}, fmt.Errorf("%w: reset tier %q", ErrBadIntent, in.Tier)
		}

	case IntentClaimQuest:
		err = s.engine.ClaimQuest(in.Key)

	case IntentSettings:
		if in.Enabled == nil {
			return Result{}, fmt.Errorf("%w: settings needs enabled", ErrBadIntent)
		}
		s.engine.SetOfflineProgress(*in.Enabled)
		value = *in.Enabled

	default:
		return Result{}, fmt.Errorf("%w: unknown type %q", ErrBadIntent, in.Type)
	}

	if err != nil {
		return Result{}, err
	}
	return Result{Intent: in.Type, Value: value, State: s.engine.View()}, nil
}

// statusFor maps an engine error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadIntent):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrInsufficientResources):
		return http.StatusPaymentRequired
	case errors.Is(err, game.ErrPreconditionNotMet):
		return http.StatusForbidden
	case errors.Is(err, game.ErrUnknownEntity):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
