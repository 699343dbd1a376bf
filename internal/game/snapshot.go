/*
Package game
File: snapshot.go
Description:
    Save blob encoding. A snapshot is the full State as JSON with every
    number written as a decimal string.
*/

package game

import (
	"encoding/json"
	"fmt"

	"github.com/everforgeworks/study-ascension/internal/numeric"
	"github.com/google/uuid"
)

// SnapshotVersion is written into every save. Older saves decode as long
// as their fields keep their names; fields they lack take NewState defaults.
const SnapshotVersion = 1

// EncodeSnapshot serializes the complete state. Numeric values are written
// as decimal strings so that no magnitude loses precision.
func EncodeSnapshot(s *State) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: encode snapshot: %v", ErrPersistence, err)
	}
	return data, nil
}

// DecodeSnapshot restores a state written by EncodeSnapshot.
func DecodeSnapshot(data []byte) (*State, error) {
	s := NewState()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%w: decode snapshot: %v", ErrPersistence, err)
	}
	if s.Version > SnapshotVersion {
		return nil, fmt.Errorf("%w: snapshot version %d is newer than %d", ErrPersistence, s.Version, SnapshotVersion)
	}
	s.Version = SnapshotVersion
	s.normalize()
	return s, nil
}

// normalize replaces explicit nulls with empty values.
func (s *State) normalize() {
	if s.SaveID == "" {
		s.SaveID = uuid.NewString()
	}
	if s.Wallet == nil {
		s.Wallet = make(map[Currency]numeric.Value)
	}
	if s.Owned == nil {
		s.Owned = make(map[string]numeric.Value)
	}
	if s.Skills == nil {
		s.Skills = make(map[Tree]map[string]int)
	}
	if s.Automation == nil {
		s.Automation = make(map[string]bool)
	}
	if s.Features == nil {
		s.Features = make(map[string]bool)
	}
	if s.Unlocked == nil {
		s.Unlocked = make(map[string]bool)
	}
	if s.Achievements == nil {
		s.Achievements = make(map[string]bool)
	}
	if s.Quests == nil {
		s.Quests = make(map[string]QuestStatus)
	}
}
