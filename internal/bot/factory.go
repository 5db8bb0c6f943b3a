package bot

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// BotLevel selects a strategy.
type BotLevel int

const (
	BotLevelEasy BotLevel = iota + 1
	BotLevelMedium
)

// ParseLevel maps a config string to a level; unknown values mean medium.
func ParseLevel(s string) BotLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "random":
		return BotLevelEasy
	default:
		return BotLevelMedium
	}
}

// NewBrain creates a new AI brain based on the specified level.
// rng may be nil to use a time-seeded source.
func NewBrain(level BotLevel, rng *rand.Rand) (Brain, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	switch level {
	case BotLevelEasy:
		return &RandomBrain{rng: rng}, nil
	case BotLevelMedium:
		return &GreedyBrain{rng: rng, tuning: DefaultTuning}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}

// NewAgent creates an agent with a fresh identity.
func NewAgent(level BotLevel, rng *rand.Rand) (*Agent, error) {
	brain, err := NewBrain(level, rng)
	if err != nil {
		return nil, err
	}
	id := NewIdentity()
	return &Agent{ID: id.UserID, Name: id.DisplayName, Brain: brain}, nil
}
