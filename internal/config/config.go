package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"sync"
)

// GameConfig tunes rule variants, bot behaviour and transport knobs.
type GameConfig struct {
	// AllowRedeploy keeps the permissive legacy behaviour where a second deployment resets the owner's pieces.
	AllowRedeploy bool `json:"allow_redeploy"`
	// TickRate is the Nakama match loop frequency (1..60).
	TickRate int `json:"tick_rate"`

	BotsEnabled bool `json:"bots_enabled"`
	// BotMinDelaySeconds and BotMaxDelaySeconds bound how long a bot "thinks" before moving.
	BotMinDelaySeconds int `json:"bot_min_delay_seconds"`
	BotMaxDelaySeconds int `json:"bot_max_delay_seconds"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding a bot to a solo human match.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
	// BotLevel is "easy" (random) or "medium" (greedy).
	BotLevel string `json:"bot_level"`

	// SeatTokenTTLSeconds is the lifetime of minted seat tokens.
	SeatTokenTTLSeconds int `json:"seat_token_ttl_seconds"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// Default returns the configuration used when no file is present.
func Default() GameConfig {
	return GameConfig{
		TickRate:                5,
		BotMinDelaySeconds:      1,
		BotMaxDelaySeconds:      3,
		BotAutoFillDelaySeconds: 10,
		BotLevel:                "medium",
		SeatTokenTTLSeconds:     3600,
	}
}

// LoadGameConfig loads the game configuration from the given path.
// A missing file leaves the defaults in place.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		c := Default()
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				cfg = &c
				return
			}
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		parsed, err := Parse(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = &parsed
	})
	return loadErr
}

// Parse decodes a JSON config on top of the defaults and normalizes it.
func Parse(data []byte) (GameConfig, error) {
	c := Default()
	if err := json.Unmarshal(data, &c); err != nil {
		return GameConfig{}, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	c.normalize()
	return c, nil
}

// GetGameConfig returns the global game configuration, or the defaults if none was loaded.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return Default()
	}
	return *cfg
}

// ApplyEnv overrides fields from string key/value pairs, such as the Nakama
// runtime env. Unparseable values are ignored.
func (c *GameConfig) ApplyEnv(env map[string]string) {
	setBool := func(key string, dst *bool) {
		if v, ok := env[key]; ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok := env[key]; ok {
			if i, err := strconv.Atoi(v); err == nil {
				*dst = i
			}
		}
	}

	if v, ok := env["gridduel_bot_level"]; ok && v != "" {
		c.BotLevel = v
	}
	setBool("gridduel_allow_redeploy", &c.AllowRedeploy)
	setBool("gridduel_bots_enabled", &c.BotsEnabled)
	setInt("gridduel_tick_rate", &c.TickRate)
	setInt("gridduel_bot_min_delay_sec", &c.BotMinDelaySeconds)
	setInt("gridduel_bot_max_delay_sec", &c.BotMaxDelaySeconds)
	setInt("gridduel_bot_auto_fill_delay_sec", &c.BotAutoFillDelaySeconds)
	setInt("gridduel_seat_token_ttl_sec", &c.SeatTokenTTLSeconds)
	c.normalize()
}

func (c *GameConfig) normalize() {
	d := Default()
	if c.TickRate < 1 || c.TickRate > 60 {
		c.TickRate = d.TickRate
	}
	if c.BotMinDelaySeconds <= 0 {
		c.BotMinDelaySeconds = d.BotMinDelaySeconds
	}
	if c.BotMaxDelaySeconds < c.BotMinDelaySeconds {
		c.BotMaxDelaySeconds = c.BotMinDelaySeconds
	}
	if c.BotAutoFillDelaySeconds < 0 {
		c.BotAutoFillDelaySeconds = d.BotAutoFillDelaySeconds
	}
	if c.BotLevel == "" {
		c.BotLevel = d.BotLevel
	}
	if c.SeatTokenTTLSeconds <= 0 {
		c.SeatTokenTTLSeconds = d.SeatTokenTTLSeconds
	}
}
