package playereconomy

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/levely/playereconomy/migration"
	"github.com/levely/playereconomy/store"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	cfg := DefaultConfig()
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log     LogConfig        `toml:"log"`
	Economy EconomyConfig    `toml:"economy"`
	DB      store.DBConfig   `toml:"db"`
	Legacy  migration.Config `toml:"legacy"`
}

type LogConfig struct {
	Level slog.Level `toml:"level"`
}

type EconomyConfig struct {
	// Economies is the list of active economy names; operations against any
	// other name fail.
	Economies []string `toml:"economies"`

	// MaxBalance is the per-cell ceiling as a decimal string. Empty or "0"
	// disables it.
	MaxBalance string `toml:"max_balance"`

	// TimeZone resolves period bucket boundaries (IANA name). Empty means
	// the host's local zone.
	TimeZone string `toml:"time_zone"`

	// AsyncEvents moves listener dispatch off the mutation path.
	AsyncEvents    bool `toml:"async_events"`
	EventQueueSize int  `toml:"event_queue_size"`
}

// Persist reports whether a persistence backend is configured.
func (c *Config) Persist() bool {
	return c.DB.Host != ""
}

func DefaultConfig() Config {
	return Config{
		Log: LogConfig{Level: slog.LevelInfo},
		Economy: EconomyConfig{
			Economies:      []string{"coins"},
			MaxBalance:     "1000000000",
			EventQueueSize: 256,
		},
	}
}
