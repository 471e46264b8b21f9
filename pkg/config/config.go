package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// Default file names under the app's config directory.
const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "review.sqlite"
	DefaultLogName        = "review.log"
)

// Timer holds the defaults for the study timer.
type Timer struct {
	WorkMinutes      int `toml:"work_minutes"`
	BreakMinutes     int `toml:"break_minutes"`
	LongBreakMinutes int `toml:"long_break_minutes"`
	Cycles           int `toml:"cycles"`
	CountdownMinutes int `toml:"countdown_minutes"`
}

// Config is the on-disk configuration for the tracker.
type Config struct {
	DBPath   string `toml:"db_path"`
	LogPath  string `toml:"log_path"`
	Timezone string `toml:"timezone"`
	Timer    Timer  `toml:"timer"`
}

// Dir returns the tracker's config directory, creating it if needed.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("error resolving user config dir: %w", err)
	}

	dir := filepath.Join(base, "review-tracker")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating config dir: %w", err)
	}

	return dir, nil
}

// LoadOrCreate reads the config at path, writing the defaults there first if
// no file exists yet.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig(filepath.Dir(path))

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}

		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("error reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(path), DefaultDBName)
	}

	if cfg.LogPath == "" {
		cfg.LogPath = filepath.Join(filepath.Dir(path), DefaultLogName)
	}

	cfg.Timer = clampTimer(cfg.Timer)

	return cfg, nil
}

// clampTimer swaps non-positive timer values for the defaults. The timer math
// divides by Cycles and multiplies the minutes, so a hand-edited zero must
// never get through.
func clampTimer(t Timer) Timer {
	def := defaultConfig("").Timer

	if t.WorkMinutes < 1 {
		t.WorkMinutes = def.WorkMinutes
	}

	if t.BreakMinutes < 1 {
		t.BreakMinutes = def.BreakMinutes
	}

	if t.LongBreakMinutes < 1 {
		t.LongBreakMinutes = def.LongBreakMinutes
	}

	if t.Cycles < 1 {
		t.Cycles = def.Cycles
	}

	if t.CountdownMinutes < 1 {
		t.CountdownMinutes = def.CountdownMinutes
	}

	return t
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}

	return nil
}

func defaultConfig(dir string) Config {
	return Config{
		DBPath:   filepath.Join(dir, DefaultDBName),
		LogPath:  filepath.Join(dir, DefaultLogName),
		Timezone: "Asia/Tokyo",
		Timer: Timer{
			WorkMinutes:      25,
			BreakMinutes:     5,
			LongBreakMinutes: 15,
			Cycles:           4,
			CountdownMinutes: 30,
		},
	}
}
