package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matt-steen/review-tracker/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := config.LoadOrCreate(path)
	assert.Nil(err)
	assert.Equal(25, cfg.Timer.WorkMinutes)
	assert.Equal("Asia/Tokyo", cfg.Timezone)
	assert.FileExists(path)

	// a second load reads the file it just wrote
	again, err := config.LoadOrCreate(path)
	assert.Nil(err)
	assert.Equal(cfg, again)
}

func TestLoadOrCreateReadsExisting(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := "db_path = \"/tmp/custom.sqlite\"\ntimezone = \"UTC\"\n\n[timer]\nwork_minutes = 50\n"
	assert.Nil(os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.LoadOrCreate(path)
	assert.Nil(err)
	assert.Equal("/tmp/custom.sqlite", cfg.DBPath)
	assert.Equal("UTC", cfg.Timezone)
	assert.Equal(50, cfg.Timer.WorkMinutes)

	// unset paths fall back next to the config file
	assert.Equal(filepath.Join(filepath.Dir(path), config.DefaultLogName), cfg.LogPath)
}

func TestLoadOrCreateClampsTimer(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[timer]\nwork_minutes = 50\ncycles = 0\nbreak_minutes = -5\n"
	assert.Nil(os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.LoadOrCreate(path)
	assert.Nil(err)

	// explicit positive values survive, zero and negative fall back
	assert.Equal(50, cfg.Timer.WorkMinutes)
	assert.Equal(4, cfg.Timer.Cycles)
	assert.Equal(5, cfg.Timer.BreakMinutes)
	assert.Equal(15, cfg.Timer.LongBreakMinutes)
	assert.Equal(30, cfg.Timer.CountdownMinutes)
}

func TestLoadOrCreateBadToml(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	assert.Nil(os.WriteFile(path, []byte("not [valid toml"), 0o644))

	_, err := config.LoadOrCreate(path)
	assert.NotNil(err)
}
