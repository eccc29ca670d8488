// Package config loads the controller configuration from TOML or YAML files
// over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Backend names.
const (
	NVRAMFile   = "file"
	NVRAMSQLite = "sqlite"
	NVRAMMemory = "memory"

	DecoderSpeaker = "speaker"
	DecoderNull    = "null"
)

type Config struct {
	Media    MediaConfig    `koanf:"media"`
	Playback PlaybackConfig `koanf:"playback"`
	Volume   VolumeConfig   `koanf:"volume"`
	NVRAM    NVRAMConfig    `koanf:"nvram"`
	Decoder  DecoderConfig  `koanf:"decoder"`
	Notify   NotifyConfig   `koanf:"notify"`
	Log      LogConfig      `koanf:"log"`
	MPRIS    MPRISConfig    `koanf:"mpris"`
}

// MediaConfig describes the storage medium.
type MediaConfig struct {
	Dir        string        `koanf:"dir"`         // directory presented as the card root
	Extensions []string      `koanf:"extensions"`  // playable 8.3 extensions
	MaxTracks  int           `koanf:"max_tracks"`  // catalog capacity (1-255)
	Watch      bool          `koanf:"watch"`       // rescan when the directory changes
	WatchDelay time.Duration `koanf:"watch_delay"` // quiet period before a rescan
}

type PlaybackConfig struct {
	ChunkSize int           `koanf:"chunk_size"` // bytes per tick
	Repeat    bool          `koanf:"repeat"`
	IdleTick  time.Duration `koanf:"idle_tick"` // loop period while idle
}

// VolumeConfig holds the default volume and the percent to level curve.
type VolumeConfig struct {
	Default  int     `koanf:"default"` // percent used on first boot
	Base     float64 `koanf:"base"`
	Scale    float64 `koanf:"scale"`
	MaxLevel int     `koanf:"max_level"`
}

type NVRAMConfig struct {
	Backend string `koanf:"backend"` // "file", "sqlite" or "memory"
	Path    string `koanf:"path"`    // empty means the XDG data dir
	Size    int    `koanf:"size"`    // bytes
}

type DecoderConfig struct {
	Backend    string        `koanf:"backend"` // "speaker" or "null"
	SampleRate int           `koanf:"sample_rate"`
	Buffer     time.Duration `koanf:"buffer"`
	NullRate   int           `koanf:"null_rate"` // bytes/s the null decoder drains, 0 = unthrottled
}

type NotifyConfig struct {
	Stdout  bool `koanf:"stdout"`  // JSON lines on stdout
	Desktop bool `koanf:"desktop"` // now-playing desktop notifications
}

type LogConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error
}

type MPRISConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Media: MediaConfig{
			Dir:        ".",
			Extensions: []string{"MP3", "WAV"},
			MaxTracks:  30,
			Watch:      true,
			WatchDelay: 500 * time.Millisecond,
		},
		Playback: PlaybackConfig{
			ChunkSize: 256,
			Repeat:    true,
			IdleTick:  50 * time.Millisecond,
		},
		Volume: VolumeConfig{
			Default:  62,
			Base:     2.718281828459045,
			Scale:    93.8,
			MaxLevel: 254,
		},
		NVRAM: NVRAMConfig{
			Backend: NVRAMFile,
			Size:    1024,
		},
		Decoder: DecoderConfig{
			Backend:    DecoderSpeaker,
			SampleRate: 44100,
			Buffer:     100 * time.Millisecond,
			NullRate:   16000,
		},
		Notify: NotifyConfig{Stdout: true},
		Log:    LogConfig{Level: "info"},
		MPRIS:  MPRISConfig{Enabled: true},
	}
}

// Load reads the configuration. With an explicit path only that file is
// read; otherwise the user and working directory config.toml files are
// merged, last wins.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := loadFile(k, expandPath(path)); err != nil {
			return nil, err
		}
	} else {
		for _, p := range getConfigPaths() {
			if _, err := os.Stat(p); err == nil {
				if err := loadFile(k, p); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Media.Dir = expandPath(cfg.Media.Dir)
	cfg.NVRAM.Path = expandPath(cfg.NVRAM.Path)
	cfg.NVRAM.Backend = strings.ToLower(cfg.NVRAM.Backend)
	cfg.Decoder.Backend = strings.ToLower(cfg.Decoder.Backend)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	var parser koanf.Parser = toml.Parser()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/sdjuke/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "sdjuke", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// Validate checks value ranges and backend names.
func (c *Config) Validate() error {
	var errs []error
	if c.Media.MaxTracks < 1 || c.Media.MaxTracks > 255 {
		errs = append(errs, fmt.Errorf("media.max_tracks %d not in [1, 255]", c.Media.MaxTracks))
	}
	if c.Playback.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("playback.chunk_size must be positive, got %d", c.Playback.ChunkSize))
	}
	if c.Volume.Default < 0 || c.Volume.Default > 100 {
		errs = append(errs, fmt.Errorf("volume.default %d not in [0, 100]", c.Volume.Default))
	}
	switch c.NVRAM.Backend {
	case NVRAMFile, NVRAMSQLite, NVRAMMemory:
	default:
		errs = append(errs, fmt.Errorf("nvram.backend %q unknown", c.NVRAM.Backend))
	}
	switch c.Decoder.Backend {
	case DecoderSpeaker, DecoderNull:
	default:
		errs = append(errs, fmt.Errorf("decoder.backend %q unknown", c.Decoder.Backend))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	l, _ := parseLevel(c.Log.Level)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}
