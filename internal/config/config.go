package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	AppName               = "kuse"
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "kuse.db"
	DefaultLogName        = "kuse.log"
	DefaultLogLevel       = "info"
	DefaultTheme          = "light"
)

type Keymap struct {
	Quit    string `toml:"quit"`
	Add     string `toml:"add"`
	Up      string `toml:"up"`
	Down    string `toml:"down"`
	Toggle  string `toml:"toggle"`
	Delete  string `toml:"delete"`
	Detail  string `toml:"detail"`
	Confirm string `toml:"confirm"`
	Cancel  string `toml:"cancel"`
	Switch  string `toml:"switch"`
	Grid    string `toml:"grid"`
	CheckIn string `toml:"check_in"`
	Help    string `toml:"help"`

	// Extra keys for moving inside the heatmap grid. Arrow keys, home and
	// end always work.
	GridLeft  string `toml:"grid_left"`
	GridRight string `toml:"grid_right"`
	GridUp    string `toml:"grid_up"`
	GridDown  string `toml:"grid_down"`
}

type Config struct {
	DBPath   string `toml:"db_path"`
	LogPath  string `toml:"log_path"`
	LogLevel string `toml:"log_level"`
	Theme    string `toml:"theme"`
	Keys     Keymap `toml:"keys"`
}

// envOverrides are read from the environment and win over the file.
type envOverrides struct {
	DBPath   string `env:"KUSE_DB_PATH"`
	LogPath  string `env:"KUSE_LOG_PATH"`
	LogLevel string `env:"KUSE_LOG_LEVEL"`
	Theme    string `env:"KUSE_THEME"`
}

// ResolveConfigPath returns $KUSE_CONFIG, or config.toml inside the user
// config directory, or config.toml in the working directory as a last resort.
func ResolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv("KUSE_CONFIG")); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, AppName, DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing the defaults there first if
// the file does not exist. Relative db and log paths are resolved against
// the config file's directory.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.normalize(filepath.Dir(path))
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return err
	}
	if o.DBPath != "" {
		cfg.DBPath = o.DBPath
	}
	if o.LogPath != "" {
		cfg.LogPath = o.LogPath
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.Theme != "" {
		cfg.Theme = o.Theme
	}
	return nil
}

func (c *Config) normalize(baseDir string) {
	if strings.TrimSpace(c.DBPath) == "" {
		c.DBPath = DefaultDBName
	}
	c.DBPath = resolvePath(baseDir, c.DBPath)
	if c.LogPath != "" {
		c.LogPath = resolvePath(baseDir, c.LogPath)
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	if c.Theme != "light" && c.Theme != "dark" {
		c.Theme = DefaultTheme
	}
	c.Keys.fillDefaults(defaultKeymap())
}

func resolvePath(baseDir, p string) string {
	if strings.HasPrefix(p, "file:") || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

// fillDefaults restores bindings left empty in the file.
func (k *Keymap) fillDefaults(d Keymap) {
	fields := []struct {
		dst *string
		def string
	}{
		{&k.Quit, d.Quit}, {&k.Add, d.Add}, {&k.Up, d.Up}, {&k.Down, d.Down},
		{&k.Toggle, d.Toggle}, {&k.Delete, d.Delete}, {&k.Detail, d.Detail},
		{&k.Confirm, d.Confirm}, {&k.Cancel, d.Cancel}, {&k.Switch, d.Switch},
		{&k.Grid, d.Grid}, {&k.CheckIn, d.CheckIn}, {&k.Help, d.Help},
		{&k.GridLeft, d.GridLeft}, {&k.GridRight, d.GridRight},
		{&k.GridUp, d.GridUp}, {&k.GridDown, d.GridDown},
	}
	for _, f := range fields {
		if *f.dst == "" {
			*f.dst = f.def
		}
	}
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DBPath:   DefaultDBName,
		LogPath:  DefaultLogName,
		LogLevel: DefaultLogLevel,
		Theme:    DefaultTheme,
		Keys:     defaultKeymap(),
	}
}

func defaultKeymap() Keymap {
	return Keymap{
		Quit:      "q",
		Add:       "a",
		Up:        "k",
		Down:      "j",
		Toggle:    " ",
		Delete:    "d",
		Detail:    "enter",
		Confirm:   "enter",
		Cancel:    "esc",
		Switch:    "tab",
		Grid:      "g",
		CheckIn:   "c",
		Help:      "?",
		GridLeft:  "h",
		GridRight: "l",
		GridUp:    "k",
		GridDown:  "j",
	}
}
