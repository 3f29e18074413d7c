// Package config resolves runtime settings from defaults, an optional TOML
// file and CHORESD_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	FileName = "config.toml"
	dirName  = ".choresd"
)

// Duration is a time.Duration that reads and writes as "24h", "90s" and so on.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", string(b), err)
	}
	d.Duration = v
	return nil
}

type Notifications struct {
	Cap     int  `toml:"cap"`
	BaseID  int  `toml:"base_id"`
	Desktop bool `toml:"desktop"`
}

type Scheduler struct {
	Interval       Duration `toml:"interval"`
	MaxRetries     int      `toml:"max_retries"`
	BaseRetryDelay Duration `toml:"base_retry_delay"`
	MaxRetryDelay  Duration `toml:"max_retry_delay"`
}

type Config struct {
	DBPath        string        `toml:"db_path"`
	LogLevel      string        `toml:"log_level"`
	LogFile       string        `toml:"log_file"`
	Notifications Notifications `toml:"notifications"`
	Scheduler     Scheduler     `toml:"scheduler"`
}

// Dir returns ~/.choresd, or a relative .choresd when the home directory is
// unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return dirName
	}
	return filepath.Join(home, dirName)
}

func DefaultPath() string {
	return filepath.Join(Dir(), FileName)
}

func Default() Config {
	dir := Dir()
	return Config{
		DBPath:   filepath.Join(dir, "choresd.db"),
		LogLevel: "info",
		LogFile:  filepath.Join(dir, "choresd.log"),
		Notifications: Notifications{
			Cap:     5,
			BaseID:  100,
			Desktop: true,
		},
		Scheduler: Scheduler{
			Interval:       Duration{24 * time.Hour},
			MaxRetries:     3,
			BaseRetryDelay: Duration{30 * time.Second},
			MaxRetryDelay:  Duration{10 * time.Minute},
		},
	}
}

// LoadFile decodes path over base. Keys absent from the file keep their base
// value.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}
	cfg := base
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve builds the effective configuration. An explicit path must exist;
// the default path is optional.
func Resolve(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	loaded, err := LoadFile(path, cfg)
	switch {
	case err == nil:
		cfg = loaded
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, err
	}
	cfg = FromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv applies CHORESD_* overrides. Unparseable values are ignored.
func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvString("CHORESD_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := getEnvString("CHORESD_LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := getEnvString("CHORESD_LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := getEnvBool("CHORESD_DESKTOP_NOTIFICATIONS"); ok {
		cfg.Notifications.Desktop = v
	}
	if v, ok := getEnvInt("CHORESD_NOTIFY_CAP"); ok && v > 0 {
		cfg.Notifications.Cap = v
	}
	if v, ok := getEnvDuration("CHORESD_INTERVAL"); ok && v > 0 {
		cfg.Scheduler.Interval = Duration{v}
	}
	if v, ok := getEnvInt("CHORESD_MAX_RETRIES"); ok && v >= 0 {
		cfg.Scheduler.MaxRetries = v
	}
	return cfg
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("config: db_path is required"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("config: unknown log_level %q", c.LogLevel))
	}
	if c.Notifications.Cap < 1 {
		errs = append(errs, errors.New("config: notifications.cap must be at least 1"))
	}
	if c.Notifications.BaseID < 0 {
		errs = append(errs, errors.New("config: notifications.base_id must not be negative"))
	}
	if c.Scheduler.Interval.Duration <= 0 {
		errs = append(errs, errors.New("config: scheduler.interval must be positive"))
	}
	if c.Scheduler.MaxRetries < 0 {
		errs = append(errs, errors.New("config: scheduler.max_retries must not be negative"))
	}
	if c.Scheduler.MaxRetryDelay.Duration < c.Scheduler.BaseRetryDelay.Duration {
		errs = append(errs, errors.New("config: scheduler.max_retry_delay must be at least base_retry_delay"))
	}
	return errors.Join(errs...)
}

// Encode renders c as TOML.
func Encode(c Config) ([]byte, error) {
	return toml.Marshal(c)
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	switch raw {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}

func getEnvDuration(name string) (time.Duration, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
