// Package settings owns the user preferences file: session key, demo mode, refresh
// interval and a few connection knobs. The file is YAML under the XDG config dir.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/janekbaraniewski/usagebar/internal/claudeweb"
	"github.com/janekbaraniewski/usagebar/internal/poller"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	appName = "usagebar"

	KeySessionKey      = "session-key"
	KeyDemoMode        = "demo-mode"
	KeyRefreshInterval = "refresh-interval"
	KeyBaseURL         = "base-url"
	KeyRequestTimeout  = "request-timeout-seconds"
	KeyHistory         = "history"

	MinRefreshMinutes     = 1
	MaxRefreshMinutes     = 60
	DefaultRefreshMinutes = 5

	SessionKeyHelp = "Open claude.ai in your browser, open the developer tools, and copy " +
		"the value of the sessionKey cookie under Storage > Cookies > https://claude.ai."
)

type Settings struct {
	SessionKey            string `mapstructure:"session-key" yaml:"session-key"`
	DemoMode              bool   `mapstructure:"demo-mode" yaml:"demo-mode"`
	RefreshInterval       int    `mapstructure:"refresh-interval" yaml:"refresh-interval"`
	BaseURL               string `mapstructure:"base-url" yaml:"base-url"`
	RequestTimeoutSeconds int    `mapstructure:"request-timeout-seconds" yaml:"request-timeout-seconds"`
	History               bool   `mapstructure:"history" yaml:"history"`
}

func DefaultSettings() Settings {
	return Settings{
		RefreshInterval:       DefaultRefreshMinutes,
		BaseURL:               claudeweb.DefaultBaseURL,
		RequestTimeoutSeconds: int(claudeweb.DefaultRequestTimeout / time.Second),
		History:               true,
	}
}

func Dir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

func Path() string {
	return filepath.Join(Dir(), "settings.yaml")
}

// HistoryPath is where the usage history database lives.
func HistoryPath() string {
	return filepath.Join(xdg.DataHome, appName, "history.db")
}

// LogPath is the log file used while the terminal UI owns stdout and stderr.
func LogPath() string {
	return filepath.Join(xdg.StateHome, appName, appName+".log")
}

func Load() (Settings, error) {
	return LoadFrom(Path())
}

// LoadFrom reads path on top of the defaults. A missing file is not an error.
// USAGEBAR_SESSION_KEY, USAGEBAR_DEMO_MODE and USAGEBAR_REFRESH_INTERVAL override the file.
func LoadFrom(path string) (Settings, error) {
	def := DefaultSettings()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault(KeySessionKey, def.SessionKey)
	v.SetDefault(KeyDemoMode, def.DemoMode)
	v.SetDefault(KeyRefreshInterval, def.RefreshInterval)
	v.SetDefault(KeyBaseURL, def.BaseURL)
	v.SetDefault(KeyRequestTimeout, def.RequestTimeoutSeconds)
	v.SetDefault(KeyHistory, def.History)

	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for _, key := range []string{KeySessionKey, KeyDemoMode, KeyRefreshInterval} {
		if err := v.BindEnv(key); err != nil {
			return def, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return def, fmt.Errorf("reading settings %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return def, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return s.normalized(), nil
}

func (s Settings) normalized() Settings {
	s.SessionKey = strings.TrimSpace(s.SessionKey)
	s.RefreshInterval = ClampInterval(s.RefreshInterval)
	s.BaseURL = strings.TrimSpace(s.BaseURL)
	if s.BaseURL == "" {
		s.BaseURL = claudeweb.DefaultBaseURL
	}
	if s.RequestTimeoutSeconds <= 0 {
		s.RequestTimeoutSeconds = DefaultSettings().RequestTimeoutSeconds
	}
	return s
}

// ClampInterval keeps a refresh interval in whole minutes within 1..60. Zero or a
// negative value means "unset" and yields the default.
func ClampInterval(minutes int) int {
	if minutes <= 0 {
		return DefaultRefreshMinutes
	}
	return lo.Clamp(minutes, MinRefreshMinutes, MaxRefreshMinutes)
}

// PollerConfig is the part of the settings the refresh loop reacts to.
func (s Settings) PollerConfig() poller.Config {
	return poller.Config{
		SessionKey: s.SessionKey,
		DemoMode:   s.DemoMode,
		Interval:   time.Duration(ClampInterval(s.RefreshInterval)) * time.Minute,
	}
}

func (s Settings) ClientOptions() claudeweb.Options {
	return claudeweb.Options{
		BaseURL: s.BaseURL,
		Timeout: time.Duration(s.RequestTimeoutSeconds) * time.Second,
	}
}

// saveMu guards read-modify-write cycles on the settings file.
var saveMu sync.Mutex

func Save(s Settings) error {
	return SaveTo(Path(), s)
}

func SaveTo(path string, s Settings) error {
	saveMu.Lock()
	defer saveMu.Unlock()
	return write(path, s)
}

// Update applies fn to the settings stored at path and writes the result back.
func Update(path string, fn func(*Settings)) (Settings, error) {
	saveMu.Lock()
	defer saveMu.Unlock()

	s, err := readFile(path)
	if err != nil {
		return s, err
	}
	fn(&s)
	s = s.normalized()
	if err := write(path, s); err != nil {
		return s, err
	}
	return s, nil
}

// readFile loads the file without environment overrides so Update never persists an
// override into the file.
func readFile(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("reading settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return s.normalized(), nil
}

func write(path string, s Settings) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}

	data, err := yaml.Marshal(s.normalized())
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// Redacted returns a copy safe to print: the session key is reduced to its last four
// characters.
func (s Settings) Redacted() Settings {
	if s.SessionKey == "" {
		return s
	}
	if len(s.SessionKey) <= 8 {
		s.SessionKey = "****"
		return s
	}
	s.SessionKey = "****" + s.SessionKey[len(s.SessionKey)-4:]
	return s
}
