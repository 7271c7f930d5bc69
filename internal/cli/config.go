package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config is the local configuration of deadlinectl.
type Config struct {
	Path      string // diskv directory for preferences and dismissals
	Events    string // JSON file with the user's events
	TimeZone  string
	User      string
	LogLevel  string
	Notify    bool // desktop notifications
	ScanEvery string
}

// LoadConfig reads .deadlinectl.yaml from DEADLINECTL_CONFIG_PATH or the working
// directory. DEADLINECTL_* environment variables override the file.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetDefault("path", "~/.deadlinectl.db")
	v.SetDefault("events", "~/.deadlinectl.events.json")
	v.SetDefault("timezone", "")
	v.SetDefault("user", "me")
	v.SetDefault("log_level", "warn")
	v.SetDefault("notify", true)
	v.SetDefault("scan_every", "@every 1m")
	v.SetConfigName(".deadlinectl") // .yaml is implicit
	v.SetEnvPrefix("DEADLINECTL")
	v.AutomaticEnv()

	if override := os.Getenv("DEADLINECTL_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("error expanding store path: %w", err)
	}
	events, err := homedir.Expand(v.GetString("events"))
	if err != nil {
		return nil, fmt.Errorf("error expanding events path: %w", err)
	}

	return &Config{
		Path:      path,
		Events:    events,
		TimeZone:  v.GetString("timezone"),
		User:      v.GetString("user"),
		LogLevel:  v.GetString("log_level"),
		Notify:    v.GetBool("notify"),
		ScanEvery: v.GetString("scan_every"),
	}, nil
}
