package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	RawCSVPath       string `mapstructure:"raw_csv_path" yaml:"raw_csv_path"`
	CleanedCSVPath   string `mapstructure:"cleaned_csv_path" yaml:"cleaned_csv_path"`
	CacheDir         string `mapstructure:"cache_dir" yaml:"cache_dir"`
	CacheMaxAgeHours int    `mapstructure:"cache_max_age_hours" yaml:"cache_max_age_hours"`

	// HTTP server
	ServerHost string `mapstructure:"server_host" yaml:"server_host"`
	ServerPort int    `mapstructure:"server_port" yaml:"server_port"`

	DefaultTopN int `mapstructure:"default_top_n" yaml:"default_top_n"`
}

// Addr joins the configured host and port into a listen address.
func (c *Global) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.citylens/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".citylens")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CITYLENS")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("raw_csv_path", filepath.Join("data", "city_lifestyle_dataset.csv"))
	v.SetDefault("cleaned_csv_path", filepath.Join("data", "cleaned", "city_lifestyle_cleaned.csv"))
	v.SetDefault("cache_dir", filepath.Join("data", "raw"))
	v.SetDefault("cache_max_age_hours", 24)
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", 5000)
	v.SetDefault("default_top_n", 10)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".citylens")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
