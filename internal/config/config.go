// Package config manages imgedit configuration settings.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	_ "go.seanlatimer.dev/imgedit/internal/xdginit"
	"gopkg.in/yaml.v3"
)

const (
	appDirName     = "imgedit"
	configFileName = "config.yaml"
	logFileName    = "imgedit.log"

	// ServerEnv overrides server_url.
	ServerEnv = "IMGEDIT_SERVER"

	DefaultServerURL = "http://127.0.0.1:5000"
)

// Keys accepted by Set.
const (
	KeyServerURL    = "server_url"
	KeyLogFile      = "log_file"
	KeyDefaultModel = "default_model"
	KeyProbeImages  = "probe_images"
)

type Config struct {
	ServerURL    string `yaml:"server_url,omitempty"`
	LogFile      string `yaml:"log_file,omitempty"`
	DefaultModel string `yaml:"default_model,omitempty"`
	// ProbeImages is nil when unset, which means true.
	ProbeImages *bool `yaml:"probe_images,omitempty"`
}

// Server returns the effective server URL: the environment override, then
// the file, then the default.
func (c Config) Server() string {
	if env := strings.TrimSpace(os.Getenv(ServerEnv)); env != "" {
		return env
	}
	if s := strings.TrimSpace(c.ServerURL); s != "" {
		return s
	}
	return DefaultServerURL
}

func (c Config) Probe() bool {
	return c.ProbeImages == nil || *c.ProbeImages
}

// Set assigns one key from its string form.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case KeyServerURL:
		if err := ValidateServerURL(value); err != nil {
			return err
		}
		c.ServerURL = value
	case KeyLogFile:
		c.LogFile = value
	case KeyDefaultModel:
		c.DefaultModel = value
	case KeyProbeImages:
		on, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("probe_images must be true or false: %q", value)
		}
		c.ProbeImages = &on
	default:
		return fmt.Errorf("unknown config key: %q", key)
	}
	return nil
}

func ValidateServerURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid server url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server url must be an http(s) address: %q", raw)
	}
	return nil
}

func GetConfigDir() (string, error) {
	return filepath.Join(xdg.ConfigHome, appDirName), nil
}

func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// GetLogPath returns where diagnostic records go, creating the directory.
// A log_file setting wins over the XDG state location.
func GetLogPath(cfg Config) (string, error) {
	path := strings.TrimSpace(cfg.LogFile)
	if path == "" {
		path = filepath.Join(xdg.StateHome, appDirName, logFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}
	return path, nil
}

// LoadConfig reads the default config file. A missing file is an empty
// config.
func LoadConfig() (Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return Config{}, err
	}
	return LoadConfigFrom(path)
}

func LoadConfigFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func SaveConfig(cfg Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveConfigTo(path, cfg)
}

func SaveConfigTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
