package config

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lyrebirdhq/clientbase/errs"
	"github.com/lyrebirdhq/clientbase/streamer"
)

// Config is the base configuration every client application carries.
type Config struct {
	LogLevel string `yaml:"loglevel"`
	Server   Server `yaml:"server"`
}

// Server describes the connection to the central server. Supply either URL
// or an Address ("host" or "host:port") or separate Host/Port.
type Server struct {
	URL               string `yaml:"url"`
	Address           string `yaml:"address"`
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	SSL               bool   `yaml:"ssl"`
	Token             string `yaml:"token"`
	ReconnectInterval int    `yaml:"reconnect_interval"` // seconds
}

// Streamer converts the server section into a streamer config, with route
// appended to the composed URL.
func (s Server) Streamer(route string) streamer.Config {
	return streamer.Config{
		URL:               s.URL,
		Address:           s.Address,
		Host:              s.Host,
		Port:              s.Port,
		SSL:               s.SSL,
		Route:             route,
		ReconnectInterval: time.Duration(s.ReconnectInterval) * time.Second,
	}
}

// AuthHeader returns the authentication header sent on connect, empty when
// no token is configured.
func (s Server) AuthHeader() http.Header {
	header := http.Header{}
	if s.Token != "" {
		header.Set("Authorization", "Token "+s.Token)
	}
	return header
}

// Load reads the config file at path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadInto reads the config file at path into out, expanding ${VAR}
// environment variables first.
func LoadInto(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: no config file found at %q: %v", errs.ErrParameter, path, err)
	}

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), out); err != nil {
		return fmt.Errorf("%w: unable to parse config file %q: %v", errs.ErrParameter, path, err)
	}
	return nil
}

// LoadAndValidate loads the config and checks the server section. When
// debug is set the log level is forced to debug regardless of the file.
func LoadAndValidate(path string, debug bool) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the server section composes a connection target.
func (c *Config) Validate() error {
	return c.Server.Streamer("").Validate()
}

// LoadMap reads the config file at path as a raw mapping, for applications
// that inspect keys dynamically.
func LoadMap(path string) (map[string]any, error) {
	var m map[string]any
	if err := LoadInto(path, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// CheckMandatory verifies that the given top-level keys are present.
func CheckMandatory(cfg map[string]any, keys ...string) error {
	for _, key := range keys {
		if _, ok := cfg[key]; !ok {
			return fmt.Errorf("%w: invalid config file, missing %q", errs.ErrParameter, key)
		}
	}
	return nil
}
