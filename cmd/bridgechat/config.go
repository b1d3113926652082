package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentbridge"
	"github.com/hupe1980/agentbridge/auth"
	"github.com/hupe1980/agentbridge/core"
	"github.com/hupe1980/agentbridge/logging"
)

type config struct {
	Endpoint string  `yaml:"endpoint"`
	AgentID  string  `yaml:"agent_id"`
	TeamID   string  `yaml:"team_id"`
	UserID   string  `yaml:"user_id"`
	Token    string  `yaml:"token"`
	LogLevel string  `yaml:"log_level"`
	RPS      float64 `yaml:"requests_per_second"`
}

func defaultConfigPath() string {
	return filepath.Join(os.Getenv("HOME"), ".bridgechat", "config.yaml")
}

func loadConfig(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if v := os.Getenv("AGENT_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("AGENT_TOKEN"); v != "" {
		cfg.Token = v
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("config: endpoint is required")
	}
	if cfg.AgentID == "" && cfg.TeamID == "" {
		return nil, fmt.Errorf("config: agent_id or team_id is required")
	}
	return &cfg, nil
}

func (c *config) logLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// newClient builds a client from the loaded config. Team mode is selected
// when team_id is set and agent_id is not.
func newClient(cfg *config) (*agentbridge.Client, error) {
	return agentbridge.New(cfg.Endpoint, func(o *agentbridge.Options) {
		if cfg.AgentID != "" {
			o.Mode = core.ModeAgent
			o.AgentID = cfg.AgentID
		} else {
			o.Mode = core.ModeTeam
			o.TeamID = cfg.TeamID
		}
		o.UserID = cfg.UserID
		o.RequestsPerSecond = cfg.RPS
		o.Logger = logging.NewTextLogger(os.Stderr, cfg.logLevel())
		if cfg.Token != "" {
			o.TokenSource = auth.NewStaticTokenSource(cfg.Token)
		}
	})
}
