package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// UserConfig represents CLI preferences stored in ~/.xnova/config.json
type UserConfig struct {
	// Player id used when --player is not given
	DefaultPlayer string `json:"default_player,omitempty"`

	// Daemon socket used when --socket is not given
	DaemonSocket string `json:"daemon_socket,omitempty"`
}

// UserConfigHandler manages loading and saving user configuration
type UserConfigHandler struct {
	configPath string
}

// NewUserConfigHandler creates a handler for ~/.xnova/config.json
func NewUserConfigHandler() (*UserConfigHandler, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewUserConfigHandlerAt(filepath.Join(homeDir, ".xnova", "config.json")), nil
}

// NewUserConfigHandlerAt creates a handler for an explicit file
func NewUserConfigHandlerAt(path string) *UserConfigHandler {
	return &UserConfigHandler{configPath: path}
}

// Load reads the user config from disk. A missing file is an empty config.
func (h *UserConfigHandler) Load() (*UserConfig, error) {
	data, err := os.ReadFile(h.configPath)
	if errors.Is(err, os.ErrNotExist) {
		return &UserConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config %s: %w", h.configPath, err)
	}
	return &cfg, nil
}

// Save writes the user config to disk, creating its directory
func (h *UserConfigHandler) Save(cfg *UserConfig) error {
	if err := os.MkdirAll(filepath.Dir(h.configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}
	if err := os.WriteFile(h.configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}
	return nil
}

// SetDefaultPlayer remembers the player id for later commands
func (h *UserConfigHandler) SetDefaultPlayer(playerID string) error {
	cfg, err := h.Load()
	if err != nil {
		return err
	}
	cfg.DefaultPlayer = playerID
	return h.Save(cfg)
}

// ClearDefaultPlayer forgets the default player
func (h *UserConfigHandler) ClearDefaultPlayer() error {
	cfg, err := h.Load()
	if err != nil {
		return err
	}
	cfg.DefaultPlayer = ""
	return h.Save(cfg)
}

// GetConfigPath returns the path to the user config file
func (h *UserConfigHandler) GetConfigPath() string {
	return h.configPath
}
