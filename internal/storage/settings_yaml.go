package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"monitorcontrol/internal/core/model"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	Debug                 bool   `yaml:"debug"`
	LogFile               string `yaml:"log_file"`
	Tooltip               string `yaml:"tooltip"`
	CommandTimeoutSeconds int    `yaml:"command_timeout_seconds"`
}

// LoadSettings reads settings from the user config directory, then applies
// overrides from a .env file beside the executable and the environment.
// Defaults are returned alongside any error.
func LoadSettings(appName string) (model.Settings, error) {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return applyEnvOverrides(model.DefaultSettings(), executableEnvPath()), err
	}
	settings, err := LoadSettingsFile(configPath)
	return applyEnvOverrides(settings, executableEnvPath()), err
}

// LoadSettingsFile reads settings from a YAML file.
// If the file does not exist, default settings are returned.
func LoadSettingsFile(configPath string) (model.Settings, error) {
	settings := model.DefaultSettings()

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

func resolveConfigPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *model.Settings, fileData yamlSettings) {
	settings.Debug = fileData.Debug
	settings.LogFile = strings.TrimSpace(fileData.LogFile)
	if tooltip := strings.TrimSpace(fileData.Tooltip); tooltip != "" {
		settings.Tooltip = tooltip
	}
	if fileData.CommandTimeoutSeconds > 0 {
		settings.CommandTimeout = time.Duration(fileData.CommandTimeoutSeconds) * time.Second
	}
}
