package storage

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"monitorcontrol/internal/core/model"

	"github.com/joho/godotenv"
)

const (
	envDebug          = "MONITORCONTROL_DEBUG"
	envLogFile        = "MONITORCONTROL_LOG_FILE"
	envCommandTimeout = "MONITORCONTROL_COMMAND_TIMEOUT_SECONDS"
)

// applyEnvOverrides layers values from the .env file at envPath and then
// the process environment over settings. Unparseable values are ignored.
func applyEnvOverrides(settings model.Settings, envPath string) model.Settings {
	values := map[string]string{}
	if envPath != "" {
		if fileValues, err := godotenv.Read(envPath); err == nil {
			values = fileValues
		}
	}
	lookup := func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
		value, ok := values[key]
		return value, ok
	}

	if value, ok := lookup(envDebug); ok {
		if debug, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			settings.Debug = debug
		}
	}
	if value, ok := lookup(envLogFile); ok {
		settings.LogFile = strings.TrimSpace(value)
	}
	if value, ok := lookup(envCommandTimeout); ok {
		if seconds, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && seconds >= 0 {
			settings.CommandTimeout = time.Duration(seconds) * time.Second
		}
	}
	return settings
}

func executableEnvPath() string {
	exePath, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(exePath), ".env")
}
