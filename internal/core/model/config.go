package model

import "time"

// Settings holds optional user configuration. None of it describes the
// display state, which always starts as present.
// A zero CommandTimeout lets power commands run until they exit.
type Settings struct {
	Debug          bool
	LogFile        string
	Tooltip        string
	CommandTimeout time.Duration
}

// DefaultSettings returns default settings for MonitorControl.
func DefaultSettings() Settings {
	return Settings{
		Debug:          false,
		LogFile:        "",
		Tooltip:        "Monitor Control",
		CommandTimeout: 0,
	}
}
