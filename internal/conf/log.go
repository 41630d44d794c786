package conf

import (
	"fmt"
	"slices"
)

type Log struct {
	Level string `yaml:"level"`
}

func (l *Log) setDefaults() {
	if l.Level == "" {
		l.Level = "info"
	}
}

func (l *Log) validate() []error {
	var errors []error

	validLevels := []string{"debug", "info", "warn", "warning", "error"}
	if !slices.Contains(validLevels, l.Level) {
		errors = append(errors, fmt.Errorf("log level must be one of %v, got %q", validLevels, l.Level))
	}
	return errors
}
