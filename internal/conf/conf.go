// Package conf loads and validates the YAML configuration file.
package conf

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

type Conf struct {
	Role     string   `yaml:"role"`
	Log      Log      `yaml:"log"`
	Encoding Encoding `yaml:"encoding"`
	Output   Output   `yaml:"output"`
}

// IsClient reports whether the configured role encodes request-shaped
// packets.
func (c *Conf) IsClient() bool {
	return c.Role == "client"
}

// Default returns a configuration with built-in defaults for the role.
func Default(role string) *Conf {
	c := &Conf{Role: role}
	c.setDefaults()
	return c
}

func LoadFromFile(path string) (*Conf, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

func Load(data []byte) (*Conf, error) {
	var conf Conf

	if err := yaml.Unmarshal(data, &conf); err != nil {
		return &conf, err
	}

	validRoles := []string{"client", "server"}
	if !slices.Contains(validRoles, conf.Role) {
		return nil, fmt.Errorf("role must be 'client' or 'server'")
	}

	conf.setDefaults()
	if err := conf.validate(); err != nil {
		return &conf, err
	}

	return &conf, nil
}

func (c *Conf) setDefaults() {
	c.Log.setDefaults()
	c.Encoding.setDefaults()
	c.Output.setDefaults()
}

func (c *Conf) validate() error {
	var allErrors []error

	allErrors = append(allErrors, c.Log.validate()...)
	allErrors = append(allErrors, c.Encoding.validate(c.Role)...)
	allErrors = append(allErrors, c.Output.validate()...)

	return writeErr(allErrors)
}

func writeErr(allErrors []error) error {
	if len(allErrors) > 0 {
		var messages []string
		for _, err := range allErrors {
			messages = append(messages, err.Error())
		}
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(messages, "\n  - "))
	}
	return nil
}
