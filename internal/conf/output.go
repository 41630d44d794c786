package conf

import "fmt"

type Output struct {
	// Dir receives one file per generated packet.
	Dir string `yaml:"dir"`
}

func (o *Output) setDefaults() {
	if o.Dir == "" {
		o.Dir = "."
	}
}

func (o *Output) validate() []error {
	var errors []error

	if o.Dir == "" {
		errors = append(errors, fmt.Errorf("output dir must not be empty"))
	}
	return errors
}
