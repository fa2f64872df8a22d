package config

import (
	"github.com/kbukum/minject/inspect"
	"github.com/kbukum/minject/logger"
	"github.com/kbukum/minject/observability"
	"github.com/kbukum/minject/validation"
)

// Config is the configuration of a service built around a container.
type Config struct {
	Service       ServiceConfig        `yaml:"service" mapstructure:"service"`
	Log           logger.Config        `yaml:"log" mapstructure:"log"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Inspect       inspect.Config       `yaml:"inspect" mapstructure:"inspect"`
	Bindings      []Binding            `yaml:"bindings" mapstructure:"bindings" validate:"dive"`
}

// ApplyDefaults applies defaults to every section.
func (c *Config) ApplyDefaults() {
	c.Service.ApplyDefaults()
	c.Log.ApplyDefaults()
	if c.Service.Debug && c.Log.Level == "info" {
		c.Log.Level = "debug"
	}
	c.Observability.ApplyDefaults()
	c.Inspect.ApplyDefaults()
	for i := range c.Bindings {
		c.Bindings[i].ApplyDefaults()
	}
}

// Validate checks struct tags on every section, the logger settings and
// the uniqueness of binding keys. All problems are reported together as a
// single INVALID_INPUT error.
func (c *Config) Validate() error {
	v := validation.New()
	v.Merge("", validation.Struct(c))
	v.Merge("log", c.Log.Validate())

	keys := make([]string, len(c.Bindings))
	for i, b := range c.Bindings {
		keys[i] = b.Key
	}
	v.Unique("bindings", keys)

	return v.Err()
}
