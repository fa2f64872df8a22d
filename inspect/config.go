package inspect

import "time"

// Config controls the introspection HTTP server.
type Config struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Addr is the listen address host:port.
	Addr string `yaml:"addr" mapstructure:"addr" validate:"omitempty,hostname_port"`
	// BasePath prefixes every route, e.g. "/debug/di".
	BasePath     string        `yaml:"base_path" mapstructure:"base_path" validate:"omitempty,startswith=/"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" validate:"gte=0"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:8081"
	}
	if c.BasePath == "" {
		c.BasePath = "/debug/di"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15 * time.Second
	}
}
