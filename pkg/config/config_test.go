package config

import "testing"

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsPhysLessThanArch(t *testing.T) {
	cfg := Default()
	cfg.PhysRegCount = cfg.ArchRegCount - 1
	if err := cfg.Validate(); err == nil {
		t.Errorf("Validate() = nil, want error for phys < arch")
	}
}

func TestValidateRejectsZeroFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"frontend_n_wide", func(c *Config) { c.FrontendNWide = 0 }},
		{"rs_count", func(c *Config) { c.RSCount = 0 }},
		{"rob_capacity", func(c *Config) { c.ROBCapacity = 0 }},
		{"sb_capacity", func(c *Config) { c.SBCapacity = 0 }},
		{"lfb_count", func(c *Config) { c.LFBCount = 0 }},
		{"memory_size", func(c *Config) { c.MemorySize = 0 }},
		{"load_latency", func(c *Config) { c.LoadLatency = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() = nil, want error with %s zeroed", tc.name)
			}
		})
	}
}

func TestLoadTOMLMissingFileErrors(t *testing.T) {
	if _, err := LoadTOML("/nonexistent/path/config.toml"); err == nil {
		t.Errorf("LoadTOML() = nil error, want one for missing file")
	}
}
