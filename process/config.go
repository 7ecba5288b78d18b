package process

import (
	"slices"
	"strings"
	"time"

	"github.com/kbukum/execkit/resilience"
	"github.com/kbukum/execkit/validation"
)

// Config configures executables built from configuration files.
type Config struct {
	// SearchPathVar is the environment variable scanned by the Finder.
	SearchPathVar string `yaml:"search_path_var" mapstructure:"search_path_var"`
	// Extensions are tried before the bare name when finding a program.
	Extensions []string `yaml:"extensions" mapstructure:"extensions"`
	// RegularExitCodes are registered on every executable built from this config.
	RegularExitCodes []int `yaml:"regular_exit_codes" mapstructure:"regular_exit_codes" validate:"dive,gte=0,lte=255"`
	// LowPriority renices background runs to LowestPriority.
	LowPriority bool `yaml:"low_priority" mapstructure:"low_priority"`
	// MaxConcurrent caps concurrent background runs. 0 means no cap.
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent" validate:"gte=0"`
	// MaxWait is how long a background run waits for a free slot.
	MaxWait time.Duration `yaml:"max_wait" mapstructure:"max_wait"`
	// RequireExecutable makes the Finder skip files without execute bits.
	RequireExecutable bool `yaml:"require_executable" mapstructure:"require_executable"`
	// Deny lists programs, by path or base name, that may never run.
	Deny []string `yaml:"deny,omitempty" mapstructure:"deny"`
	// Allow, when set, lists the only programs that may run.
	Allow []string `yaml:"allow,omitempty" mapstructure:"allow"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.SearchPathVar == "" {
		c.SearchPathVar = DefaultPathVar
	}
	if c.Extensions == nil {
		c.Extensions = slices.Clone(DefaultExtensions)
	}
	if c.RegularExitCodes == nil {
		c.RegularExitCodes = []int{0}
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	v := validation.New()
	for _, ext := range c.Extensions {
		v.Custom(strings.HasPrefix(ext, ".") && len(ext) > 1, "extensions", "entries must start with a dot: "+ext)
	}
	v.Custom(c.MaxWait >= 0, "max_wait", "must not be negative")
	v.Custom(c.MaxWait == 0 || c.MaxConcurrent > 0, "max_wait", "requires max_concurrent")
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Policy returns the exec policy described by Deny and Allow.
func (c *Config) Policy() ExecPolicy {
	var ps Policies
	if len(c.Deny) > 0 {
		ps = append(ps, DenyList(c.Deny))
	}
	if len(c.Allow) > 0 {
		ps = append(ps, AllowList(c.Allow))
	}
	if len(ps) == 0 {
		return AllowAll{}
	}
	return ps
}

// Options returns the executor options described by the config, followed by extra.
func (c *Config) Options(extra ...Option) []Option {
	opts := []Option{
		WithPolicy(c.Policy()),
		WithRegularExitCodes(c.RegularExitCodes...),
	}
	return append(opts, extra...)
}

// Finder returns a Finder whose executables carry the config options.
func (c *Config) Finder(extra ...Option) *Finder {
	return &Finder{
		PathVar:           c.SearchPathVar,
		Extensions:        c.Extensions,
		Policy:            c.Policy(),
		Options:           c.Options(extra...),
		RequireExecutable: c.RequireExecutable,
	}
}

// Bulkhead returns the worker bulkhead, or nil if MaxConcurrent is 0.
func (c *Config) Bulkhead(name string) *resilience.Bulkhead {
	if c.MaxConcurrent <= 0 {
		return nil
	}
	return resilience.NewBulkhead(resilience.BulkheadConfig{
		Name:          name,
		MaxConcurrent: c.MaxConcurrent,
		MaxWait:       c.MaxWait,
	})
}

// NonBlockingOptions returns the decorator options described by the config.
// b may be nil.
func (c *Config) NonBlockingOptions(b *resilience.Bulkhead, extra ...NonBlockingOption) []NonBlockingOption {
	opts := []NonBlockingOption{WithLowPriority(c.LowPriority)}
	if b != nil {
		opts = append(opts, WithBulkhead(b))
	}
	return append(opts, extra...)
}
