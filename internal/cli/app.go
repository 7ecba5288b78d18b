// Package cli implements the execkit command line.
package cli

import (
	"context"
	"io"

	"github.com/kbukum/execkit/config"
	"github.com/kbukum/execkit/logger"
	"github.com/kbukum/execkit/observability"
	"github.com/kbukum/execkit/process"
	"github.com/kbukum/execkit/validation"
	"github.com/kbukum/execkit/version"
)

// AppName is used for config file lookup, the env prefix and the log tag.
const AppName = "execkit"

// AppConfig is the execkit configuration file.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Process              process.Config       `yaml:"process" mapstructure:"process"`
	Observability        observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills unset fields in every section.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = AppName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Process.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Process.Validate(); err != nil {
		return err
	}
	return validation.Validate(&c.Observability)
}

// app holds the state shared by the subcommands of one invocation.
type app struct {
	configFile string
	logLevel   string
	jsonOutput bool

	cfg      AppConfig
	log      *logger.Logger
	metrics  *observability.Metrics
	shutdown observability.ShutdownFunc
}

// setup loads the configuration and initializes logging and telemetry.
func (a *app) setup(ctx context.Context, errOut io.Writer) error {
	opts := []config.LoaderOption{config.WithEnvPrefix(AppName)}
	if a.configFile != "" {
		opts = append(opts, config.WithConfigFile(a.configFile))
	}
	if err := config.LoadConfig(AppName, &a.cfg, opts...); err != nil {
		return err
	}
	if a.logLevel != "" {
		a.cfg.Logging.Level = a.logLevel
	}
	if a.jsonOutput && a.cfg.Logging.Format == "" {
		a.cfg.Logging.Format = "json"
	}
	a.cfg.ApplyDefaults()
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	a.log = logger.NewWithWriter(&a.cfg.Logging, a.cfg.Name, errOut)
	logger.SetGlobalLogger(a.log)
	logger.Reset()

	metrics, shutdown, err := observability.Setup(ctx, a.cfg.Observability, a.cfg.Name, version.Get().Short())
	if err != nil {
		return err
	}
	a.metrics = metrics
	a.shutdown = shutdown
	return nil
}

// close flushes telemetry.
func (a *app) close(ctx context.Context) error {
	if a.shutdown == nil {
		return nil
	}
	return a.shutdown(ctx)
}
