// Package config holds the configuration of Sif's grouped-data stage
package config

import (
	"io/ioutil"
	"os"

	"github.com/go-sif/bag/logging"
	toml "github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Config configures the grouped-data stage
type Config struct {
	LogLevel       string `toml:"log_level"`       // one of trace, debug, info, warn, error, fatal
	SpillDir       string `toml:"spill_dir"`       // directory for spilled Bag data
	SpillThreshold int64  `toml:"spill_threshold"` // number of resident Tuples at which a DefaultBag spills itself. <= 0 disables automatic spilling.
	MemoryLimit    int64  `toml:"memory_limit"`    // resident bytes above which a spill.Manager spills registered Bags. <= 0 disables the limit.
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		LogLevel:       "info",
		SpillDir:       os.TempDir(),
		SpillThreshold: 0,
		MemoryLimit:    0,
	}
}

// Parse reads a TOML document into a Config. Missing values take their defaults.
func Parse(data []byte) (*Config, error) {
	conf := &Config{}
	if err := toml.Unmarshal(data, conf); err != nil {
		return nil, errors.Wrap(err, "unable to parse configuration")
	}
	defaults := Default()
	if conf.LogLevel == "" {
		conf.LogLevel = defaults.LogLevel
	}
	if conf.SpillDir == "" {
		conf.SpillDir = defaults.SpillDir
	}
	return conf, nil
}

// Load reads a TOML configuration file
func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read configuration file %s", path)
	}
	return Parse(data)
}

// Apply configures process-wide state (currently the log level) from this Config
func (c *Config) Apply() {
	logging.SetLevel(logging.ParseLogLevel(c.LogLevel))
}
