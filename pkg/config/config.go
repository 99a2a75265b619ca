// Package config loads the holopair YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/backkem/holopair/pkg/pairing"
	"github.com/backkem/holopair/pkg/verification"
	"github.com/pion/logging"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultListen       = ":7447"
	DefaultScheme       = "coloring"
	DefaultStepTimeout  = "2m"
	DefaultConfirmDelay = "2s"
	DefaultResultsDir   = "."
	DefaultLogLevel     = "info"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid")

// Config is the holopair configuration file.
type Config struct {
	Listen            string `yaml:"listen" description:"Initiator listen address" default:":7447"`
	Peer              string `yaml:"peer" description:"Initiator address to dial (empty = discover via mDNS)"`
	Instance          string `yaml:"instance" description:"mDNS instance name (empty = generated)"`
	Discovery         *bool  `yaml:"discovery" description:"Advertise and browse via mDNS" default:"true"`
	Scheme            string `yaml:"scheme" description:"Verification scheme: coloring or positional" default:"coloring"`
	ElementSizes      []int  `yaml:"element_sizes" description:"Artifact sizes to pick from" default:"[4,6,8]"`
	AttackProbability *int   `yaml:"attack_probability" description:"Percent of attempts run as attack simulation" default:"20"`
	StepTimeout       string `yaml:"step_timeout" description:"Abort an attempt stuck on one step this long" default:"2m"`
	ConfirmDelay      string `yaml:"confirm_delay" description:"Minimum time between the two confirmations" default:"2s"`
	ResultsDir        string `yaml:"results_dir" description:"Directory for experiment CSV files" default:"."`
	Record            bool   `yaml:"record" description:"Record attempts to CSV (initiator)" default:"false"`
	LogLevel          string `yaml:"log_level" description:"trace, debug, info, warn, error or disabled" default:"info"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	attack := pairing.DefaultAttackProbability
	discovery := true
	return Config{
		Listen:            DefaultListen,
		Discovery:         &discovery,
		Scheme:            DefaultScheme,
		ElementSizes:      append([]int(nil), pairing.DefaultElementSizes...),
		AttackProbability: &attack,
		StepTimeout:       DefaultStepTimeout,
		ConfirmDelay:      DefaultConfirmDelay,
		ResultsDir:        DefaultResultsDir,
		LogLevel:          DefaultLogLevel,
	}
}

// LoadConfigFromPath loads a configuration file. Missing fields keep their
// defaults. A missing file yields the defaults.
func LoadConfigFromPath(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}
	config.fillDefaults()

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func (c *Config) fillDefaults() {
	d := DefaultConfig()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.Discovery == nil {
		c.Discovery = d.Discovery
	}
	if c.Scheme == "" {
		c.Scheme = d.Scheme
	}
	if len(c.ElementSizes) == 0 {
		c.ElementSizes = d.ElementSizes
	}
	if c.AttackProbability == nil {
		c.AttackProbability = d.AttackProbability
	}
	if c.StepTimeout == "" {
		c.StepTimeout = d.StepTimeout
	}
	if c.ConfirmDelay == "" {
		c.ConfirmDelay = d.ConfirmDelay
	}
	if c.ResultsDir == "" {
		c.ResultsDir = d.ResultsDir
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Validate checks every field.
func (c *Config) Validate() error {
	scheme, err := verification.ParseScheme(c.Scheme)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(c.ElementSizes) == 0 {
		return fmt.Errorf("%w: element_sizes is empty", ErrInvalid)
	}
	for _, n := range c.ElementSizes {
		if err := scheme.CheckElements(n); err != nil {
			return fmt.Errorf("%w: element_sizes: %w", ErrInvalid, err)
		}
	}
	if p := c.EffectiveAttackProbability(); p < 0 || p > 100 {
		return fmt.Errorf("%w: attack_probability %d is not a percentage", ErrInvalid, p)
	}
	if _, err := parsePositiveDuration(c.StepTimeout); err != nil {
		return fmt.Errorf("%w: step_timeout: %v", ErrInvalid, err)
	}
	if _, err := parsePositiveDuration(c.ConfirmDelay); err != nil {
		return fmt.Errorf("%w: confirm_delay: %v", ErrInvalid, err)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// ParsedScheme returns the configured scheme.
func (c *Config) ParsedScheme() verification.Scheme {
	s, err := verification.ParseScheme(c.Scheme)
	if err != nil {
		return verification.SchemeColoring
	}
	return s
}

// EffectiveAttackProbability returns the attack probability, applying the
// default when unset.
func (c *Config) EffectiveAttackProbability() int {
	if c.AttackProbability == nil {
		return pairing.DefaultAttackProbability
	}
	return *c.AttackProbability
}

// DiscoveryEnabled reports whether mDNS is used. Defaults to true.
func (c *Config) DiscoveryEnabled() bool {
	return c.Discovery == nil || *c.Discovery
}

// StepTimeoutDuration returns the parsed step timeout.
func (c *Config) StepTimeoutDuration() time.Duration {
	d, err := parsePositiveDuration(c.StepTimeout)
	if err != nil {
		return pairing.DefaultStepTimeout
	}
	return d
}

// ConfirmDelayDuration returns the parsed confirmation delay.
func (c *Config) ConfirmDelayDuration() time.Duration {
	d, err := parsePositiveDuration(c.ConfirmDelay)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

// ParseLogLevel maps a level name to a pion log level.
func ParseLogLevel(name string) (logging.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return logging.LogLevelTrace, nil
	case "debug":
		return logging.LogLevelDebug, nil
	case "info", "":
		return logging.LogLevelInfo, nil
	case "warn", "warning":
		return logging.LogLevelWarn, nil
	case "error":
		return logging.LogLevelError, nil
	case "disabled", "off", "none":
		return logging.LogLevelDisabled, nil
	default:
		return logging.LogLevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// LoggerFactory returns a pion logger factory at the configured level.
func (c *Config) LoggerFactory() *logging.DefaultLoggerFactory {
	f := logging.NewDefaultLoggerFactory()
	if level, err := ParseLogLevel(c.LogLevel); err == nil {
		f.DefaultLogLevel = level
	}
	return f
}

func parsePositiveDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %s must be positive", s)
	}
	return d, nil
}
