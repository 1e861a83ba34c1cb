// Package config loads coursetrail settings from defaults, an optional
// YAML file, COURSETRAIL_* environment variables and bound flags.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abhisek/coursetrail/internal/course"
	"github.com/abhisek/coursetrail/internal/progress"
	"github.com/abhisek/coursetrail/internal/spacedrep"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "COURSETRAIL"

type Config struct {
	DB        string          `mapstructure:"db"`
	Actor     string          `mapstructure:"actor"`
	Log       LogConfig       `mapstructure:"log"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type EngineConfig struct {
	DefaultMasteryScore       float64 `mapstructure:"default_mastery_score"`
	PrerequisitePolicy        string  `mapstructure:"prerequisite_policy"`
	MissingPrerequisitePolicy string  `mapstructure:"missing_prerequisite_policy"`
}

type SchedulerConfig struct {
	MasteryThreshold float64 `mapstructure:"mastery_threshold"`
	PeriodicInterval int     `mapstructure:"periodic_interval"`
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("db", "")
	v.SetDefault("actor", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("engine.default_mastery_score", course.DefaultMasteryScore)
	v.SetDefault("engine.prerequisite_policy", string(progress.PrerequisiteCompletion))
	v.SetDefault("engine.missing_prerequisite_policy", string(progress.MissingLock))
	v.SetDefault("scheduler.mastery_threshold", spacedrep.DefaultMilestoneConfig().MasteryThreshold)
	v.SetDefault("scheduler.periodic_interval", spacedrep.DefaultMilestoneConfig().PeriodicInterval)
}

// Load reads configuration into a fresh viper instance. path names an
// explicit config file; when empty the default location is used if it
// exists. flags, when non-nil, override file and environment values for
// the flags the user set.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = DefaultPath()
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	if flags != nil {
		for key, name := range map[string]string{"db": "db", "log.level": "log-level", "actor": "actor"} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "bind flag %s", name)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/coursetrail/config.yaml, falling
// back to ~/.config.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "coursetrail", "config.yaml")
}

// Validate checks values that cannot be clamped.
func (c *Config) Validate() error {
	if _, err := progress.ParsePrerequisitePolicy(c.Engine.PrerequisitePolicy); err != nil {
		return errors.Wrap(err, "engine.prerequisite_policy")
	}
	if _, err := progress.ParseMissingPrerequisitePolicy(c.Engine.MissingPrerequisitePolicy); err != nil {
		return errors.Wrap(err, "engine.missing_prerequisite_policy")
	}
	// Zero means unset in progress.Options and spacedrep.MilestoneConfig.
	if s := c.Engine.DefaultMasteryScore; s <= 0 || s > 1 {
		return errors.Errorf("engine.default_mastery_score %v outside (0,1]", s)
	}
	if s := c.Scheduler.MasteryThreshold; s <= 0 || s > 1 {
		return errors.Errorf("scheduler.mastery_threshold %v outside (0,1]", s)
	}
	return nil
}

// EngineOptions converts the engine section into evaluation options.
func (c *Config) EngineOptions() progress.Options {
	prereq, _ := progress.ParsePrerequisitePolicy(c.Engine.PrerequisitePolicy)
	missing, _ := progress.ParseMissingPrerequisitePolicy(c.Engine.MissingPrerequisitePolicy)
	return progress.Options{
		DefaultMasteryScore:  c.Engine.DefaultMasteryScore,
		Prerequisites:        prereq,
		MissingPrerequisites: missing,
	}
}

// MilestoneConfig converts the scheduler section.
func (c *Config) MilestoneConfig() spacedrep.MilestoneConfig {
	return spacedrep.MilestoneConfig{
		MasteryThreshold: c.Scheduler.MasteryThreshold,
		PeriodicInterval: c.Scheduler.PeriodicInterval,
	}
}
