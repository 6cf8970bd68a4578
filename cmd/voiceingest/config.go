package main

import (
	"github.com/kbukum/voiceingest/config"
	"github.com/kbukum/voiceingest/database"
	"github.com/kbukum/voiceingest/intake"
	"github.com/kbukum/voiceingest/observability"
	"github.com/kbukum/voiceingest/quota"
	"github.com/kbukum/voiceingest/redis"
	"github.com/kbukum/voiceingest/server"
	"github.com/kbukum/voiceingest/toolchain"
	"github.com/kbukum/voiceingest/transcode"
	"github.com/kbukum/voiceingest/transcription"
	"github.com/kbukum/voiceingest/usage"
	"github.com/kbukum/voiceingest/validation"
	"github.com/kbukum/voiceingest/version"
)

// Config is the voiceingest process configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Intake        intake.Config        `yaml:"intake" mapstructure:"intake"`
	Toolchain     toolchain.Config     `yaml:"toolchain" mapstructure:"toolchain"`
	Transcode     transcode.Config     `yaml:"transcode" mapstructure:"transcode"`
	Transcription transcription.Config `yaml:"transcription" mapstructure:"transcription"`
	Usage         usage.Config         `yaml:"usage" mapstructure:"usage"`
	Quota         quota.Config         `yaml:"quota" mapstructure:"quota"`
	Database      database.Config      `yaml:"database" mapstructure:"database"`
	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.Get().Short()
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Intake.ApplyDefaults()
	c.Toolchain.ApplyDefaults()
	c.Transcode.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.Usage.ApplyDefaults()
	c.Quota.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section. Store sections are only checked for the
// selected usage backend.
func (c *Config) Validate() error {
	v := validation.New("")
	v.Merge("service", c.ServiceConfig.Validate())
	v.Merge("server", c.Server.Validate())
	v.Merge("intake", c.Intake.Validate())
	v.Merge("toolchain", c.Toolchain.Validate())
	v.Merge("transcode", c.Transcode.Validate())
	v.Merge("transcription", c.Transcription.Validate())
	v.Merge("usage", c.Usage.Validate())
	v.Merge("quota", c.Quota.Validate())
	v.Merge("observability", c.Observability.Validate())
	switch c.Usage.Backend {
	case usage.BackendDatabase:
		v.Merge("database", c.Database.Validate())
	case usage.BackendRedis:
		v.Merge("redis", c.Redis.Validate())
	}
	return v.Err()
}
