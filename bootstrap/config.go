package bootstrap

import (
	"github.com/kbukum/voiceingest/config"
)

// Config is satisfied by any struct embedding config.ServiceConfig that
// also provides ApplyDefaults and Validate for its own sections.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
