// Package cleanup provides the background cache hygiene worker
package cleanup

import (
	"time"

	appconfig "github.com/pulsekit/pulse-go/pkg/config"
)

// Config holds cleanup worker settings
type Config struct {
	CleanupInterval  time.Duration
	VerboseReporting bool
}

// NewConfigFromEnv builds a cleanup config from application configuration
func NewConfigFromEnv() *Config {
	return &Config{
		CleanupInterval:  appconfig.CleanupInterval,
		VerboseReporting: false,
	}
}
