package renewal

import "time"

const (
	// DefaultInterval is the time between renewal cycles.
	DefaultInterval = 12 * time.Hour
	// ImmediateDelay replaces the first interval when renewing immediately.
	ImmediateDelay = 500 * time.Millisecond
)

// DefaultCommand is the renewal command used when none is configured.
var DefaultCommand = []string{"certbot", "renew"}

// Config holds renewal configuration with environment variable support.
type Config struct {
	Interval         time.Duration `env:"RENEWAL_INTERVAL" envDefault:"12h" yaml:"interval"`
	RenewImmediately bool          `env:"RENEWAL_IMMEDIATELY" envDefault:"false" yaml:"immediately"`

	// Command is the argv of the external renewal program.
	Command []string `env:"RENEWAL_COMMAND" envDefault:"certbot,renew" envSeparator:"," yaml:"command"`

	// CommandTimeout bounds a single command run; zero means no limit.
	CommandTimeout time.Duration `env:"RENEWAL_COMMAND_TIMEOUT" envDefault:"0" yaml:"command_timeout"`

	// ResumeOnFailure keeps scheduling cycles after a failed renewal.
	ResumeOnFailure bool `env:"RENEWAL_RESUME_ON_FAILURE" envDefault:"false" yaml:"resume_on_failure"`
}

// DefaultConfig returns a Config matching the environment defaults.
func DefaultConfig() Config {
	return Config{
		Interval: DefaultInterval,
		Command:  append([]string(nil), DefaultCommand...),
	}
}
