package guardian

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/samuraitruong/guardian/service/credentials"
)

// Config is the serialisable engine configuration. The zero value works: all
// nested sections inherit their package defaults.
type Config struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// CollaboratorTimeoutMs bounds every ledger, storage and schema call made
	// during lifecycle transitions. Zero disables the bound.
	CollaboratorTimeoutMs int `json:"collaboratorTimeoutMs,omitempty" yaml:"collaboratorTimeoutMs,omitempty"`

	Messaging   MessagingConfig    `json:"messaging" yaml:"messaging"`
	Credentials credentials.Config `json:"credentials,omitempty" yaml:"credentials,omitempty"`
	Tracing     TracingConfig      `json:"tracing,omitempty" yaml:"tracing,omitempty"`
}

// MessagingConfig controls the in-process notification queues.
type MessagingConfig struct {
	MaxRetries   int `json:"maxRetries" yaml:"maxRetries"`
	RetryDelayMs int `json:"retryDelayMs" yaml:"retryDelayMs"`
	QueueBuffer  int `json:"queueBuffer" yaml:"queueBuffer"`
}

// RetryDelay returns the redelivery backoff as a duration.
func (c *MessagingConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// TracingConfig controls span export.
type TracingConfig struct {
	Enabled    bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	OutputFile string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

// DefaultConfig returns a Config with the engine defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:                  "guardian",
		Version:               "0.1.0",
		CollaboratorTimeoutMs: 15000,
		Messaging: MessagingConfig{
			MaxRetries:   3,
			RetryDelayMs: 100,
			QueueBuffer:  100,
		},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Messaging.MaxRetries < 0 {
		return fmt.Errorf("messaging.maxRetries must be >= 0")
	}
	if c.Messaging.QueueBuffer < 0 {
		return fmt.Errorf("messaging.queueBuffer must be >= 0")
	}
	if c.CollaboratorTimeoutMs < 0 {
		return fmt.Errorf("collaboratorTimeoutMs must be >= 0")
	}
	return nil
}

// LoadConfig reads a YAML config from any afs-supported URL (file, mem, s3,
// gs) and overlays it on the defaults.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %v: %w", URL, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
