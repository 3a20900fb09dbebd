package fluentlogger

import (
	"fmt"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// Config describes the Fluent Bit forward input the service ships logs to.
type Config struct {
	Host         string // "127.0.0.1" or "fluent-bit" inside docker compose
	Port         int    // usually 24224
	TagPrefix    string // prepended to every tag sent by this service
	Async        bool
	WriteTimeout time.Duration
}

// NewClient creates a Fluent Bit client. Creation does not prove the
// collector is reachable: the first failed Post reports that.
func NewClient(cfg Config) (*fluent.Fluent, error) {
	if cfg.TagPrefix == "" {
		return nil, fmt.Errorf("fluentd tag prefix is required")
	}

	fluentCfg := fluent.Config{
		FluentHost: cfg.Host,
		FluentPort: cfg.Port,
		TagPrefix:  cfg.TagPrefix,
		Async:      cfg.Async,
	}
	if cfg.WriteTimeout > 0 {
		fluentCfg.WriteTimeout = cfg.WriteTimeout
	}

	logger, err := fluent.New(fluentCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create fluentd logger: %w", err)
	}
	return logger, nil
}
