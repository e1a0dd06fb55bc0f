package config

import (
	"errors"
	"fmt"
	"time"
)

type (
	// Limits bounds how much a single message head may take. A Limits value is shared
	// read-only between all the connections, so it must never be modified after the
	// server has started.
	Limits struct {
		// MaxStartLineBytes limits the request (or status) line, excluding the line
		// terminator.
		MaxStartLineBytes int `mapstructure:"max_start_line_bytes"`
		// MaxHeaderNameBytes limits a single header name.
		MaxHeaderNameBytes int `mapstructure:"max_header_name_bytes"`
		// MaxHeaderValueBytes limits a single header value, with folded continuations
		// counted in.
		MaxHeaderValueBytes int `mapstructure:"max_header_value_bytes"`
		// MaxHeaderCount is the maximal number of header lines.
		MaxHeaderCount int `mapstructure:"max_header_count"`
		// MaxTotalHeaderBytes limits the whole header block (everything after the start
		// line, terminators included).
		MaxTotalHeaderBytes int `mapstructure:"max_total_header_bytes"`
		// AllowedMethods restricts request methods. Nil accepts any token-shaped method.
		AllowedMethods []string `mapstructure:"allowed_methods" test:"nullable"`
		// AllowedVersions are compared with the version token exactly (case-sensitive).
		AllowedVersions []string `mapstructure:"allowed_versions"`
	}

	NET struct {
		// Addr is the address the demo server listens on.
		Addr string `mapstructure:"addr"`
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// socket.
		ReadBufferSize int `mapstructure:"read_buffer_size"`
		// ReadTimeout controls the maximal lifetime of IDLE connections. If no data was
		// received in this period of time, it'll be closed.
		ReadTimeout time.Duration `mapstructure:"read_timeout"`
		// AcceptRate limits the number of accepted connections per second.
		AcceptRate float64 `mapstructure:"accept_rate"`
		// AcceptBurst is the token bucket size for AcceptRate.
		AcceptBurst int `mapstructure:"accept_burst"`
		// MaxBodySize is the most the server drains from a request body before giving
		// up on the connection.
		MaxBodySize int64 `mapstructure:"max_body_size"`
	}

	Logger struct {
		Level       string `mapstructure:"level"`
		Format      string `mapstructure:"format"`
		ServiceName string `mapstructure:"service_name"`
		AddSource   bool   `mapstructure:"add_source" test:"nullable"`
		// LogFile enables an additional JSON log, rotated by size.
		LogFile    string `mapstructure:"log_file" test:"nullable"`
		MaxSize    int    `mapstructure:"max_size"`
		MaxBackups int    `mapstructure:"max_backups"`
		MaxAge     int    `mapstructure:"max_age"`
		Compress   bool   `mapstructure:"compress"`
	}
)

// Config holds everything the server needs: parser limits, networking and logging.
//
// You should modify defaults (returned via Default()) rather than initialize the config
// manually, as zero limits reject every message.
type Config struct {
	Limits Limits `mapstructure:"limits"`
	NET    NET    `mapstructure:"net"`
	Logger Logger `mapstructure:"logger"`
}

// DefaultLimits returns limits fitting most deployments. The header number and value
// size follow the usual application server defaults: at most 500 headers, 16kb per
// token.
func DefaultLimits() Limits {
	return Limits{
		MaxStartLineBytes:   16 * 1024,
		MaxHeaderNameBytes:  256,
		MaxHeaderValueBytes: 16 * 1024,
		MaxHeaderCount:      500,
		// a bit more than a single maximal value, as there also might be extremely
		// long cookies.
		MaxTotalHeaderBytes: 64 * 1024,
		AllowedVersions:     []string{"HTTP/1.1", "HTTP/1.0"},
	}
}

// Default returns default config.
func Default() *Config {
	return &Config{
		Limits: DefaultLimits(),
		NET: NET{
			Addr:           "localhost:8080",
			ReadBufferSize: 4 * 1024,
			ReadTimeout:    90 * time.Second,
			AcceptRate:     1000,
			AcceptBurst:    100,
			MaxBodySize:    16 * 1024 * 1024,
		},
		Logger: Logger{
			Level:       "info",
			Format:      "console",
			ServiceName: "httphead",
			MaxSize:     100,
			MaxBackups:  5,
			MaxAge:      30,
			Compress:    true,
		},
	}
}

var errNonPositive = errors.New("must be a positive integer")

// Validate checks the limits for sane values.
func (l *Limits) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"max_start_line_bytes", l.MaxStartLineBytes},
		{"max_header_name_bytes", l.MaxHeaderNameBytes},
		{"max_header_value_bytes", l.MaxHeaderValueBytes},
		{"max_header_count", l.MaxHeaderCount},
		{"max_total_header_bytes", l.MaxTotalHeaderBytes},
	}

	for _, check := range checks {
		if check.value <= 0 {
			return fmt.Errorf("limits.%s: %w", check.name, errNonPositive)
		}
	}

	if len(l.AllowedVersions) == 0 {
		return errors.New("limits.allowed_versions must not be empty")
	}

	if l.AllowedMethods != nil && len(l.AllowedMethods) == 0 {
		return errors.New("limits.allowed_methods is empty, which rejects every request; omit it to allow any method")
	}

	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.Limits.Validate(); err != nil {
		return err
	}

	if c.NET.ReadBufferSize <= 0 {
		return fmt.Errorf("net.read_buffer_size: %w", errNonPositive)
	}

	if c.NET.ReadTimeout <= 0 {
		return errors.New("net.read_timeout must be positive")
	}

	if c.NET.AcceptRate <= 0 || c.NET.AcceptBurst <= 0 {
		return errors.New("net.accept_rate and net.accept_burst must be positive")
	}

	return nil
}

// MethodAllowed reports whether the method passes the AllowedMethods restriction.
func (l *Limits) MethodAllowed(method []byte) bool {
	if l.AllowedMethods == nil {
		return true
	}

	for _, allowed := range l.AllowedMethods {
		if allowed == string(method) {
			return true
		}
	}

	return false
}

// VersionAllowed reports whether the version token is one of AllowedVersions.
func (l *Limits) VersionAllowed(version []byte) bool {
	for _, allowed := range l.AllowedVersions {
		if allowed == string(version) {
			return true
		}
	}

	return false
}
