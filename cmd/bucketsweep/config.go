package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/internal/operations/purge"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/sweeptypes"
)

// envPrefix prefixes every environment variable, e.g. BUCKETSWEEP_ROLE_NAME.
const envPrefix = "BUCKETSWEEP"

// settings is the merged configuration of one invocation.
// Precedence: flag > environment > config file > default.
type settings struct {
	Region               string        `mapstructure:"region"`
	Profile              string        `mapstructure:"profile"`
	Endpoint             string        `mapstructure:"endpoint"`
	ForcePathStyle       bool          `mapstructure:"force-path-style"`
	RoleName             string        `mapstructure:"role-name"`
	Partition            string        `mapstructure:"partition"`
	SessionName          string        `mapstructure:"session-name"`
	SessionDuration      time.Duration `mapstructure:"session-duration"`
	ExternalID           string        `mapstructure:"external-id"`
	Concurrency          int           `mapstructure:"concurrency"`
	MaxRetries           int           `mapstructure:"max-retries"`
	DeleteAttempts       int           `mapstructure:"delete-attempts"`
	RateLimit            float64       `mapstructure:"rate-limit"`
	PageSize             int           `mapstructure:"page-size"`
	DeleteOnPartialPurge bool          `mapstructure:"delete-on-partial-purge"`
	LogLevel             string        `mapstructure:"log-level"`
	LogFormat            string        `mapstructure:"log-format"`
	NoColor              bool          `mapstructure:"no-color"`
}

func defaults() map[string]any {
	return map[string]any{
		"region":                  "",
		"profile":                 "",
		"endpoint":                "",
		"force-path-style":        false,
		"role-name":               "AWSCloudFormationStackSetExecutionRole",
		"partition":               "aws",
		"session-name":            "delete-buckets",
		"session-duration":        time.Duration(0),
		"external-id":             "",
		"concurrency":             1,
		"max-retries":             5,
		"delete-attempts":         3,
		"rate-limit":              0.0,
		"page-size":               1000,
		"delete-on-partial-purge": false,
		"log-level":               "info",
		"log-format":              "text",
		"no-color":                false,
	}
}

func flags() []cli.Flag {
	d := defaults()
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "configuration file (yaml, json or toml)"},
		&cli.StringFlag{Name: "region", Usage: "AWS region for the organization, STS and default S3 calls"},
		&cli.StringFlag{Name: "profile", Usage: "shared config profile for the entry-point credentials"},
		&cli.StringFlag{Name: "endpoint", Usage: "custom endpoint URL for every service (LocalStack)"},
		&cli.BoolFlag{Name: "force-path-style", Usage: "use path-style S3 addressing"},
		&cli.StringFlag{Name: "role-name", Usage: "role assumed in every account", Value: d["role-name"].(string)},
		&cli.StringFlag{Name: "partition", Usage: "ARN partition of the role", Value: d["partition"].(string)},
		&cli.StringFlag{Name: "session-name", Usage: "role session name", Value: d["session-name"].(string)},
		&cli.DurationFlag{Name: "session-duration", Usage: "lifetime of the delegated credentials (0 = STS default)"},
		&cli.StringFlag{Name: "external-id", Usage: "external id required by the role trust policy"},
		&cli.IntFlag{Name: "concurrency", Usage: "accounts swept in parallel", Value: d["concurrency"].(int)},
		&cli.IntFlag{Name: "max-retries", Usage: "SDK attempts per request", Value: d["max-retries"].(int)},
		&cli.IntFlag{Name: "delete-attempts", Usage: "bucket deletion attempts", Value: d["delete-attempts"].(int)},
		&cli.Float64Flag{Name: "rate-limit", Usage: "maximum STS and S3 requests per second (0 = unlimited)"},
		&cli.IntFlag{Name: "page-size", Usage: "object versions per listing page and delete batch (1-1000)", Value: d["page-size"].(int)},
		&cli.BoolFlag{Name: "delete-on-partial-purge", Usage: "attempt bucket deletion even when some versions could not be removed"},
		&cli.StringFlag{Name: "log-level", Usage: "log level: debug, info, warn or error", Value: d["log-level"].(string)},
		&cli.StringFlag{Name: "log-format", Usage: "log format: text or json", Value: d["log-format"].(string)},
		&cli.BoolFlag{Name: "no-color", Usage: "disable colored status output"},
	}
}

// loadSettings merges defaults, the optional config file, BUCKETSWEEP_*
// environment variables and explicitly set flags.
func loadSettings(c *cli.Context) (*settings, error) {
	v := viper.New()

	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	if path := c.String("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key := range defaults() {
		if c.IsSet(key) {
			v.Set(key, c.Value(key))
		}
	}

	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if s.PageSize < 1 || s.PageSize > purge.MaxBatchSize {
		return nil, fmt.Errorf("config: page-size must be between 1 and %d, got %d", purge.MaxBatchSize, s.PageSize)
	}
	return &s, nil
}

// options converts the settings into Cleaner options.
func (s *settings) options(logger *slog.Logger, reporter sweeptypes.Reporter) []sweeptypes.Option {
	opts := []sweeptypes.Option{
		bucketsweep.WithRoleName(s.RoleName),
		bucketsweep.WithPartition(s.Partition),
		bucketsweep.WithSessionName(s.SessionName),
		bucketsweep.WithSessionDuration(s.SessionDuration),
		bucketsweep.WithConcurrency(s.Concurrency),
		bucketsweep.WithMaxRetries(s.MaxRetries),
		bucketsweep.WithDeleteAttempts(s.DeleteAttempts),
		bucketsweep.WithRateLimit(s.RateLimit),
		bucketsweep.WithPageSize(int32(s.PageSize)),
		bucketsweep.WithDeleteOnPartialPurge(s.DeleteOnPartialPurge),
		bucketsweep.WithForcePathStyle(s.ForcePathStyle),
		bucketsweep.WithLogger(logger),
		bucketsweep.WithReporter(reporter),
	}
	if s.Region != "" {
		opts = append(opts, bucketsweep.WithRegion(s.Region))
	}
	if s.Profile != "" {
		opts = append(opts, bucketsweep.WithProfile(s.Profile))
	}
	if s.Endpoint != "" {
		opts = append(opts, bucketsweep.WithEndpoint(s.Endpoint))
	}
	if s.ExternalID != "" {
		opts = append(opts, bucketsweep.WithExternalID(s.ExternalID))
	}
	return opts
}

// newLogger builds the structured logger written to w.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}
