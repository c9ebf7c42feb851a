package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "IMGCHECK"
	configFileEnvName = envPrefix + "_CONFIG_FILE"
)

const (
	defaultBaseURL   = "http://localhost:5135"
	defaultProductID = 2
	defaultKnownHost = "velykapet.com"
	defaultTimeout   = 10 * time.Second
	defaultLogLevel  = "info"
	defaultReports   = "imgcheck-reports"
	defaultFindings  = "imgcheck-findings"
)

var ErrInvalidConfig = errors.New("invalid config")

type topics struct {
	Reports  string `mapstructure:"reports"`
	Findings string `mapstructure:"findings"`
}

type tlsFiles struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

// Enabled reports whether all three files are set.
func (t tlsFiles) Enabled() bool {
	return t.CA != "" && t.Cert != "" && t.Key != ""
}

type broker struct {
	SeedBrokers        []string `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string `mapstructure:"schema_registry_urls"`
	Topics             topics   `mapstructure:"topics"`
	TLS                tlsFiles `mapstructure:"tls"`
}

// Enabled reports whether the run outcome is published to Kafka.
func (b broker) Enabled() bool {
	return len(b.SeedBrokers) != 0
}

type export struct {
	JSON string `mapstructure:"json"`
	URLs string `mapstructure:"urls"`
}

type Config struct {
	LogLevel    slog.Level    `mapstructure:"log_level"`
	BaseURL     string        `mapstructure:"base_url"`
	ProductID   int           `mapstructure:"product_id"`
	KnownHost   string        `mapstructure:"known_host"`
	Timeout     time.Duration `mapstructure:"timeout"`
	ProbeImages bool          `mapstructure:"probe_images"`
	Strict      bool          `mapstructure:"strict"`
	Export      export        `mapstructure:"export"`
	SQLDB       string        `mapstructure:"sql_db"`
	Broker      broker        `mapstructure:"broker"`
}

// Load reads flags, environment and the optional config file.
// It exits with status 2 on any configuration error.
func Load() Config {
	_ = godotenv.Load()

	cfg, err := load(os.Args[0], os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		die(err)
	}
	return cfg
}

func load(name string, args []string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	fs := newFlagSet(name)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := bindFlags(v, fs); err != nil {
		return Config{}, err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := configFilepath(fs); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("base_url", defaultBaseURL)
	v.SetDefault("product_id", defaultProductID)
	v.SetDefault("known_host", defaultKnownHost)
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("probe_images", false)
	v.SetDefault("strict", false)
	v.SetDefault("export.json", "")
	v.SetDefault("export.urls", "")
	v.SetDefault("sql_db", "")
	v.SetDefault("broker.seed_brokers", []string{})
	v.SetDefault("broker.schema_registry_urls", []string{})
	v.SetDefault("broker.topics.reports", defaultReports)
	v.SetDefault("broker.topics.findings", defaultFindings)
	v.SetDefault("broker.tls.ca", "")
	v.SetDefault("broker.tls.cert", "")
	v.SetDefault("broker.tls.key", "")
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "config file")
	fs.String("base-url", defaultBaseURL, "product API base URL")
	fs.Int("product-id", defaultProductID, "product fetched by id")
	fs.String("known-host", defaultKnownHost, "known image storage host")
	fs.Duration("timeout", defaultTimeout, "per request timeout")
	fs.String("log-level", defaultLogLevel, "log level")
	fs.Bool("probe-images", false, "send HEAD to every first image")
	fs.Bool("strict", false, "fail on inconsistent products")
	fs.String("export-json", "", "write the report as JSON to the file")
	fs.String("export-urls", "", "write the image URLs to the file")
	return fs
}

var flagKeys = map[string]string{
	"base-url":     "base_url",
	"product-id":   "product_id",
	"known-host":   "known_host",
	"timeout":      "timeout",
	"log-level":    "log_level",
	"probe-images": "probe_images",
	"strict":       "strict",
	"export-json":  "export.json",
	"export-urls":  "export.urls",
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

func configFilepath(fs *pflag.FlagSet) string {
	if f := fs.Lookup("config"); f != nil && f.Changed {
		return f.Value.String()
	}
	if env, ok := os.LookupEnv(configFileEnvName); ok {
		return env
	}
	return ""
}

func (c Config) validate() error {
	var errs []error

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("base_url: %q is not an http(s) URL", c.BaseURL))
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("timeout: must be positive"))
	}
	if c.Broker.Enabled() && len(c.Broker.SchemaRegistryURLs) == 0 {
		errs = append(errs, errors.New("broker.schema_registry_urls: required with seed_brokers"))
	}
	if c.Broker.Enabled() && (c.Broker.Topics.Reports == "" || c.Broker.Topics.Findings == "") {
		errs = append(errs, errors.New("broker.topics: reports and findings are required"))
	}

	if len(errs) != 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func die(err error) {
	fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	BaseURL=%q
	ProductID=%d
	KnownHost=%q
	Timeout=%s
	ProbeImages=%t
	Strict=%t
	ExportJSON=%q
	ExportURLs=%q
	SQLDB=%t

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	TLS=%t
	Topics:
		Reports=%q
		Findings=%q

`
	fmt.Fprintln(os.Stderr, "Loaded config:")
	fmt.Fprintf(
		os.Stderr,
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.BaseURL,
		c.ProductID,
		c.KnownHost,
		c.Timeout,
		c.ProbeImages,
		c.Strict,
		c.Export.JSON,
		c.Export.URLs,
		c.SQLDB != "",
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.TLS.Enabled(),
		c.Broker.Topics.Reports,
		c.Broker.Topics.Findings,
	)
}
