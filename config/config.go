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
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

const (
	configFileEnvName = "STOREFRONT_CONFIG_FILE"
	envPrefix         = "STOREFRONT"
)

const (
	RecentSearchesMemory = "memory"
	RecentSearchesKafka  = "kafka"
)

type consumers struct {
	ProductSaverGroup   string `mapstructure:"product_saver_group"`
	RecentSearchesGroup string `mapstructure:"recent_searches_group"`
}

type topics struct {
	Products          string `mapstructure:"products"`
	SearchEvents      string `mapstructure:"search_events"`
	Partitions        int32  `mapstructure:"partitions"`
	ReplicationFactor int16  `mapstructure:"replication_factor"`
	MinInsyncReplicas int    `mapstructure:"min_insync_replicas"`
}

type tlsFiles struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

func (t tlsFiles) Enabled() bool {
	return t.CA != "" && t.Cert != "" && t.Key != ""
}

type broker struct {
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	TLS                tlsFiles  `mapstructure:"tls"`
	Topics             topics    `mapstructure:"topics"`
	Consumers          consumers `mapstructure:"consumers"`
}

func (b broker) Enabled() bool {
	return len(b.SeedBrokers) != 0
}

type catalog struct {
	SaleRule         string        `mapstructure:"sale_rule"`
	Locale           string        `mapstructure:"locale"`
	SuggestionsLimit int           `mapstructure:"suggestions_limit"`
	RelatedLimit     int           `mapstructure:"related_limit"`
	SourceAttempts   int           `mapstructure:"source_attempts"`
	SourceBackoff    time.Duration `mapstructure:"source_backoff"`
}

type recentSearches struct {
	Backend  string `mapstructure:"backend"`
	Capacity int    `mapstructure:"capacity"`
}

type Config struct {
	LogLevel           slog.Level     `mapstructure:"log_level"`
	HTTPServerAddr     string         `mapstructure:"http_server_addr"`
	HTTPHandlerTimeout time.Duration  `mapstructure:"http_handler_timeout"`
	SQLDB              string         `mapstructure:"sql_db"`
	Catalog            catalog        `mapstructure:"catalog"`
	RecentSearches     recentSearches `mapstructure:"recent_searches"`
	Broker             broker         `mapstructure:"broker"`
}

// Load reads the config file named by the environment or the command line
// and exits the process on failure.
func Load() Config {
	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

// LoadFile reads and validates the config file at path. Unset values take
// their defaults and every key may be overridden by a STOREFRONT_ prefixed
// environment variable.
func LoadFile(path string) (Config, error) {
	const op = "config.LoadFile"

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
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
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", ":8080")
	v.SetDefault("http_handler_timeout", "5s")
	v.SetDefault("sql_db", "")

	v.SetDefault("catalog.sale_rule", string(domain.SaleEither))
	v.SetDefault("catalog.locale", "en")
	v.SetDefault("catalog.suggestions_limit", 6)
	v.SetDefault("catalog.related_limit", 4)
	v.SetDefault("catalog.source_attempts", 3)
	v.SetDefault("catalog.source_backoff", "50ms")

	v.SetDefault("recent_searches.backend", RecentSearchesMemory)
	v.SetDefault("recent_searches.capacity", domain.DefaultRecentCapacity)

	v.SetDefault("broker.seed_brokers", []string{})
	v.SetDefault("broker.schema_registry_urls", []string{})
	v.SetDefault("broker.tls.ca", "")
	v.SetDefault("broker.tls.cert", "")
	v.SetDefault("broker.tls.key", "")
	v.SetDefault("broker.topics.products", "products")
	v.SetDefault("broker.topics.search_events", "search-events")
	v.SetDefault("broker.topics.partitions", 3)
	v.SetDefault("broker.topics.replication_factor", 3)
	v.SetDefault("broker.topics.min_insync_replicas", 1)
	v.SetDefault("broker.consumers.product_saver_group", "product-saver")
	v.SetDefault("broker.consumers.recent_searches_group", "recent-searches")
}

func (c Config) validate() error {
	if _, err := domain.ParseSaleRule(c.Catalog.SaleRule); err != nil {
		return err
	}
	if _, err := language.Parse(c.Catalog.Locale); err != nil {
		return fmt.Errorf("catalog locale %q: %w", c.Catalog.Locale, err)
	}

	switch c.RecentSearches.Backend {
	case RecentSearchesMemory:
	case RecentSearchesKafka:
		if !c.Broker.Enabled() {
			return errors.New("kafka recent searches backend requires seed brokers")
		}
	default:
		return fmt.Errorf(
			"unknown recent searches backend %q", c.RecentSearches.Backend,
		)
	}

	if c.Broker.Enabled() && len(c.Broker.SchemaRegistryURLs) == 0 {
		return errors.New("schema registry urls are required with seed brokers")
	}
	return nil
}

// IngestEnabled reports whether published products can reach storage:
// both the brokers and the database are required.
func (c Config) IngestEnabled() bool {
	return c.Broker.Enabled() && c.SQLDB != ""
}

// SaleRule and Locale are checked on load.
func (c Config) SaleRule() domain.SaleRule {
	r, _ := domain.ParseSaleRule(c.Catalog.SaleRule)
	return r
}

func (c Config) Locale() language.Tag {
	return language.Make(c.Catalog.Locale)
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	HTTPHandlerTimeout=%s
	SQLDB=%q

	Catalog:
	SaleRule=%q
	Locale=%q
	SuggestionsLimit=%d
	RelatedLimit=%d
	SourceAttempts=%d
	SourceBackoff=%s

	RecentSearches:
	Backend=%q
	Capacity=%d

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	TLS=%t
	Topics:
		Products=%q
		SearchEvents=%q
	Consumers:
		ProductSaverGroup=%q
		RecentSearchesGroup=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.HTTPHandlerTimeout,
		redactDSN(c.SQLDB),
		c.Catalog.SaleRule,
		c.Catalog.Locale,
		c.Catalog.SuggestionsLimit,
		c.Catalog.RelatedLimit,
		c.Catalog.SourceAttempts,
		c.Catalog.SourceBackoff,
		c.RecentSearches.Backend,
		c.RecentSearches.Capacity,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.TLS.Enabled(),
		c.Broker.Topics.Products,
		c.Broker.Topics.SearchEvents,
		c.Broker.Consumers.ProductSaverGroup,
		c.Broker.Consumers.RecentSearchesGroup,
	)
}

// redactDSN hides the password of a postgres URL.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return ""
	}
	return u.Redacted()
}
