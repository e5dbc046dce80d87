package config

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// News source keys accepted in NEWS_SOURCES / news_sources.
const (
	SourceCryptoDaily  = "cryptodaily"
	SourceNewsAPI65    = "newsapi65"
	SourceFinnhub      = "finnhub"
	SourceAlphaVantage = "alphavantage"
	SourceMassive      = "massive"
	SourceWordPress    = "wordpress"
)

var knownSources = []string{
	SourceCryptoDaily,
	SourceNewsAPI65,
	SourceFinnhub,
	SourceAlphaVantage,
	SourceMassive,
	SourceWordPress,
}

// Config is read once at startup and never mutated afterwards.
type Config struct {
	CMCAPIKey          string `yaml:"cmc_api_key"`
	CMCEndpoint        string `yaml:"cmc_endpoint"`
	RapidAPIKey        string `yaml:"rapidapi_key"`
	FinnhubAPIKey      string `yaml:"finnhub_api_key"`
	AlphaVantageAPIKey string `yaml:"alpha_vantage_api_key"`
	MassiveAPIKey      string `yaml:"massive_api_key"`
	WordPressBaseURL   string `yaml:"wordpress_base_url"`

	NewsSources     []string      `yaml:"news_sources"`
	NewsLimit       int           `yaml:"news_limit"`
	FilterMode      string        `yaml:"filter_mode"`
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`

	RedisURL string        `yaml:"redis_url"`
	CacheTTL time.Duration `yaml:"cache_ttl"`

	ListenAddr  string `yaml:"listen_addr"`
	FrontendURL string `yaml:"frontend_url"`
	LogLevel    string `yaml:"log_level"`
}

func Defaults() Config {
	return Config{
		NewsSources:     append([]string{}, knownSources...),
		NewsLimit:       10,
		FilterMode:      "title_description",
		UpstreamTimeout: 10 * time.Second,
		CacheTTL:        time.Minute,
		ListenAddr:      ":3030",
		LogLevel:        "info",
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE, and environment variables (a local .env is honoured), in
// that order of precedence.
func Load() (Config, error) {
	godotenv.Load()

	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.CMCAPIKey, "CMC_API_KEY")
	setString(&c.CMCEndpoint, "CMC_ENDPOINT")
	setString(&c.RapidAPIKey, "RAPIDAPI_KEY")
	setString(&c.FinnhubAPIKey, "FINNHUB_API_KEY")
	setString(&c.AlphaVantageAPIKey, "ALPHA_VANTAGE_API_KEY")
	setString(&c.MassiveAPIKey, "MASSIVE_API_KEY")
	setString(&c.WordPressBaseURL, "WORDPRESS_BASE_URL")
	setString(&c.FilterMode, "FILTER_MODE")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.ListenAddr, "LISTEN_ADDR")
	setString(&c.FrontendURL, "FRONTEND_URL")
	setString(&c.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("NEWS_SOURCES"); v != "" {
		c.NewsSources = splitList(v)
	}

	if v := os.Getenv("NEWS_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid NEWS_LIMIT %q: %w", v, err)
		}
		c.NewsLimit = n
	}

	if err := setDuration(&c.UpstreamTimeout, "UPSTREAM_TIMEOUT"); err != nil {
		return err
	}
	return setDuration(&c.CacheTTL, "CACHE_TTL")
}

// Validate checks values that would otherwise fail on first request.
func (c *Config) Validate() error {
	for i, name := range c.NewsSources {
		name = strings.ToLower(strings.TrimSpace(name))
		if !slices.Contains(knownSources, name) {
			return fmt.Errorf("unknown news source %q (known: %s)", name, strings.Join(knownSources, ", "))
		}
		c.NewsSources[i] = name
	}

	c.FilterMode = strings.ToLower(strings.TrimSpace(c.FilterMode))
	switch c.FilterMode {
	case "title", "title_description":
	default:
		return fmt.Errorf("invalid filter_mode %q: must be title or title_description", c.FilterMode)
	}

	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream_timeout must be positive, got %s", c.UpstreamTimeout)
	}
	if c.RedisURL != "" && c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive when redis is enabled, got %s", c.CacheTTL)
	}
	if c.NewsLimit < 1 {
		return fmt.Errorf("news_limit must be at least 1, got %d", c.NewsLimit)
	}

	return nil
}

// MissingCredentials names the credentials enabled upstreams need but do not
// have. Those upstreams stay registered and degrade on every request.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.CMCAPIKey == "" {
		missing = append(missing, "CMC_API_KEY")
	}

	needs := map[string][2]string{
		SourceCryptoDaily:  {"RAPIDAPI_KEY", c.RapidAPIKey},
		SourceNewsAPI65:    {"RAPIDAPI_KEY", c.RapidAPIKey},
		SourceFinnhub:      {"FINNHUB_API_KEY", c.FinnhubAPIKey},
		SourceAlphaVantage: {"ALPHA_VANTAGE_API_KEY", c.AlphaVantageAPIKey},
		SourceMassive:      {"MASSIVE_API_KEY", c.MassiveAPIKey},
		SourceWordPress:    {"WORDPRESS_BASE_URL", c.WordPressBaseURL},
	}

	seen := map[string]bool{}
	for _, name := range c.NewsSources {
		need, ok := needs[name]
		if !ok || need[1] != "" || seen[need[0]] {
			continue
		}
		seen[need[0]] = true
		missing = append(missing, need[0])
	}
	return missing
}

// SlogLevel maps LogLevel onto slog, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
