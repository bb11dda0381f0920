package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultEndpoint = "https://www.googleapis.com/customsearch/v1"

// ErrMissingCredentials is the only fatal configuration error: the search
// endpoint cannot be called without an API key and search engine ID.
var ErrMissingCredentials = errors.New("missing search API credentials")

type Config struct {
	Search    SearchConfig
	Proxy     ProxyConfig
	Storage   StorageConfig
	S3        S3Config
	Scheduler SchedulerConfig
	LogLevel  string
	LogPath   string
	Sites     map[string]*SiteConfig
	Watches   []WatchConfig

	sitesDir    string
	watchesPath string
}

type SearchConfig struct {
	APIKey      string
	EngineID    string
	Endpoint    string
	Concurrency int
	Delay       time.Duration
	Timeout     time.Duration
	Deadline    time.Duration
	EarlyStop   int
	MinResults  int
	MaxResults  int
}

type ProxyConfig struct {
	URL string
}

type StorageConfig struct {
	DBPath      string
	DatabaseURL string
}

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
	Prefix          string
}

// Enabled reports whether report uploads are configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

type SchedulerConfig struct {
	Cron string
}

// SiteConfig describes one known listing site for the page tier.
type SiteConfig struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Domain      string            `yaml:"domain"`
	Handler     string            `yaml:"handler"`
	URLTemplate string            `yaml:"url_template"`
	TypePaths   map[string]string `yaml:"type_paths"`
	Enabled     bool              `yaml:"enabled"`
}

// WatchConfig is a saved search re-run on a cron schedule.
type WatchConfig struct {
	Name         string  `yaml:"name"`
	Cron         string  `yaml:"cron"`
	Location     string  `yaml:"location"`
	PropertyType string  `yaml:"property_type"`
	MaxPrice     int     `yaml:"max_price"`
	MinAcres     float64 `yaml:"min_acres"`
	Upload       bool    `yaml:"upload"`
}

type watchFile struct {
	Watches []WatchConfig `yaml:"watches"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Search: SearchConfig{
			APIKey:      getEnv("SEARCH_API_KEY", os.Getenv("GOOGLE_API_KEY")),
			EngineID:    getEnv("SEARCH_ENGINE_ID", os.Getenv("GOOGLE_CSE_ID")),
			Endpoint:    getEnv("SEARCH_ENDPOINT", defaultEndpoint),
			Concurrency: getEnvInt("SEARCH_CONCURRENCY", 3),
			Delay:       time.Duration(getEnvInt("SEARCH_DELAY_MS", 500)) * time.Millisecond,
			Timeout:     getEnvDuration("SEARCH_TIMEOUT", 15*time.Second),
			Deadline:    getEnvDuration("SEARCH_DEADLINE", 60*time.Second),
			EarlyStop:   getEnvInt("SEARCH_EARLY_STOP", 15),
			MinResults:  getEnvInt("SEARCH_MIN_RESULTS", 5),
			MaxResults:  getEnvInt("SEARCH_MAX_RESULTS", 25),
		},
		Proxy: ProxyConfig{
			URL: os.Getenv("PROXY_URL"),
		},
		Storage: StorageConfig{
			DBPath:      getEnv("DB_PATH", "deal_hunter.db"),
			DatabaseURL: os.Getenv("DATABASE_URL"),
		},
		S3: S3Config{
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          os.Getenv("S3_BUCKET"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			PublicURL:       os.Getenv("S3_PUBLIC_URL"),
			Prefix:          getEnv("S3_PREFIX", "reports"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("SEARCH_CRON"),
		},
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogPath:     getEnv("LOG_PATH", "deal_hunter.log"),
		Sites:       make(map[string]*SiteConfig),
		sitesDir:    getEnv("SITES_DIR", "config/sites"),
		watchesPath: getEnv("WATCHES_PATH", "config/watches.yaml"),
	}

	if err := cfg.loadSiteConfigs(); err != nil {
		return nil, fmt.Errorf("load site configs: %w", err)
	}
	if err := cfg.loadWatches(); err != nil {
		return nil, fmt.Errorf("load watches: %w", err)
	}

	return cfg, nil
}

// Validate checks what the engine needs before any search call is made.
func (c *Config) Validate() error {
	if c.Search.APIKey == "" || c.Search.EngineID == "" {
		return ErrMissingCredentials
	}
	if c.Search.Concurrency < 1 {
		c.Search.Concurrency = 1
	}
	if c.Search.MaxResults < 1 {
		c.Search.MaxResults = 25
	}
	return nil
}

// EnabledSites returns the enabled sites ordered by ID.
func (c *Config) EnabledSites() []*SiteConfig {
	var sites []*SiteConfig
	for _, s := range c.Sites {
		if s.Enabled {
			sites = append(sites, s)
		}
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].ID < sites[j].ID })
	return sites
}

func (c *Config) loadSiteConfigs() error {
	entries, err := os.ReadDir(c.sitesDir)
	if err != nil {
		if os.IsNotExist(err) {
			for _, site := range DefaultSites() {
				c.Sites[site.ID] = site
			}
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(c.sitesDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		site := SiteConfig{Handler: "http", Enabled: true}
		if err := yaml.Unmarshal(data, &site); err != nil {
			return fmt.Errorf("%s: %w", entry.Name(), err)
		}
		if site.ID == "" || site.URLTemplate == "" {
			return fmt.Errorf("%s: id and url_template are required", entry.Name())
		}

		c.Sites[site.ID] = &site
	}

	return nil
}

func (c *Config) loadWatches() error {
	data, err := os.ReadFile(c.watchesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var wf watchFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return err
	}
	for i, w := range wf.Watches {
		if w.Location == "" {
			return fmt.Errorf("watch %d (%s): location is required", i, w.Name)
		}
		if w.Cron == "" {
			wf.Watches[i].Cron = c.Scheduler.Cron
		}
	}
	c.Watches = wf.Watches
	return nil
}

// DefaultSites is the built-in page tier used when no site directory exists.
func DefaultSites() []*SiteConfig {
	return []*SiteConfig{
		{
			ID:          "zillow",
			Name:        "Zillow",
			Domain:      "zillow.com",
			Handler:     "http",
			URLTemplate: "https://www.zillow.com/{location_slug}/{type_path}",
			TypePaths:   map[string]string{"land": "land/", "residential": "", "multifamily": "multi-family/"},
			Enabled:     true,
		},
		{
			ID:          "realtor",
			Name:        "Realtor.com",
			Domain:      "realtor.com",
			Handler:     "http",
			URLTemplate: "https://www.realtor.com/realestateandhomes-search/{city_state}/{type_path}",
			TypePaths:   map[string]string{"land": "type-land", "residential": "type-single-family-home", "multifamily": "type-multi-family-home"},
			Enabled:     true,
		},
		{
			ID:          "landwatch",
			Name:        "LandWatch",
			Domain:      "landwatch.com",
			Handler:     "http",
			URLTemplate: "https://www.landwatch.com/{state_name}-land-for-sale/{city_slug}",
			Enabled:     true,
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
