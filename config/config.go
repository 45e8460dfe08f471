package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Provider  ProviderConfig
	Database  DatabaseConfig
	Scheduler SchedulerConfig
	Sync      SyncConfig
	Refresh   RefreshConfig
	OpsDBPath string
	LogPath   string
	Markets   map[string]*MarketConfig
}

type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type DatabaseConfig struct {
	URL string
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

type SyncConfig struct {
	DefaultStartDate       time.Time
	PageSize               int
	BatchSize              int
	BatchDelay             time.Duration
	CheckpointEvery        int
	AVMDivergenceThreshold float64
	ExcludeNewConstruction bool
}

type RefreshConfig struct {
	Interval  time.Duration
	BatchSize int
}

type MarketConfig struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	State     string `yaml:"state"`
	MSA       string `yaml:"msa"`
	StartDate string `yaml:"start_date"`
	Disabled  bool   `yaml:"disabled"`
}

// StartTime parses the market's optional sync start override. Zero when the
// market has none.
func (m *MarketConfig) StartTime() (time.Time, error) {
	if m.StartDate == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", m.StartDate)
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Provider: ProviderConfig{
			APIKey:  os.Getenv("PROVIDER_API_KEY"),
			BaseURL: os.Getenv("PROVIDER_BASE_URL"),
			Timeout: time.Duration(getEnvInt("HTTP_TIMEOUT_MS", 30000)) * time.Millisecond,
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("SYNC_CRON"),
		},
		Sync: SyncConfig{
			PageSize:               getEnvInt("SYNC_PAGE_SIZE", 100),
			BatchSize:              getEnvInt("SYNC_BATCH_SIZE", 100),
			BatchDelay:             time.Duration(getEnvInt("SYNC_BATCH_DELAY_MS", 1000)) * time.Millisecond,
			CheckpointEvery:        getEnvInt("SYNC_CHECKPOINT_EVERY", 50),
			AVMDivergenceThreshold: getEnvFloat("AVM_DIVERGENCE_THRESHOLD", 1000000),
			ExcludeNewConstruction: getEnvBool("EXCLUDE_NEW_CONSTRUCTION", true),
		},
		Refresh: RefreshConfig{
			Interval:  time.Duration(getEnvInt("REFRESH_INTERVAL_MIN", 360)) * time.Minute,
			BatchSize: getEnvInt("REFRESH_BATCH_SIZE", 100),
		},
		OpsDBPath: getEnv("OPS_DB_PATH", "parcelsync.db"),
		LogPath:   getEnv("LOG_PATH", "parcelsync.log"),
		Markets:   make(map[string]*MarketConfig),
	}

	if interval := os.Getenv("SYNC_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	start := getEnv("SYNC_START_DATE", "2024-01-01")
	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_START_DATE %q: %w", start, err)
	}
	cfg.Sync.DefaultStartDate = startDate

	if err := cfg.loadMarketConfigs(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports misconfiguration that must abort a run before any market
// is touched.
func (c *Config) Validate() error {
	if c.Provider.APIKey == "" {
		return fmt.Errorf("PROVIDER_API_KEY is not set")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	return nil
}

func (c *Config) loadMarketConfigs() error {
	configDir := "config/markets"
	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(configDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var market MarketConfig
		if err := yaml.Unmarshal(data, &market); err != nil {
			return err
		}

		c.Markets[market.ID] = &market
	}

	return nil
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

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
