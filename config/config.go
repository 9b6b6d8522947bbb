package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"feedsyncd/models"
	"feedsyncd/storage"
)

type Config struct {
	DatabaseURL    string
	OpsDBPath      string
	DefaultFeedURL string
	FeedTimeout    time.Duration
	TickInterval   time.Duration
	SyncWaitWindow time.Duration
	ScheduleTZ     string
	HTTPAddr       string
	LogPath        string
	S3             storage.S3Config
	Feeds          []FeedDef
}

// FeedDef is one YAML feed definition, seeded into the database at
// startup. Administrators own the rows afterwards.
type FeedDef struct {
	Name     string `yaml:"name"`
	Slug     string `yaml:"slug"`
	URL      string `yaml:"url"`
	Type     string `yaml:"type"`
	Enabled  bool   `yaml:"enabled"`
	Schedule struct {
		Enabled   bool   `yaml:"enabled"`
		Frequency string `yaml:"frequency"`
		Time      string `yaml:"time"`
		DayOfWeek int    `yaml:"day_of_week"`
	} `yaml:"schedule"`
}

func (d *FeedDef) ToModel() *models.SyncFeed {
	feedType := d.Type
	if feedType == "" {
		feedType = models.FeedTypeXML
	}
	frequency := d.Schedule.Frequency
	if frequency == "" {
		frequency = string(models.FrequencyDaily)
	}
	scheduleTime := d.Schedule.Time
	if scheduleTime == "" {
		scheduleTime = "00:00:00"
	}
	return &models.SyncFeed{
		Name:              d.Name,
		Slug:              d.Slug,
		FeedURL:           d.URL,
		FeedType:          feedType,
		IsEnabled:         d.Enabled,
		ScheduleEnabled:   d.Schedule.Enabled,
		ScheduleFrequency: models.ScheduleFrequency(frequency),
		ScheduleTime:      scheduleTime,
		ScheduleDayOfWeek: d.Schedule.DayOfWeek,
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		OpsDBPath:      getEnv("OPS_DB_PATH", "feedsyncd.db"),
		DefaultFeedURL: os.Getenv("DEFAULT_FEED_URL"),
		FeedTimeout:    getEnvDuration("FEED_TIMEOUT", 30*time.Second),
		TickInterval:   getEnvDuration("TICK_INTERVAL", time.Minute),
		SyncWaitWindow: getEnvDuration("SYNC_WAIT_WINDOW", 10*time.Second),
		ScheduleTZ:     getEnv("SCHEDULE_TZ", "UTC"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8085"),
		LogPath:        getEnv("LOG_PATH", "daemon.log"),
		S3: storage.S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
	}

	if err := cfg.loadFeedDefs(getEnv("FEEDS_DIR", "config/feeds")); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Location resolves the schedule reference timezone; the 6h/12h
// boundaries anchor to midnight of this location.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.ScheduleTZ)
}

func (c *Config) loadFeedDefs(dir string) error {
	entries, err := os.ReadDir(dir)
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

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}

		var def FeedDef
		if err := yaml.Unmarshal(data, &def); err != nil {
			return err
		}
		if def.Slug == "" {
			continue
		}
		c.Feeds = append(c.Feeds, def)
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
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
