package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App        AppConfig
	Identity   IdentityConfig
	Brain      BrainConfig
	Memory     MemoryConfig
	Paths      PathsConfig
	Watchers   WatchersConfig
	WorkerPool WorkerPoolConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	CorsAllowedOrigins []string
}

// IdentityConfig is the ground-truth fact table for the assistant persona.
// Loaded once and read-only for the process lifetime; the reflex matcher and
// system prompts must never contradict it.
type IdentityConfig struct {
	BotName       string
	BotRole       string
	UserName      string
	UserRole      string
	LanguageStyle string
	Mode          string
}

type BrainConfig struct {
	LocalBaseURL  string
	LocalModel    string
	EmbedModel    string
	CloudModel    string
	CloudAPIKey   string
	CloudKeywords []string
	RecallK       int
}

type MemoryConfig struct {
	DBPath string
}

type PathsConfig struct {
	BaseDir     string
	Screenshots string
	Protected   string
}

type WatchersConfig struct {
	PresenceIntervalSec int
	PresenceMissLimit   int
	SentryEnabled       bool
	RetinaIntervalMin   int
	Bedtime             string // "HH:MM"
	BedtimeWarning      string // "HH:MM"
	ForcedLock          bool
	BedtimeGraceSec     int
	MealTimes           []string // "HH:MM" entries
	WaterIntervalMin    int
	AwayLockDelaySec    int
}

type WorkerPoolConfig struct {
	Size      int
	QueueSize int
}

// Global provides access to the loaded configuration globally. Services take
// the config by injection; Global exists for leaf helpers only.
var Global *Config

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// LoadConfig loads configuration from environment variables or defaults.
func LoadConfig() (*Config, error) {
	baseDir := getEnv("APP_BASE_DIR", "storages")

	cors := []string{"http://localhost:5173", "http://localhost:3000"}
	if v := viper.GetString("APP_CORS_ALLOWED_ORIGINS"); v != "" {
		cors = strings.Split(v, ",")
	}

	cloudKeywords := []string{"interview", "architecture", "anxiety", "salary", "future", "code", "plan", "complex"}
	if v := viper.GetString("BRAIN_CLOUD_KEYWORDS"); v != "" {
		cloudKeywords = splitTrimmed(v)
	}

	mealTimes := []string{"09:00", "13:30", "20:30"}
	if v := viper.GetString("FEEDER_MEAL_TIMES"); v != "" {
		mealTimes = splitTrimmed(v)
	}

	cfg := &Config{
		App: AppConfig{
			Version:            "v0.3.0",
			Port:               getEnv("APP_PORT", "8080"),
			Debug:              getEnvBool("APP_DEBUG", false),
			Environment:        getEnv("APP_ENV", "development"),
			CorsAllowedOrigins: cors,
		},
		Identity: IdentityConfig{
			BotName:       getEnv("IDENTITY_BOT_NAME", "Sayra"),
			BotRole:       getEnv("IDENTITY_BOT_ROLE", "personal AI system"),
			UserName:      getEnv("IDENTITY_USER_NAME", "Boss"),
			UserRole:      getEnv("IDENTITY_USER_ROLE", "creator"),
			LanguageStyle: getEnv("IDENTITY_LANGUAGE_STYLE", "concise English"),
			Mode:          getEnv("IDENTITY_MODE", "guardian"),
		},
		Brain: BrainConfig{
			LocalBaseURL:  getEnv("BRAIN_LOCAL_BASE_URL", "http://localhost:11434/v1"),
			LocalModel:    getEnv("BRAIN_LOCAL_MODEL", "llama3.1:8b"),
			EmbedModel:    getEnv("BRAIN_EMBED_MODEL", "nomic-embed-text"),
			CloudModel:    getEnv("BRAIN_CLOUD_MODEL", "gemini-2.0-flash"),
			CloudAPIKey:   getEnv("GEMINI_API_KEY", ""),
			CloudKeywords: cloudKeywords,
			RecallK:       getEnvInt("BRAIN_RECALL_K", 2),
		},
		Memory: MemoryConfig{
			DBPath: getEnv("MEMORY_DB_PATH", filepath.Join(baseDir, "memory.db")),
		},
		Paths: PathsConfig{
			BaseDir:     baseDir,
			Screenshots: getEnv("PATH_SCREENSHOTS", defaultUserDir("Pictures")),
			Protected:   getEnv("PATH_PROTECTED", filepath.Join(baseDir, "protected")),
		},
		Watchers: WatchersConfig{
			PresenceIntervalSec: getEnvInt("PRESENCE_INTERVAL_SEC", 5),
			PresenceMissLimit:   getEnvInt("PRESENCE_MISS_LIMIT", 4),
			SentryEnabled:       getEnvBool("SENTRY_ENABLED", true),
			RetinaIntervalMin:   getEnvInt("RETINA_INTERVAL_MIN", 20),
			Bedtime:             getEnv("CIRCADIAN_BEDTIME", "23:00"),
			BedtimeWarning:      getEnv("CIRCADIAN_WARNING", "22:45"),
			ForcedLock:          getEnvBool("CIRCADIAN_FORCED_LOCK", false),
			BedtimeGraceSec:     getEnvInt("CIRCADIAN_GRACE_SEC", 5),
			MealTimes:           mealTimes,
			WaterIntervalMin:    getEnvInt("FEEDER_WATER_INTERVAL_MIN", 45),
			AwayLockDelaySec:    getEnvInt("AWAY_LOCK_DELAY_SEC", 10),
		},
		WorkerPool: WorkerPoolConfig{
			Size:      getEnvInt("WORKER_POOL_SIZE", 4),
			QueueSize: getEnvInt("WORKER_QUEUE_SIZE", 64),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	Global = cfg
	return cfg, nil
}

// Validate checks the time strings and intervals that would otherwise fail
// silently deep inside a watcher loop.
func (c *Config) Validate() error {
	err := validation.Errors{
		"circadian_bedtime": validation.Validate(c.Watchers.Bedtime,
			validation.Required, validation.Match(clockPattern)),
		"circadian_warning": validation.Validate(c.Watchers.BedtimeWarning,
			validation.Required, validation.Match(clockPattern)),
		"presence_interval": validation.Validate(c.Watchers.PresenceIntervalSec,
			validation.Min(1)),
		"presence_miss_limit": validation.Validate(c.Watchers.PresenceMissLimit,
			validation.Min(1)),
		"retina_interval": validation.Validate(c.Watchers.RetinaIntervalMin,
			validation.Min(1)),
		"water_interval": validation.Validate(c.Watchers.WaterIntervalMin,
			validation.Min(1)),
		"recall_k": validation.Validate(c.Brain.RecallK, validation.Min(1)),
	}.Filter()
	if err != nil {
		return err
	}

	for _, meal := range c.Watchers.MealTimes {
		if err := validation.Validate(meal, validation.Match(clockPattern)); err != nil {
			return validation.Errors{"feeder_meal_times": err}.Filter()
		}
	}
	return nil
}

func splitTrimmed(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func defaultUserDir(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, name)
}
