package config

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisStateDB  int    `mapstructure:"REDIS_STATE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// MongoDB configuration.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Bot Framework channel credentials. An empty app id runs the bot in
	// emulator mode without authentication.
	BotAppID         string `mapstructure:"BOT_APP_ID"`
	BotAppPassword   string `mapstructure:"BOT_APP_PASSWORD"`
	BotOpenIDKeysURL string `mapstructure:"BOT_OPENID_KEYS_URL"`
	BotTokenURL      string `mapstructure:"BOT_TOKEN_URL"`
	BotTokenScope    string `mapstructure:"BOT_TOKEN_SCOPE"`

	// Language understanding: "luis", "gemini" or "none".
	Recognizer       string `mapstructure:"RECOGNIZER"`
	LuisAppID        string `mapstructure:"LUIS_APP_ID"`
	LuisPredKey      string `mapstructure:"LUIS_PRED_KEY"`
	LuisPredEndpoint string `mapstructure:"LUIS_PRED_ENDPOINT"`
	LuisSlot         string `mapstructure:"LUIS_SLOT"`
	GeminiAPIKey     string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel      string `mapstructure:"GEMINI_MODEL"`

	// Conversation state: "memory" or "redis".
	StateStore      string `mapstructure:"STATE_STORE"`
	StateTTLMinutes int    `mapstructure:"STATE_TTL_MINUTES"`

	// Telemetry: "none", "log" or "mongo".
	TelemetrySink      string `mapstructure:"TELEMETRY_SINK"`
	TelemetryQueueSize int    `mapstructure:"TELEMETRY_QUEUE_SIZE"`

	BookingQueueEnabled bool `mapstructure:"BOOKING_QUEUE_ENABLED"`
}

var current atomic.Pointer[Config]

// Get returns a copy of the loaded configuration. It is safe to call while
// WatchConfig swaps in a reloaded one.
func Get() Config {
	if c := current.Load(); c != nil {
		return *c
	}
	return Config{}
}

// Set replaces the active configuration.
func Set(c Config) {
	current.Store(&c)
}

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	Set(cfg)
}

// WatchConfig reloads the configuration whenever the config file changes and then
// calls onChange. Only settings read per request (such as LOG_LEVEL) take
// effect without a restart.
func WatchConfig(onChange func(e fsnotify.Event)) {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		var next Config
		if err := viper.Unmarshal(&next); err != nil {
			log.Printf("Ignoring invalid config change in %s: %v", e.Name, err)
			return
		}
		Set(next)
		if onChange != nil {
			onChange(e)
		}
	})
	viper.WatchConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_STATE_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)

	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "flybot")

	v.SetDefault("BOT_APP_ID", "")
	v.SetDefault("BOT_APP_PASSWORD", "")
	v.SetDefault("BOT_OPENID_KEYS_URL", "https://login.botframework.com/v1/.well-known/keys")
	v.SetDefault("BOT_TOKEN_URL", "https://login.microsoftonline.com/botframework.com/oauth2/v2.0/token")
	v.SetDefault("BOT_TOKEN_SCOPE", "https://api.botframework.com/.default")

	v.SetDefault("RECOGNIZER", "luis")
	v.SetDefault("LUIS_APP_ID", "")
	v.SetDefault("LUIS_PRED_KEY", "")
	v.SetDefault("LUIS_PRED_ENDPOINT", "")
	v.SetDefault("LUIS_SLOT", "production")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")

	v.SetDefault("STATE_STORE", "memory")
	v.SetDefault("STATE_TTL_MINUTES", 60)

	v.SetDefault("TELEMETRY_SINK", "log")
	v.SetDefault("TELEMETRY_QUEUE_SIZE", 10)

	v.SetDefault("BOOKING_QUEUE_ENABLED", false)
}

// StateTTL is the idle time after which a conversation's state expires.
func (c Config) StateTTL() time.Duration {
	return time.Duration(c.StateTTLMinutes) * time.Minute
}

func GetEnv() string {
	return Get().Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
