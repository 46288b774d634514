package internal

import (
	"backup-courier/domain"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

var validate = validator.New()

type Config struct {
	APIToken       string `env:"API_TOKEN,required=true" validate:"required"`
	ChatID         string `env:"CHAT_ID,required=true" validate:"required"`
	UploadDir      string `env:"UPLOAD_DIR,default=./folder_upload" validate:"required"`
	BotAPIBase     string `env:"BOT_API_BASE,default=https://api.telegram.org" validate:"required,url"`
	UseLocalBotAPI bool   `env:"USE_LOCAL_BOT_API,default=false"`
	MaxCloudMB     int    `env:"MAX_CLOUD_MB,default=49" validate:"gt=0"`
	MaxLocalMB     int    `env:"MAX_LOCAL_MB,default=2000" validate:"gt=0"`

	WatchExtensions string `env:"WATCH_EXTENSIONS,default=.zip" validate:"required"`
	ReadySuffix     string `env:"READY_SUFFIX"`

	DedupWindow        time.Duration `env:"DEDUP_WINDOW,default=5s" validate:"gte=0"`
	DedupEvictInterval time.Duration `env:"DEDUP_EVICT_INTERVAL,default=1m" validate:"gt=0"`
	PollInterval       time.Duration `env:"POLL_INTERVAL,default=1s" validate:"gt=0"`
	StableChecks       int           `env:"STABLE_CHECKS,default=3" validate:"gt=0"`
	StableTimeout      time.Duration `env:"STABLE_TIMEOUT,default=120s" validate:"gt=0"`
	ExistsTimeout      time.Duration `env:"EXISTS_TIMEOUT,default=15s" validate:"gt=0"`
	ExistsInterval     time.Duration `env:"EXISTS_INTERVAL,default=500ms" validate:"gt=0"`
	MovePairWindow     time.Duration `env:"MOVE_PAIR_WINDOW,default=250ms" validate:"gte=0"`

	UploadTimeout time.Duration `env:"UPLOAD_TIMEOUT,default=1h" validate:"gt=0"`
	NotifyTimeout time.Duration `env:"NOTIFY_TIMEOUT,default=30s" validate:"gt=0"`

	DeliveryWorkers int           `env:"DELIVERY_WORKERS,default=1" validate:"gt=0"`
	BufferSize      int           `env:"BUFFER_SIZE,default=64" validate:"gt=0"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=30s" validate:"gt=0"`
	MemoryWarnMB    int           `env:"MEMORY_WARN_MB,default=512" validate:"gte=0"`
	MetricsPort     int           `env:"METRICS_PORT,default=0" validate:"gte=0,lte=65535"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO" validate:"required"`
}

// LoadConfig reads an optional .env file, then the process environment, and validates the result.
// Variables already present in the environment take precedence over the .env file.
func LoadConfig(dotenvFiles ...string) (Config, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("dotenv loading failed: %w", err)
	}

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config loading failed: %w", err)
	}
	config.BotAPIBase = strings.TrimRight(config.BotAPIBase, "/")

	if err := validate.Struct(config); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

func (c Config) Mode() domain.TransportMode {
	return domain.ToTransportMode(c.UseLocalBotAPI)
}

// Extensions returns the normalized, lower-cased watched extensions, each with a leading dot.
func (c Config) Extensions() []string {
	parts := strings.Split(c.WatchExtensions, ",")
	exts := lo.FilterMap(parts, func(p string, _ int) (string, bool) {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			return "", false
		}
		if !strings.HasPrefix(p, ".") {
			p = "." + p
		}
		return p, true
	})
	return lo.Uniq(exts)
}
