package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_API_TOKEN and E2E_CHAT_ID target a real bot, the suite is skipped without them
	APIToken   string `envconfig:"E2E_API_TOKEN"`
	ChatID     string `envconfig:"E2E_CHAT_ID"`
	BotAPIBase string `envconfig:"E2E_BOT_API_BASE" default:"https://api.telegram.org"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

func (c Config) Enabled() bool {
	return c.APIToken != "" && c.ChatID != ""
}
