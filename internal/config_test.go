package internal

import (
	"backup-courier/domain"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Should apply defaults", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("API_TOKEN", "123:abc")
		t.Setenv("CHAT_ID", "-100")
		t.Setenv("BOT_API_BASE", "http://localhost:8081/")

		config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
		req.NoError(err)
		req.Equal("http://localhost:8081", config.BotAPIBase)
		req.Equal(49, config.MaxCloudMB)
		req.Equal(2000, config.MaxLocalMB)
		req.Equal(5*time.Second, config.DedupWindow)
		req.Equal(3, config.StableChecks)
		req.Equal(time.Hour, config.UploadTimeout)
		req.Equal(domain.ModeCloud, config.Mode())
		req.Equal([]string{".zip"}, config.Extensions())
	})

	t.Run("Should read a dotenv file without overriding the environment", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("API_TOKEN", "from-env")
		t.Setenv("CHAT_ID", "-100")
		dotenv := filepath.Join(t.TempDir(), ".env")
		req.NoError(os.WriteFile(dotenv, []byte("API_TOKEN=from-file\nUSE_LOCAL_BOT_API=true\n"), 0o600))
		t.Cleanup(func() { _ = os.Unsetenv("USE_LOCAL_BOT_API") })

		config, err := LoadConfig(dotenv)
		req.NoError(err)
		req.Equal("from-env", config.APIToken)
		req.Equal(domain.ModeDirect, config.Mode())
	})

	t.Run("Should reject a missing token", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("API_TOKEN", "")
		t.Setenv("CHAT_ID", "-100")

		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
		req.Error(err)
	})

	t.Run("Should reject an invalid value", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("API_TOKEN", "123:abc")
		t.Setenv("CHAT_ID", "-100")
		t.Setenv("STABLE_CHECKS", "0")

		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
		req.Error(err)
	})
}

func TestConfig_Extensions(t *testing.T) {
	req := require.New(t)
	config := Config{WatchExtensions: " .ZIP, 7z,,.zip , .tar.gz"}
	req.Equal([]string{".zip", ".7z", ".tar.gz"}, config.Extensions())
}
