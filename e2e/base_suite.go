package e2e

import (
	"backup-courier/domain"
	"backup-courier/domain/event"
	"backup-courier/infrastructure/telegram"
	"backup-courier/services"
	"fmt"
	"log/slog"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

type BaseCourierSuite struct {
	suite.Suite
	Config Config
	Log    *slog.Logger
}

// SetupSuite loads the environment configuration and skips when no bot is configured
func (s *BaseCourierSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if !s.Config.Enabled() {
		s.T().Skip("E2E_API_TOKEN and E2E_CHAT_ID are required")
	}
	s.Log = logs.GetLoggerFromLevel(slog.LevelDebug)
}

// Step prints a colorized header before running fn
func (s *BaseCourierSuite) Step(name string, fn func()) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
	fn()
}

// Coordinator wires the real pipeline against the configured bot with fast stability checks.
func (s *BaseCourierSuite) Coordinator(mode domain.TransportMode, maxCloudMB int) (*services.DeliveryCoordinator, <-chan event.Event) {
	client := telegram.NewBotClient(s.Log, s.Config.BotAPIBase, s.Config.APIToken, 30*time.Second, 10*time.Minute)
	telemetryChan := make(chan event.Event, 64)
	coordinator := services.NewDeliveryCoordinator(
		s.Log,
		services.NewEventDeduplicator(5*time.Second),
		services.NewStabilityWaiter(s.Log, services.StabilityPolicy{
			PollInterval:   100 * time.Millisecond,
			RequiredChecks: 2,
			StableTimeout:  10 * time.Second,
			ExistsTimeout:  time.Second,
			ExistsInterval: 50 * time.Millisecond,
		}),
		services.NewFileSplitter(s.Log),
		services.NewDocumentUploader(s.Log, client, nil, s.Config.ChatID),
		services.NewChatNotifier(s.Log, client, s.Config.ChatID, 30*time.Second),
		telemetryChan,
		services.DeliveryPolicy{
			Mode:        mode,
			MaxCloudMB:  maxCloudMB,
			MaxDirectMB: 2000,
			Extensions:  []string{".zip"},
		},
	)
	return coordinator, telemetryChan
}
