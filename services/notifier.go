package services

import (
	"backup-courier/contract"
	"context"
	"log/slog"
	"time"
)

// ChatNotifier sends operator messages. A failed message never aborts the pipeline.
type ChatNotifier struct {
	log       *slog.Logger
	transport contract.Transport
	chatID    string
	timeout   time.Duration
}

func NewChatNotifier(log *slog.Logger, transport contract.Transport, chatID string, timeout time.Duration) *ChatNotifier {
	return &ChatNotifier{
		log:       log,
		transport: transport,
		chatID:    chatID,
		timeout:   timeout,
	}
}

func (n *ChatNotifier) Notify(ctx context.Context, text string) {
	// Notifications outlive a cancelled delivery, the operator must still hear about it.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	if err := n.transport.SendText(sendCtx, n.chatID, text); err != nil {
		n.log.Error("Failed to send notification", "error", err)
	}
}
