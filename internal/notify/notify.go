package notify

import (
	"context"
	"log/slog"
	"time"
)

const (
	// LevelInfo marks routine confirmations.
	LevelInfo = "info"
	// LevelError marks failed operations surfaced to the user.
	LevelError = "error"
	// LevelWarning marks operational notices such as maintenance windows.
	LevelWarning = "warning"

	// DefaultDisplay is how long a transient toast stays visible.
	DefaultDisplay = 3 * time.Second
	// MaintenanceDisplay keeps maintenance notices visible longer given
	// their operational importance.
	MaintenanceDisplay = 8 * time.Second
)

// Message describes a user-facing notification payload.
type Message struct {
	Level    string
	Body     string
	Duration time.Duration
}

// Notifier delivers toast-equivalent notifications to the UI layer.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes notifications to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	if message.Duration == 0 {
		message.Duration = DefaultDisplay
	}
	n.logger.Info("notification",
		"level", message.Level,
		"body", message.Body,
		"display", message.Duration.String(),
	)
	return nil
}
