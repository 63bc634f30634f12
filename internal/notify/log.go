package notify

import (
	"context"
	"log/slog"
	"time"
)

// LogSender writes OTPs to the log instead of sending them. It exists for
// local development; configuration validation keeps it out of production.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a sender that logs codes.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// SendOTP implements Sender.
func (s *LogSender) SendOTP(ctx context.Context, to, code string, expiresAt time.Time) error {
	s.logger.WarnContext(ctx, "development otp delivery",
		slog.String("to", to),
		slog.String("otp", code),
		slog.Time("expires_at", expiresAt),
	)
	return nil
}
