package notification

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// EmailSender delivers outbound mail. Implementations are best-effort
// collaborators: the order engine never lets a send failure roll back the
// transaction that triggered it.
type EmailSender interface {
	Send(ctx context.Context, subject, recipient, htmlBody string) error
}

// LogSender is the default sink when no mail provider is configured. It
// writes the would-be email to the log, mirroring the storefront's
// unconfigured-mail behavior.
type LogSender struct{}

// Send logs the email instead of delivering it. It never fails.
func (LogSender) Send(ctx context.Context, subject, recipient, _ string) error {
	zctx.From(ctx).Info("Simulated email",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
	)
	return nil
}
