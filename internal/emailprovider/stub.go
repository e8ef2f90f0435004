package emailprovider

import (
	"context"

	"go.uber.org/zap"

	"github.com/healthbootstrap/orgbootstrap/internal/pkg/logger"
)

// LoggingStubProvider satisfies Provider without sending real email.
type LoggingStubProvider struct{}

func NewLoggingStubProvider() *LoggingStubProvider { return &LoggingStubProvider{} }

func (s *LoggingStubProvider) Send(_ context.Context, msg Message) error {
	logger.Info("stub email: send", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
