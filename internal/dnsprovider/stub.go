package dnsprovider

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/healthbootstrap/orgbootstrap/internal/pkg/logger"
)

// LoggingStubProvider satisfies Provider without talking to any real DNS
// service, for local development and tests where wiring Route53 credentials
// isn't worth it.
type LoggingStubProvider struct{}

func NewLoggingStubProvider() *LoggingStubProvider { return &LoggingStubProvider{} }

func (s *LoggingStubProvider) CreateCNAME(_ context.Context, subdomain, target string) error {
	logger.Info("stub dns: create cname", zap.String("subdomain", subdomain), zap.String("target", target))
	return nil
}

func (s *LoggingStubProvider) Verify(_ context.Context, fqdn string) (bool, error) {
	logger.Info("stub dns: verify", zap.String("fqdn", fqdn))
	return true, nil
}

func (s *LoggingStubProvider) Delete(_ context.Context, fqdn string) error {
	logger.Info("stub dns: delete", zap.String("fqdn", fqdn))
	return nil
}

// AlwaysResolvedVerifier satisfies Verifier without polling any real
// resolver, for local development and tests where a propagation delay
// isn't worth simulating.
type AlwaysResolvedVerifier struct{}

func NewAlwaysResolvedVerifier() *AlwaysResolvedVerifier { return &AlwaysResolvedVerifier{} }

func (v *AlwaysResolvedVerifier) PollUntilResolved(_ context.Context, fqdn string, _ time.Duration) (bool, error) {
	logger.Info("stub dns: poll until resolved", zap.String("fqdn", fqdn))
	return true, nil
}
