// Package dnsprovider implements the DNS capability the bootstrap workflow's
// configure_dns and verify_dns activities invoke: create a CNAME for a
// provider's subdomain and confirm it resolves before the workflow proceeds.
package dnsprovider

import (
	"context"
	"time"
)

// Provider is the capability surface an activity needs. Implementations must
// make CreateCNAME idempotent (a retry after a partial failure must not
// create a second record) and Delete idempotent (absent record is success).
type Provider interface {
	CreateCNAME(ctx context.Context, subdomain, target string) error
	Verify(ctx context.Context, fqdn string) (bool, error)
	Delete(ctx context.Context, fqdn string) error
}

// Verifier confirms a CNAME has propagated, polling until it resolves or
// maxWait elapses. ResolverVerifier is the production implementation;
// tests substitute a fake to avoid real network polling.
type Verifier interface {
	PollUntilResolved(ctx context.Context, fqdn string, maxWait time.Duration) (bool, error)
}

// NonRetryableError marks a DNS failure a retry cannot fix (policy
// violation, provider-rejected name) — the workflow treats this as a
// non-retryable activity failure and begins compensation immediately.
type NonRetryableError struct {
	Err error
}

func (e *NonRetryableError) Error() string { return e.Err.Error() }
func (e *NonRetryableError) Unwrap() error { return e.Err }
