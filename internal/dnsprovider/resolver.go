package dnsprovider

import (
	"context"
	"fmt"
	"time"

	"github.com/miekg/dns"
)

// ResolverVerifier confirms a CNAME has actually propagated by querying a
// resolver directly, polling with exponential backoff (spec.md §4.4
// verify_dns). It is used in addition to Route53Provider.Verify, which only
// confirms the record was accepted by the hosted zone, not that it resolves.
type ResolverVerifier struct {
	resolverAddr string
	client       *dns.Client
}

// NewResolverVerifier targets a single resolver (host:port, e.g.
// "1.1.1.1:53").
func NewResolverVerifier(resolverAddr string) *ResolverVerifier {
	return &ResolverVerifier{
		resolverAddr: resolverAddr,
		client:       &dns.Client{Timeout: 5 * time.Second},
	}
}

// PollUntilResolved polls for a CNAME record on fqdn until it resolves, the
// context is canceled, or maxWait elapses. Backoff doubles from an initial
// 1s interval, capped at 30s between attempts.
func (v *ResolverVerifier) PollUntilResolved(ctx context.Context, fqdn string, maxWait time.Duration) (bool, error) {
	deadline := time.Now().Add(maxWait)
	backoff := time.Second

	for {
		resolved, err := v.resolveOnce(ctx, fqdn)
		if err == nil && resolved {
			return true, nil
		}

		if time.Now().Add(backoff).After(deadline) {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, 30*time.Second)
	}
}

var _ Verifier = (*ResolverVerifier)(nil)

func (v *ResolverVerifier) resolveOnce(ctx context.Context, fqdn string) (bool, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(fqdn), dns.TypeCNAME)

	in, _, err := v.client.ExchangeContext(ctx, msg, v.resolverAddr)
	if err != nil {
		return false, fmt.Errorf("query %s: %w", fqdn, err)
	}
	if in.Rcode != dns.RcodeSuccess {
		return false, nil
	}
	for _, rr := range in.Answer {
		if _, ok := rr.(*dns.CNAME); ok {
			return true, nil
		}
	}
	return false, nil
}
