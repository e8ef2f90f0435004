package dnsprovider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
)

// Route53Provider implements Provider against a single hosted zone.
type Route53Provider struct {
	client       *route53.Client
	hostedZoneID string
	ttl          int64
}

// NewRoute53Provider wraps an already-configured route53 client.
func NewRoute53Provider(client *route53.Client, hostedZoneID string, ttl int64) *Route53Provider {
	if ttl <= 0 {
		ttl = 300
	}
	return &Route53Provider{client: client, hostedZoneID: hostedZoneID, ttl: ttl}
}

// CreateCNAME upserts a CNAME record; UPSERT makes retries idempotent.
func (p *Route53Provider) CreateCNAME(ctx context.Context, subdomain, target string) error {
	name := strings.TrimSuffix(subdomain, ".") + "."
	target = strings.TrimSuffix(target, ".") + "."

	_, err := p.client.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(p.hostedZoneID),
		ChangeBatch: &types.ChangeBatch{
			Changes: []types.Change{
				{
					Action: types.ChangeActionUpsert,
					ResourceRecordSet: &types.ResourceRecordSet{
						Name: aws.String(name),
						Type: types.RRTypeCname,
						TTL:  aws.Int64(p.ttl),
						ResourceRecords: []types.ResourceRecord{
							{Value: aws.String(target)},
						},
					},
				},
			},
		},
	})
	if err != nil {
		if isPolicyRejection(err) {
			return &NonRetryableError{Err: fmt.Errorf("create cname %s: %w", name, err)}
		}
		return fmt.Errorf("create cname %s: %w", name, err)
	}
	return nil
}

// Verify asks Route53 whether the record exists in the expected form;
// authoritative DNS resolution (the record actually propagated) is the
// job of ResolverVerifier, used alongside this provider by verify_dns.
func (p *Route53Provider) Verify(ctx context.Context, fqdn string) (bool, error) {
	name := strings.TrimSuffix(fqdn, ".") + "."
	out, err := p.client.ListResourceRecordSets(ctx, &route53.ListResourceRecordSetsInput{
		HostedZoneId:    aws.String(p.hostedZoneID),
		StartRecordName: aws.String(name),
		StartRecordType: types.RRTypeCname,
		MaxItems:        aws.Int32(1),
	})
	if err != nil {
		return false, fmt.Errorf("list record sets for %s: %w", name, err)
	}
	for _, rs := range out.ResourceRecordSets {
		if aws.ToString(rs.Name) == name && rs.Type == types.RRTypeCname {
			return true, nil
		}
	}
	return false, nil
}

// Delete removes the CNAME if present; absence is success (idempotent).
func (p *Route53Provider) Delete(ctx context.Context, fqdn string) error {
	name := strings.TrimSuffix(fqdn, ".") + "."
	out, err := p.client.ListResourceRecordSets(ctx, &route53.ListResourceRecordSetsInput{
		HostedZoneId:    aws.String(p.hostedZoneID),
		StartRecordName: aws.String(name),
		StartRecordType: types.RRTypeCname,
		MaxItems:        aws.Int32(1),
	})
	if err != nil {
		return fmt.Errorf("list record sets for %s: %w", name, err)
	}
	var existing *types.ResourceRecordSet
	for i := range out.ResourceRecordSets {
		rs := out.ResourceRecordSets[i]
		if aws.ToString(rs.Name) == name && rs.Type == types.RRTypeCname {
			existing = &rs
			break
		}
	}
	if existing == nil {
		return nil
	}

	_, err = p.client.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(p.hostedZoneID),
		ChangeBatch: &types.ChangeBatch{
			Changes: []types.Change{
				{Action: types.ChangeActionDelete, ResourceRecordSet: existing},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("delete cname %s: %w", name, err)
	}
	return nil
}

func isPolicyRejection(err error) bool {
	var invalidInput *types.InvalidInput
	return errors.As(err, &invalidInput)
}
