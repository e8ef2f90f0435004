package workflow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthbootstrap/orgbootstrap/ent/contactaddresslink"
	"github.com/healthbootstrap/orgbootstrap/ent/contactphonelink"
	"github.com/healthbootstrap/orgbootstrap/ent/invitation"
	"github.com/healthbootstrap/orgbootstrap/ent/organization"
	"github.com/healthbootstrap/orgbootstrap/ent/phoneaddresslink"
	"github.com/healthbootstrap/orgbootstrap/internal/dnsprovider"
	"github.com/healthbootstrap/orgbootstrap/internal/domain"
	"github.com/healthbootstrap/orgbootstrap/internal/emailprovider"
	"github.com/healthbootstrap/orgbootstrap/internal/eventstore"
	"github.com/healthbootstrap/orgbootstrap/internal/jobqueue"
	"github.com/healthbootstrap/orgbootstrap/internal/notification"
	"github.com/healthbootstrap/orgbootstrap/internal/projection"
	"github.com/healthbootstrap/orgbootstrap/internal/testutil"
)

// seedWorkflowQueueRow emits organization.bootstrap.initiated directly,
// mirroring what rpc.Bootstrapper.InitiateOrganizationBootstrap does, and
// returns the minted workflow_queue row id Run expects.
func seedWorkflowQueueRow(t *testing.T, store *eventstore.Store, req BootstrapRequest) string {
	t.Helper()
	ctx := t.Context()

	payload, err := json.Marshal(req)
	require.NoError(t, err)

	rowID := mustNewID()
	_, err = store.Emit(ctx, eventstore.EmitRequest{
		StreamID:   rowID,
		StreamType: domain.StreamWorkflowQueue,
		EventType:  domain.EventOrganizationBootstrapInitiated,
		EventData: map[string]any{
			"organization_slug": req.Slug,
			"request_payload":   json.RawMessage(payload),
		},
	})
	require.NoError(t, err)
	return rowID
}

// TestRun_ProviderBootstrap_S1 drives a full provider bootstrap (scenario
// S1): a subdomain is provisioned, the admin invite carries role
// provider_admin, and the general section's contact/address/phone form a
// fully-connected group via the cross-entity junction links.
func TestRun_ProviderBootstrap_S1(t *testing.T) {
	t.Parallel()

	client := testutil.OpenEntPostgres(t, "workflow_run_s1")
	store := eventstore.New(client, projection.NewRouter())
	ctx := t.Context()

	wf := NewWorkflow(
		client, store, jobqueue.NewClaimer(client),
		dnsprovider.NewLoggingStubProvider(), dnsprovider.NewAlwaysResolvedVerifier(),
		emailprovider.NewLoggingStubProvider(), RootDomain("example.test"), "ingress.example.test",
		notification.NewTriggers(notification.NewInboxSender(client)),
	)

	req := BootstrapRequest{
		Name: "Acme Health", Slug: "acme-health-s1", Type: "provider",
		HierarchyPath: "acme-health-s1",
		AdminInvites:  []AdminInvite{{Email: "admin@acme-health.example", Role: "provider_admin"}},
		General: SectionInput{
			Contact: &ContactInput{FirstName: "Jane", LastName: "Doe", Email: "jane@acme-health.example"},
			Address: &AddressInput{Street: "1 Main St", City: "Springfield", State: "IL", Zip: "62701"},
			Phone:   &PhoneInput{Number: "+15555550100"},
		},
		Billing:       SectionInput{SharedFromGeneral: true},
		ProviderAdmin: SectionInput{SharedFromGeneral: true},
	}

	rowID := seedWorkflowQueueRow(t, store, req)
	require.NoError(t, wf.Run(ctx, rowID))

	org, err := client.Organization.Query().Where(organization.Slug(req.Slug)).Only(ctx)
	require.NoError(t, err)
	assert.True(t, org.IsActive)
	require.NotNil(t, org.Subdomain)
	assert.Equal(t, req.Slug, *org.Subdomain)

	inv, err := client.Invitation.Query().Where(invitation.OrganizationID(org.ID)).Only(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin@acme-health.example", inv.Email)
	assert.Equal(t, "provider_admin", inv.Role)

	contacts, err := client.Contact.Query().All(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 1, "billing/provider_admin reuse general's contact rather than minting new ones")
	contactID := contacts[0].ID

	addresses, err := client.Address.Query().All(ctx)
	require.NoError(t, err)
	require.Len(t, addresses, 1)
	addressID := addresses[0].ID

	phones, err := client.Phone.Query().All(ctx)
	require.NoError(t, err)
	require.Len(t, phones, 1)
	phoneID := phones[0].ID

	_, err = client.ContactAddressLink.Query().
		Where(contactaddresslink.ContactID(contactID), contactaddresslink.AddressID(addressID)).
		Only(ctx)
	require.NoError(t, err, "contact.address.linked must be emitted for the section's own entities")

	_, err = client.ContactPhoneLink.Query().
		Where(contactphonelink.ContactID(contactID), contactphonelink.PhoneID(phoneID)).
		Only(ctx)
	require.NoError(t, err, "contact.phone.linked must be emitted for the section's own entities")

	_, err = client.PhoneAddressLink.Query().
		Where(phoneaddresslink.PhoneID(phoneID), phoneaddresslink.AddressID(addressID)).
		Only(ctx)
	require.NoError(t, err, "phone.address.linked must be emitted for the section's own entities")
}

// TestRun_PartnerBootstrap_S2 drives a VAR partner bootstrap (scenario S2):
// a subdomain is still provisioned (partner_type=var), and the admin invite
// carries role partner_admin rather than provider_admin.
func TestRun_PartnerBootstrap_S2(t *testing.T) {
	t.Parallel()

	client := testutil.OpenEntPostgres(t, "workflow_run_s2")
	store := eventstore.New(client, projection.NewRouter())
	ctx := t.Context()

	wf := NewWorkflow(
		client, store, jobqueue.NewClaimer(client),
		dnsprovider.NewLoggingStubProvider(), dnsprovider.NewAlwaysResolvedVerifier(),
		emailprovider.NewLoggingStubProvider(), RootDomain("example.test"), "ingress.example.test",
		notification.NewTriggers(notification.NewInboxSender(client)),
	)

	req := BootstrapRequest{
		Name: "Acme VAR Partner", Slug: "acme-var-s2", Type: "provider_partner", PartnerType: "var",
		HierarchyPath: "acme-var-s2",
		AdminInvites:  []AdminInvite{{Email: "admin@acme-var.example", Role: "partner_admin"}},
		General: SectionInput{
			Contact: &ContactInput{FirstName: "Sam", LastName: "Partner", Email: "sam@acme-var.example"},
		},
	}

	rowID := seedWorkflowQueueRow(t, store, req)
	require.NoError(t, wf.Run(ctx, rowID))

	org, err := client.Organization.Query().Where(organization.Slug(req.Slug)).Only(ctx)
	require.NoError(t, err)
	assert.True(t, org.IsActive)
	require.NotNil(t, org.Subdomain, "partner_type=var requires a subdomain")
	assert.Equal(t, req.Slug, *org.Subdomain)

	inv, err := client.Invitation.Query().Where(invitation.OrganizationID(org.ID)).Only(ctx)
	require.NoError(t, err)
	assert.Equal(t, "partner_admin", inv.Role)
}
