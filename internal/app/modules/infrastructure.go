// Package modules assembles the cross-cutting dependencies the composition
// root (internal/app) wires into the HTTP server and the River worker.
//
// Import Path (ADR-0016): github.com/healthbootstrap/orgbootstrap/internal/app/modules
package modules

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/internal/config"
	"github.com/healthbootstrap/orgbootstrap/internal/dnsprovider"
	"github.com/healthbootstrap/orgbootstrap/internal/emailprovider"
	"github.com/healthbootstrap/orgbootstrap/internal/eventstore"
	"github.com/healthbootstrap/orgbootstrap/internal/infrastructure"
	"github.com/healthbootstrap/orgbootstrap/internal/jobqueue"
	"github.com/healthbootstrap/orgbootstrap/internal/notification"
	"github.com/healthbootstrap/orgbootstrap/internal/pkg/worker"
	"github.com/healthbootstrap/orgbootstrap/internal/projection"
	"github.com/healthbootstrap/orgbootstrap/internal/workflow"
)

// Infrastructure holds shared cross-cutting dependencies for the server and
// the worker process.
type Infrastructure struct {
	Config      *config.Config
	DB          *infrastructure.DatabaseClients
	Pools       *worker.Pools
	EntClient   *ent.Client
	Pool        *pgxpool.Pool
	RiverClient *river.Client[pgx.Tx]

	Store    *eventstore.Store
	Claimer  *jobqueue.Claimer
	Notifier *jobqueue.Notifier
	Listener *jobqueue.Listener
	Runner   *jobqueue.Runner
	Starter  *workflow.Starter
	Workflow *workflow.Workflow
	Alerts   *notification.Triggers

	DNS       dnsprovider.Provider
	DNSVerify *dnsprovider.ResolverVerifier
	Email     emailprovider.Provider
}

// NewInfrastructure initializes DB/pools and shared services.
func NewInfrastructure(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
	}

	pools, err := worker.NewPools(ctx, worker.PoolConfig{
		GeneralPoolSize: cfg.Worker.GeneralPoolSize,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init worker pools: %w", err)
	}

	entClient := db.EntClient
	router := projection.NewRouter()
	store := eventstore.New(entClient, router)
	claimer := jobqueue.NewClaimer(entClient)
	notifier := jobqueue.NewNotifier(db.Pool)

	dns, dnsVerify, err := newDNSProvider(ctx, cfg.DNS)
	if err != nil {
		db.Close()
		pools.Shutdown()
		return nil, fmt.Errorf("init dns provider: %w", err)
	}

	email := newEmailProvider(cfg.Email)
	alerts := notification.NewTriggers(notification.NewInboxSender(entClient))

	wf := workflow.NewWorkflow(
		entClient, store, claimer,
		dns, dnsVerify, email,
		workflow.RootDomain(cfg.DNS.RootDomain), cfg.DNS.IngressTarget,
		alerts,
	)

	return &Infrastructure{
		Config:    cfg,
		DB:        db,
		Pools:     pools,
		EntClient: entClient,
		Pool:      db.Pool,
		Store:     store,
		Claimer:   claimer,
		Notifier:  notifier,
		DNS:       dns,
		DNSVerify: dnsVerify,
		Email:     email,
		Workflow:  wf,
		Alerts:    alerts,
	}, nil
}

// newDNSProvider builds the Route53 provider and resolver verifier the
// bootstrap workflow's DNS activities use. A configured hosted zone id
// selects the real AWS provider; its absence (local/dev) falls back to the
// logging stub so the workflow still runs end to end without AWS access.
func newDNSProvider(ctx context.Context, cfg config.DNSConfig) (dnsprovider.Provider, *dnsprovider.ResolverVerifier, error) {
	verifier := dnsprovider.NewResolverVerifier(cfg.ResolverAddr)

	if cfg.HostedZoneID == "" {
		return dnsprovider.NewLoggingStubProvider(), verifier, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load aws config: %w", err)
	}
	ttl := cfg.RecordTTL
	if ttl <= 0 {
		ttl = 300
	}
	client := route53.NewFromConfig(awsCfg)
	return dnsprovider.NewRoute53Provider(client, cfg.HostedZoneID, ttl), verifier, nil
}

// newEmailProvider builds the Resend-backed email provider. An empty API
// key (local/dev) falls back to the logging stub.
func newEmailProvider(cfg config.EmailConfig) emailprovider.Provider {
	if cfg.APIKey == "" {
		return emailprovider.NewLoggingStubProvider()
	}
	return emailprovider.NewResendProvider(cfg.APIKey, cfg.FromAddress)
}

// InitRiver initializes the River client with a worker registry containing
// the bootstrap workflow worker, then wires the resulting client back into
// Infrastructure (Starter needs it to enqueue jobs).
func (i *Infrastructure) InitRiver(ctx context.Context) error {
	if i == nil || i.DB == nil || i.Config == nil {
		return fmt.Errorf("infrastructure is not initialized")
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, workflow.NewWorker(i.Workflow))

	if err := i.DB.InitRiverClient(workers, i.Config.River); err != nil {
		return fmt.Errorf("init river: %w", err)
	}
	i.RiverClient = i.DB.RiverClient
	i.Starter = workflow.NewStarter(i.EntClient, i.RiverClient)
	i.Listener = jobqueue.NewListener(i.Config.Database.DSN())
	i.Runner = jobqueue.NewRunner(i.Claimer, i.Listener, i.Starter)
	return nil
}

// Close releases infra resources in reverse dependency order.
func (i *Infrastructure) Close() {
	if i == nil {
		return
	}
	if i.Pools != nil {
		i.Pools.Shutdown()
	}
	if i.DB != nil {
		i.DB.Close()
	}
}
