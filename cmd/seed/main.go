// Package main seeds the built-in role and permission catalog a fresh
// deployment needs before any organization can be bootstrapped.
//
// Import Path (ADR-0016): github.com/healthbootstrap/orgbootstrap/cmd/seed
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/healthbootstrap/orgbootstrap/internal/config"
	"github.com/healthbootstrap/orgbootstrap/internal/domain"
	"github.com/healthbootstrap/orgbootstrap/internal/eventstore"
	"github.com/healthbootstrap/orgbootstrap/internal/infrastructure"
	"github.com/healthbootstrap/orgbootstrap/internal/pkg/logger"
	"github.com/healthbootstrap/orgbootstrap/internal/projection"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	store := eventstore.New(db.EntClient, projection.NewRouter())

	logger.Info("starting seed run")

	if err := seedBuiltInPermissions(ctx, store); err != nil {
		return fmt.Errorf("seed permissions: %w", err)
	}
	if err := seedBuiltInRoles(ctx, store); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	logger.Info("seed run completed")
	return nil
}

// builtInPermission is an applet.action pair granted to built-in roles at
// deployment time.
type builtInPermission struct {
	ID     string
	Applet string
	Action string
}

func builtInPermissions() []builtInPermission {
	return []builtInPermission{
		{ID: "perm-organization-read", Applet: "organization", Action: "read"},
		{ID: "perm-organization-write", Applet: "organization", Action: "write"},
		{ID: "perm-contact-read", Applet: "contact", Action: "read"},
		{ID: "perm-contact-write", Applet: "contact", Action: "write"},
		{ID: "perm-schedule-read", Applet: "schedule", Action: "read"},
		{ID: "perm-schedule-write", Applet: "schedule", Action: "write"},
		{ID: "perm-event-operate", Applet: "event", Action: "operate"},
	}
}

// builtInRole is a platform-scoped role seeded on first boot. super_admin
// carries no organization_id/scope_path per P8; org_admin is seeded once
// per organization by the bootstrap workflow instead, so it is not listed
// here.
type builtInRole struct {
	ID   string
	Name string
}

func builtInRoles() []builtInRole {
	return []builtInRole{
		{ID: "role-super-admin", Name: "super_admin"},
	}
}

func seedBuiltInPermissions(ctx context.Context, store *eventstore.Store) error {
	for _, p := range builtInPermissions() {
		_, err := store.Emit(ctx, eventstore.EmitRequest{
			StreamID:   p.ID,
			StreamType: domain.StreamPermission,
			EventType:  domain.EventPermissionDefined,
			EventData:  map[string]string{"applet": p.Applet, "action": p.Action},
			Metadata:   eventstore.EventMetadata{UserID: "system-seed", IdempotencyKey: p.ID},
		})
		if err != nil {
			return fmt.Errorf("emit permission.defined for %s: %w", p.ID, err)
		}
		logger.Info("seeded permission", zap.String("applet", p.Applet), zap.String("action", p.Action))
	}
	return nil
}

func seedBuiltInRoles(ctx context.Context, store *eventstore.Store) error {
	for _, r := range builtInRoles() {
		_, err := store.Emit(ctx, eventstore.EmitRequest{
			StreamID:   r.ID,
			StreamType: domain.StreamRole,
			EventType:  domain.EventRoleCreated,
			EventData:  map[string]string{"name": r.Name},
			Metadata:   eventstore.EventMetadata{UserID: "system-seed", IdempotencyKey: r.ID},
		})
		if err != nil {
			return fmt.Errorf("emit role.created for %s: %w", r.ID, err)
		}
		logger.Info("seeded role", zap.String("role", r.Name))

		for _, p := range builtInPermissions() {
			grantID, genErr := uuid.NewV7()
			if genErr != nil {
				return fmt.Errorf("mint role-permission id: %w", genErr)
			}
			_, err := store.Emit(ctx, eventstore.EmitRequest{
				StreamID:   r.ID,
				StreamType: domain.StreamRole,
				EventType:  domain.EventRoleUpdated,
				EventData:  map[string]string{"permission_id": p.ID},
				Metadata:   eventstore.EventMetadata{UserID: "system-seed", IdempotencyKey: grantID.String()},
			})
			if err != nil {
				return fmt.Errorf("grant permission %s to role %s: %w", p.ID, r.ID, err)
			}
		}
	}
	return nil
}
