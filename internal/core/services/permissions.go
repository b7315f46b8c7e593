package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/zoomsync/internal/config"
	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
	"github.com/custodia-labs/zoomsync/internal/logger"
)

// PermissionReconciler pushes the identity mapping file into the search
// index's ACL store: every mapped index identity is granted exactly the
// source identities the file pairs it with.
type PermissionReconciler struct {
	cfg   *config.Config
	index driven.SearchIndex
}

// NewPermissionReconciler wires a reconciler over the search index.
func NewPermissionReconciler(cfg *config.Config, index driven.SearchIndex) *PermissionReconciler {
	return &PermissionReconciler{cfg: cfg, index: index}
}

// Run rebuilds the index's permission store from the mapping file. Every
// identity the index currently knows has its grants removed first, so an
// identity dropped from the mapping loses its access instead of keeping a
// stale permission set behind.
func (p *PermissionReconciler) Run(ctx context.Context) error {
	if !p.cfg.EnableDocumentPermission {
		return fmt.Errorf("%w: set enable_document_permission to use permission sync",
			domain.ErrPermissionSyncDisabled)
	}

	mappings, err := config.LoadIdentityMappings(p.cfg.Zoom.UserMappingFile)
	if err != nil {
		return err
	}

	current, err := p.index.ListPermissions(ctx)
	if err != nil {
		return fmt.Errorf("list permissions: %w", err)
	}
	for _, up := range current {
		if len(up.Permissions) == 0 {
			continue
		}
		if err := p.index.RemovePermissions(ctx, up.User, up.Permissions); err != nil {
			return fmt.Errorf("remove permissions for %s: %w", up.User, err)
		}
	}

	for user, sources := range mappings.IndexToSource {
		if err := p.index.AddPermissions(ctx, user, sources); err != nil {
			return fmt.Errorf("add permissions for %s: %w", user, err)
		}
		logger.Info("synced %d permission(s) for %s", len(sources), user)
	}
	return nil
}
