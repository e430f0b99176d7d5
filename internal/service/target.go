package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/greenlight-hq/greenlight/internal/domain/workspace"
	"github.com/greenlight-hq/greenlight/internal/port/database"
)

// ErrNoEscalationTarget is returned when no strategy yields a target user.
var ErrNoEscalationTarget = errors.New("no escalation target could be resolved")

// resolveTarget picks the user an overdue approval is reassigned to. The
// strategies run in a fixed order and the first hit wins:
//
//  1. the workspace's explicitly configured target user
//  2. the earliest-invited workspace owner
//  3. the earliest-invited workspace admin
func resolveTarget(ctx context.Context, store database.Store, cfg *workspace.EscalationConfig) (string, error) {
	if cfg.TargetUserID != "" {
		return cfg.TargetUserID, nil
	}

	for _, role := range []workspace.Role{workspace.RoleOwner, workspace.RoleAdmin} {
		members, err := store.ListMembersByRole(ctx, cfg.WorkspaceID, role)
		if err != nil {
			return "", fmt.Errorf("list %s members: %w", role, err)
		}
		if len(members) > 0 {
			return members[0].UserID, nil
		}
	}

	return "", ErrNoEscalationTarget
}
