package service

import (
	"context"
	"log/slog"
	"time"

	"licensedesk/internal/models"
	"licensedesk/internal/store"
)

// auditTimeout bounds the detached audit write.
const auditTimeout = 5 * time.Second

// AsyncLogAdminAction logs a mutation and persists it to the audit trail in
// the background. A failed write is logged and otherwise ignored.
func AsyncLogAdminAction(ctx context.Context, logStore store.LogStore, entry *models.AdminLog) {
	slog.InfoContext(ctx, "Admin Action",
		"action", entry.Action,
		"entity_type", entry.EntityType,
		"entity_id", entry.EntityID,
	)
	if logStore == nil {
		return
	}

	go func() {
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
		defer cancel()
		if err := logStore.CreateAdminLog(writeCtx, entry); err != nil {
			slog.Error("Failed to create admin log", "error", err, "action", entry.Action)
		}
	}()
}
