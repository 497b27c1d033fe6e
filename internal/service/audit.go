package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/radio-schedule-api/internal/models"
)

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// auditEntry describes one admin write for the audit trail.
type auditEntry struct {
	action     string
	resource   string
	resourceID string
	oldValues  interface{}
	newValues  interface{}
}

// recordAudit writes the entry and logs instead of failing the caller's request.
func recordAudit(ctx context.Context, writer auditWriter, logger *zap.Logger, actor models.Actor, entry auditEntry) {
	if writer == nil {
		return
	}
	log := &models.AuditLog{
		Action:   entry.action,
		Resource: entry.resource,
	}
	if actor.UserID != "" {
		userID := actor.UserID
		log.UserID = &userID
	}
	if entry.resourceID != "" {
		resourceID := entry.resourceID
		log.ResourceID = &resourceID
	}
	log.OldValues = marshalAuditValue(entry.oldValues)
	log.NewValues = marshalAuditValue(entry.newValues)
	if err := writer.CreateAuditLog(ctx, log); err != nil {
		logger.Warn("failed to record audit log",
			zap.String("action", entry.action),
			zap.String("resource_id", entry.resourceID),
			zap.Error(err),
		)
	}
}

func marshalAuditValue(value interface{}) []byte {
	if value == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return raw
}
