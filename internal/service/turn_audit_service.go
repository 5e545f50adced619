package service

import (
	"context"

	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/pkg/events"
	pktNats "legal-assistant-be/pkg/nats"
)

const (
	auditSubject = "events.chat.>"
	auditDurable = "chat-audit"
)

// EventSubscriber is the part of the NATS subscriber the audit trail needs.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject, durableName string, handler pktNats.EventHandler) error
}

// TurnAuditService writes every chat lifecycle event from the stream into a
// dedicated audit log.
type TurnAuditService struct {
	subscriber EventSubscriber
	auditLog   logger.ILogger
	logger     logger.ILogger
}

func NewTurnAuditService(sub EventSubscriber, auditLog, log logger.ILogger) *TurnAuditService {
	return &TurnAuditService{
		subscriber: sub,
		auditLog:   auditLog,
		logger:     log,
	}
}

// Start begins listening to the chat subjects.
func (s *TurnAuditService) Start(ctx context.Context) error {
	if err := s.subscriber.Subscribe(ctx, auditSubject, auditDurable, s.handleEvent); err != nil {
		s.logger.Error("TurnAudit", "Failed to start audit subscriber", map[string]interface{}{"error": err})
		return err
	}
	s.logger.Info("TurnAudit", "Audit trail listening to "+auditSubject, nil)
	return nil
}

func (s *TurnAuditService) handleEvent(_ context.Context, event events.Event) error {
	details := make(map[string]interface{}, len(event.Payload())+1)
	for k, v := range event.Payload() {
		details[k] = v
	}
	details["occurred_at"] = event.Timestamp()

	if event.EventType() == events.ChatTurnFailed || event.EventType() == events.ChatFileRejected {
		s.auditLog.Warn("TurnAudit", event.EventType(), details)
		return nil
	}
	s.auditLog.Info("TurnAudit", event.EventType(), details)
	return nil
}
