package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portssvc "github.com/bankchen1/fo3-ledger-core/internal/core/ports/services"
	"github.com/bankchen1/fo3-ledger-core/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Authorizer    portssvc.LedgerAuthorizerSvc
	AuditRecorder portssvc.AuditRecorderSvc
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		// Return a default logger if not found in context
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogWarn logs a warning message with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Warn(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}

// RecordAudit writes an audit entry without failing the business operation.
// Audit delivery is best effort; failures are logged and the retry queue
// picks them up when one is configured on the audit service.
func (s *BaseService) RecordAudit(ctx context.Context, entry domain.AuditTrailEntry) {
	if s.AuditRecorder == nil {
		return
	}
	if err := s.AuditRecorder.RecordAction(ctx, entry); err != nil {
		s.LogWarn(ctx, "Audit entry could not be recorded",
			slog.String("action", entry.Action),
			slog.String("error", err.Error()))
	}
}

// auditValue renders a value as JSON for audit old/new value columns.
func auditValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// AuthorizeAction checks whether the caller may perform the given ledger action
func (s *BaseService) AuthorizeAction(ctx context.Context, caller domain.CallerContext, action string) error {
	if s.Authorizer != nil {
		return s.Authorizer.AuthorizeLedgerAction(ctx, caller, action)
	}
	// Identity is established at the gateway; without an authorizer the
	// action is allowed and the decision is logged for traceability.
	s.LogDebug(ctx, "No ledger authorizer provided, access granted by default",
		slog.String("user_id", caller.UserID),
		slog.String("action", action))
	return nil
}
