package services

import (
	"context"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
)

// Ledger actions subject to authorization checks.
const (
	ActionRecordTransaction  = "ledger.record_transaction"
	ActionPostTransaction    = "ledger.post_transaction"
	ActionReverseTransaction = "ledger.reverse_transaction"
	ActionCloseAccount       = "ledger.close_account"
	ActionCreateSnapshot     = "ledger.create_snapshot"
	ActionPeriodClose        = "ledger.period_close"
	ActionExportData         = "ledger.export_data"
	ActionViewAuditTrail     = "ledger.view_audit_trail"
)

// LedgerAuthorizerSvc decides whether a caller may perform a ledger action.
// Identity is established upstream at the gateway; this service only checks
// the already-authenticated caller against the requested action.
type LedgerAuthorizerSvc interface {
	// AuthorizeLedgerAction returns apperrors.ErrForbidden when the caller
	// may not perform the action, nil otherwise.
	AuthorizeLedgerAction(ctx context.Context, caller domain.CallerContext, action string) error
}
