package services

import (
	"context"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
)

// ExportSvc defines operations for exporting ledger data to files
type ExportSvc interface {
	// ExportLedgerData writes posted transactions to a CSV, JSON or XLSX file.
	ExportLedgerData(ctx context.Context, req dto.ExportRequest, caller domain.CallerContext) (*dto.ExportResponse, error)

	// EnqueueExport queues an export for background processing.
	EnqueueExport(ctx context.Context, req dto.ExportRequest, caller domain.CallerContext) (*dto.ExportJobResponse, error)
}
