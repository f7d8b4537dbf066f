package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/apperrors"
	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portsrepo "github.com/bankchen1/fo3-ledger-core/internal/core/ports/repositories"
	portssvc "github.com/bankchen1/fo3-ledger-core/internal/core/ports/services"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
	"github.com/xuri/excelize/v2"
)

// Column headers for the export tables. Journal entries are flattened with
// their owning transaction's fields so each entry row stands on its own.
var (
	entryHeaders = []string{
		"Transaction ID", "Reference Number", "Transaction Type", "Status",
		"Transaction Date", "Entry ID", "Account ID", "Entry Type", "Amount",
		"Currency", "Description",
	}
	accountHeaders = []string{
		"Account ID", "Account Code", "Name", "Type", "Currency", "Status",
		"Current Balance", "Pending Balance", "Created At",
	}
	transactionHeaders = []string{
		"Transaction ID", "Reference Number", "Type", "Status",
		"Transaction Date", "Currency", "Total Amount", "Entry Count",
		"Description",
	}
	auditHeaders = []string{
		"Audit ID", "Action", "Transaction ID", "Account ID", "User ID",
		"Timestamp", "New Value",
	}
)

// exportService implements the ExportSvc interface
type exportService struct {
	BaseService
	transactionRepo portsrepo.TransactionReader
	accountRepo     portsrepo.AccountReader
	auditReader     portsrepo.AuditReader
	notifier        portssvc.LedgerEventNotifier
	enqueuer        portssvc.BackgroundTaskEnqueuer
	exportDir       string
}

// ExportServiceOption is a functional option for configuring the export service
type ExportServiceOption func(*exportService)

// WithExportAuthorizer sets the ledger authorizer for the export service
func WithExportAuthorizer(authorizer portssvc.LedgerAuthorizerSvc) ExportServiceOption {
	return func(s *exportService) {
		s.Authorizer = authorizer
	}
}

// WithExportAuditRecorder sets the audit recorder for the export service
func WithExportAuditRecorder(recorder portssvc.AuditRecorderSvc) ExportServiceOption {
	return func(s *exportService) {
		s.AuditRecorder = recorder
	}
}

// WithExportAuditReader lets exports include the audit trail itself
func WithExportAuditReader(reader portsrepo.AuditReader) ExportServiceOption {
	return func(s *exportService) {
		s.auditReader = reader
	}
}

// WithExportNotifier sets the event notifier for the export service
func WithExportNotifier(notifier portssvc.LedgerEventNotifier) ExportServiceOption {
	return func(s *exportService) {
		s.notifier = notifier
	}
}

// WithExportEnqueuer enables queueing exports for background processing
func WithExportEnqueuer(enqueuer portssvc.BackgroundTaskEnqueuer) ExportServiceOption {
	return func(s *exportService) {
		s.enqueuer = enqueuer
	}
}

// NewExportService creates a new export service writing files under exportDir
func NewExportService(transactionRepo portsrepo.TransactionReader, accountRepo portsrepo.AccountReader, exportDir string, options ...ExportServiceOption) portssvc.ExportSvc {
	svc := &exportService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		exportDir:       exportDir,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure exportService implements the ExportSvc interface
var _ portssvc.ExportSvc = (*exportService)(nil)

// exportData is everything gathered for one export run.
type exportData struct {
	accounts     []domain.Account
	transactions []domain.LedgerTransaction
	auditEntries []domain.AuditTrailEntry
	includeAudit bool
	generatedAt  time.Time
}

// ExportLedgerData writes the ledger to a CSV, JSON or XLSX file. The csv
// layout is a single flattened entry table; json and xlsx also carry the
// chart of accounts and, on request, the audit trail.
func (s *exportService) ExportLedgerData(ctx context.Context, req dto.ExportRequest, caller domain.CallerContext) (*dto.ExportResponse, error) {
	if err := s.AuthorizeAction(ctx, caller, portssvc.ActionExportData); err != nil {
		s.LogWarn(ctx, "Caller not authorized to export ledger data", slog.String("user_id", caller.UserID))
		return nil, err
	}

	switch req.Format {
	case "csv", "json", "xlsx":
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", apperrors.ErrValidation, req.Format)
	}
	if req.IncludeAuditTrail && req.Format == "csv" {
		return nil, fmt.Errorf("%w: audit trail export requires the json or xlsx format", apperrors.ErrValidation)
	}

	data, err := s.gatherExportData(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		s.LogError(ctx, err, "Failed to create export directory", slog.String("export_dir", s.exportDir))
		return nil, fmt.Errorf("%w: could not create export directory: %v", apperrors.ErrInternal, err)
	}

	fileName := fmt.Sprintf("ledger_export_%s.%s", data.generatedAt.Format("20060102_150405"), req.Format)
	filePath := filepath.Join(s.exportDir, fileName)

	switch req.Format {
	case "csv":
		err = writeExportCSV(filePath, data.transactions)
	case "json":
		err = writeExportJSON(filePath, data)
	case "xlsx":
		err = writeExportXLSX(filePath, data)
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to write export file", slog.String("file_path", filePath))
		return nil, fmt.Errorf("%w: failed to write export file: %v", apperrors.ErrInternal, err)
	}

	var sizeBytes int64
	if info, err := os.Stat(filePath); err == nil {
		sizeBytes = info.Size()
	}

	s.RecordAudit(ctx, domain.AuditTrailEntry{
		Action: domain.AuditLedgerDataExported,
		NewValue: auditValue(map[string]any{
			"file_name":    fileName,
			"format":       req.Format,
			"record_count": len(data.transactions),
		}),
		UserID:    caller.UserID,
		IPAddress: caller.IPAddress,
		UserAgent: caller.UserAgent,
	})
	if s.notifier != nil {
		s.notifier.Notify(ctx, caller.UserID, portssvc.EventExportCompleted, map[string]any{
			"file_name":    fileName,
			"format":       req.Format,
			"record_count": len(data.transactions),
		})
	}

	s.LogInfo(ctx, "Ledger data exported",
		slog.String("file_name", fileName),
		slog.String("format", req.Format),
		slog.Int("record_count", len(data.transactions)))

	return &dto.ExportResponse{
		FileName:    fileName,
		FilePath:    filePath,
		Format:      req.Format,
		RecordCount: int64(len(data.transactions)),
		SizeBytes:   sizeBytes,
		GeneratedAt: data.generatedAt,
	}, nil
}

// EnqueueExport queues an export for background processing.
func (s *exportService) EnqueueExport(ctx context.Context, req dto.ExportRequest, caller domain.CallerContext) (*dto.ExportJobResponse, error) {
	if err := s.AuthorizeAction(ctx, caller, portssvc.ActionExportData); err != nil {
		s.LogWarn(ctx, "Caller not authorized to export ledger data", slog.String("user_id", caller.UserID))
		return nil, err
	}
	if s.enqueuer == nil {
		return nil, fmt.Errorf("%w: background export worker is not configured", apperrors.ErrConflict)
	}

	taskID, queue, err := s.enqueuer.EnqueueExport(ctx, req, caller)
	if err != nil {
		s.LogError(ctx, err, "Failed to enqueue export task")
		return nil, fmt.Errorf("failed to enqueue export: %w", err)
	}

	s.LogInfo(ctx, "Export queued for background processing",
		slog.String("task_id", taskID),
		slog.String("queue", queue),
		slog.String("format", req.Format))

	return &dto.ExportJobResponse{
		TaskID:   taskID,
		Queue:    queue,
		Format:   req.Format,
		Accepted: true,
	}, nil
}

// gatherExportData loads what the requested format needs. The chart of
// accounts only appears in the structured json and xlsx layouts.
func (s *exportService) gatherExportData(ctx context.Context, req dto.ExportRequest) (*exportData, error) {
	posted := domain.TransactionPosted
	transactions, _, err := s.transactionRepo.ListTransactions(ctx, portsrepo.TransactionFilter{
		Status:    &posted,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions for export")
		return nil, fmt.Errorf("failed to list transactions for export: %w", err)
	}

	data := &exportData{
		transactions: transactions,
		includeAudit: req.IncludeAuditTrail,
		generatedAt:  time.Now().UTC(),
	}

	if req.Format == "json" || req.Format == "xlsx" {
		accounts, _, err := s.accountRepo.ListAccounts(ctx, portsrepo.AccountFilter{})
		if err != nil {
			s.LogError(ctx, err, "Failed to list accounts for export")
			return nil, fmt.Errorf("failed to list accounts for export: %w", err)
		}
		data.accounts = accounts
	}

	if req.IncludeAuditTrail {
		if s.auditReader == nil {
			return nil, fmt.Errorf("%w: audit trail export is not configured", apperrors.ErrConflict)
		}
		auditEntries, _, err := s.auditReader.ListAuditEntries(ctx, portsrepo.AuditTrailFilter{
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
		})
		if err != nil {
			s.LogError(ctx, err, "Failed to list audit entries for export")
			return nil, fmt.Errorf("failed to list audit entries for export: %w", err)
		}
		data.auditEntries = auditEntries
	}

	return data, nil
}

// entryRow flattens one journal entry with its owning transaction's fields.
func entryRow(txn domain.LedgerTransaction, entry domain.JournalEntry) []string {
	return []string{
		txn.TransactionID,
		txn.ReferenceNumber,
		txn.TransactionType,
		string(txn.Status),
		txn.TransactionDate.UTC().Format(time.RFC3339),
		entry.EntryID,
		entry.AccountID,
		string(entry.EntryType),
		entry.Amount.String(),
		entry.CurrencyCode,
		entry.Description,
	}
}

func accountRow(account domain.Account) []string {
	return []string{
		account.AccountID,
		account.AccountCode,
		account.Name,
		string(account.AccountType),
		account.CurrencyCode,
		string(account.Status),
		account.CurrentBalance.String(),
		account.PendingBalance.String(),
		account.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func transactionRow(txn domain.LedgerTransaction) []string {
	return []string{
		txn.TransactionID,
		txn.ReferenceNumber,
		txn.TransactionType,
		string(txn.Status),
		txn.TransactionDate.UTC().Format(time.RFC3339),
		txn.CurrencyCode,
		txn.TotalAmount.String(),
		fmt.Sprintf("%d", len(txn.Entries)),
		txn.Description,
	}
}

func auditRow(entry domain.AuditTrailEntry) []string {
	return []string{
		entry.AuditID,
		entry.Action,
		entry.TransactionID,
		entry.AccountID,
		entry.UserID,
		entry.Timestamp.UTC().Format(time.RFC3339),
		entry.NewValue,
	}
}

func writeExportCSV(path string, transactions []domain.LedgerTransaction) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(entryHeaders); err != nil {
		return err
	}
	for _, txn := range transactions {
		for _, entry := range txn.Entries {
			if err := w.Write(entryRow(txn, entry)); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// exportEnvelope is the JSON export document layout.
type exportEnvelope struct {
	GeneratedAt  time.Time                 `json:"generatedAt"`
	Accounts     []dto.AccountResponse     `json:"accounts"`
	Transactions []dto.TransactionResponse `json:"transactions"`
	AuditTrail   []dto.AuditEntryResponse  `json:"auditTrail,omitempty"`
}

func writeExportJSON(path string, data *exportData) error {
	envelope := exportEnvelope{
		GeneratedAt:  data.generatedAt,
		Accounts:     make([]dto.AccountResponse, 0, len(data.accounts)),
		Transactions: make([]dto.TransactionResponse, 0, len(data.transactions)),
	}
	for _, account := range data.accounts {
		envelope.Accounts = append(envelope.Accounts, dto.ToAccountResponse(account))
	}
	for _, txn := range data.transactions {
		envelope.Transactions = append(envelope.Transactions, dto.ToTransactionResponse(txn))
	}
	for _, entry := range data.auditEntries {
		envelope.AuditTrail = append(envelope.AuditTrail, dto.ToAuditEntryResponse(entry))
	}

	payload, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func writeExportXLSX(path string, data *exportData) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})

	accountRows := make([][]string, 0, len(data.accounts))
	for _, account := range data.accounts {
		accountRows = append(accountRows, accountRow(account))
	}
	if err := writeSheet(f, "Accounts", accountHeaders, accountRows, headerStyle); err != nil {
		return err
	}

	txnRows := make([][]string, 0, len(data.transactions))
	entryRows := make([][]string, 0, len(data.transactions)*2)
	for _, txn := range data.transactions {
		txnRows = append(txnRows, transactionRow(txn))
		for _, entry := range txn.Entries {
			entryRows = append(entryRows, entryRow(txn, entry))
		}
	}
	if err := writeSheet(f, "Transactions", transactionHeaders, txnRows, headerStyle); err != nil {
		return err
	}
	if err := writeSheet(f, "Journal Entries", entryHeaders, entryRows, headerStyle); err != nil {
		return err
	}

	if data.includeAudit {
		auditRows := make([][]string, 0, len(data.auditEntries))
		for _, entry := range data.auditEntries {
			auditRows = append(auditRows, auditRow(entry))
		}
		if err := writeSheet(f, "Audit Trail", auditHeaders, auditRows, headerStyle); err != nil {
			return err
		}
	}

	f.DeleteSheet("Sheet1")
	if index, err := f.GetSheetIndex("Accounts"); err == nil {
		f.SetActiveSheet(index)
	}
	return f.SaveAs(path)
}

// writeSheet fills one worksheet with a styled header row and data rows.
func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]string, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+i)))
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}
	for r, row := range rows {
		for i, value := range row {
			f.SetCellValue(sheet, fmt.Sprintf("%s%d", string(rune('A'+i)), r+2), value)
		}
	}
	for i := range headers {
		col := string(rune('A' + i))
		f.SetColWidth(sheet, col, col, 18)
	}
	return nil
}
