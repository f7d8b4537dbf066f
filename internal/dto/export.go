package dto

import "time"

// ExportRequest defines the payload for exporting ledger data to a file.
// The audit trail can only ride along in the json and xlsx formats.
type ExportRequest struct {
	Format            string     `json:"format" binding:"required,oneof=csv json xlsx"`
	StartDate         *time.Time `json:"startDate,omitempty"`
	EndDate           *time.Time `json:"endDate,omitempty"`
	IncludeAuditTrail bool       `json:"includeAuditTrail,omitempty"`
	Async             bool       `json:"async,omitempty"`
}

// ExportResponse describes a completed export file.
type ExportResponse struct {
	FileName    string    `json:"fileName"`
	FilePath    string    `json:"filePath"`
	Format      string    `json:"format"`
	RecordCount int64     `json:"recordCount"`
	SizeBytes   int64     `json:"sizeBytes"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// ExportJobResponse acknowledges an export queued for background processing.
type ExportJobResponse struct {
	TaskID   string `json:"taskId"`
	Queue    string `json:"queue"`
	Format   string `json:"format"`
	Accepted bool   `json:"accepted"`
}
