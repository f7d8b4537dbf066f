package dto

import (
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
)

// AuditTrailParams defines the query parameters for reading the audit trail.
type AuditTrailParams struct {
	TransactionID *string    `form:"transactionId"`
	AccountID     *string    `form:"accountId"`
	UserID        *string    `form:"userId"`
	Action        *string    `form:"action"`
	StartDate     *time.Time `form:"startDate" time_format:"2006-01-02T15:04:05Z07:00"`
	EndDate       *time.Time `form:"endDate" time_format:"2006-01-02T15:04:05Z07:00"`
	Page          int        `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize      int        `form:"pageSize,default=20" binding:"omitempty,min=1,max=100"`
}

// AuditEntryResponse is the API representation of an audit trail record.
type AuditEntryResponse struct {
	AuditID       string            `json:"auditId"`
	TransactionID string            `json:"transactionId,omitempty"`
	AccountID     string            `json:"accountId,omitempty"`
	Action        string            `json:"action"`
	OldValue      string            `json:"oldValue,omitempty"`
	NewValue      string            `json:"newValue,omitempty"`
	UserID        string            `json:"userId"`
	IPAddress     string            `json:"ipAddress,omitempty"`
	UserAgent     string            `json:"userAgent,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

// AuditTrailResponse wraps a page of audit entries, newest first.
type AuditTrailResponse struct {
	Entries    []AuditEntryResponse `json:"entries"`
	TotalCount int64                `json:"totalCount"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
}

// ToAuditEntryResponse converts a domain audit record into its API representation.
func ToAuditEntryResponse(entry domain.AuditTrailEntry) AuditEntryResponse {
	return AuditEntryResponse{
		AuditID:       entry.AuditID,
		TransactionID: entry.TransactionID,
		AccountID:     entry.AccountID,
		Action:        entry.Action,
		OldValue:      entry.OldValue,
		NewValue:      entry.NewValue,
		UserID:        entry.UserID,
		IPAddress:     entry.IPAddress,
		UserAgent:     entry.UserAgent,
		Metadata:      entry.Metadata,
		Timestamp:     entry.Timestamp,
	}
}

// ToAuditTrailResponse converts a page of domain audit records into the list payload.
func ToAuditTrailResponse(entries []domain.AuditTrailEntry, totalCount int64, page, pageSize int) AuditTrailResponse {
	responses := make([]AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, ToAuditEntryResponse(entry))
	}
	return AuditTrailResponse{
		Entries:    responses,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}
}
