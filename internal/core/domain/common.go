package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // Caller reference supplied by the transport
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// CallerContext carries the pre-validated identity of the invoking principal.
// The transport layer authenticates the caller before the core is reached;
// the ledger only consumes this context for audit provenance and the
// system-process posting privilege.
type CallerContext struct {
	UserID          string `json:"userID"`        // Opaque principal identifier
	SourceService   string `json:"sourceService"` // Upstream service name, if machine-initiated
	IsSystemProcess bool   `json:"isSystemProcess"`
	IPAddress       string `json:"ipAddress"`
	UserAgent       string `json:"userAgent"`
}

// SystemCaller is the caller context used by background jobs and internal
// maintenance flows.
func SystemCaller(service string) CallerContext {
	return CallerContext{
		UserID:          "system",
		SourceService:   service,
		IsSystemProcess: true,
	}
}
