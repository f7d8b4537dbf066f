package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// Both the relational and the in-memory store produce one of these, which is
// how the deployment selects its backing store without the services knowing.
type RepositoryProvider struct {
	AccountRepo     AccountRepositoryFacade
	TransactionRepo TransactionRepositoryFacade
	AuditRepo       AuditRepositoryFacade
	SnapshotRepo    SnapshotRepositoryFacade
	ReportingRepo   ReportingRepository
}
