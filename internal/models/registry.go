package models

import "time"

// IssueSeverity grades a validation issue. Issues never block staging.
type IssueSeverity string

const (
	IssueWarning IssueSeverity = "Warning"
	IssueError   IssueSeverity = "Error"
)

// ValidationIssue is an advisory diagnostic attached to one CSV data row.
type ValidationIssue struct {
	Row      int           `json:"row"`
	Field    string        `json:"field"`
	Message  string        `json:"message"`
	Severity IssueSeverity `json:"severity"`
}

// StagedDonor is a parsed but uncommitted import row. Fields lists the keys the file supplied
// with a non-empty value; only those overwrite an existing record on merge. Defaulted lists the
// keys the parser generated and only matter when the row is inserted.
type StagedDonor struct {
	Row       int      `json:"row"`
	Donor     Donor    `json:"donor"`
	Fields    []string `json:"fields"`
	Defaulted []string `json:"defaulted,omitempty"`
}

// ImportMode selects how a staged batch is reconciled with the registry.
type ImportMode string

const (
	ImportModeMerge  ImportMode = "merge"
	ImportModeMirror ImportMode = "mirror"
)

// ImportBatch is a staged import awaiting commit.
type ImportBatch struct {
	ID        string            `json:"id"`
	FileName  string            `json:"fileName"`
	Rows      []StagedDonor     `json:"rows"`
	Issues    []ValidationIssue `json:"issues"`
	CreatedBy string            `json:"createdBy"`
	CreatedAt time.Time         `json:"createdAt"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

// ImportCommitRequest selects the reconcile mode.
type ImportCommitRequest struct {
	Mode ImportMode `json:"mode" validate:"omitempty,oneof=merge mirror"`
}

// GeneratedCredential is a plaintext credential minted during import; it is returned once.
type GeneratedCredential struct {
	ID       string `json:"id"`
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
}

// ImportResult summarises a committed import.
type ImportResult struct {
	Mode        ImportMode            `json:"mode"`
	Committed   int                   `json:"committed"`
	Inserted    int                   `json:"inserted"`
	Updated     int                   `json:"updated"`
	Removed     int                   `json:"removed"`
	Total       int                   `json:"total"`
	Credentials []GeneratedCredential `json:"credentials,omitempty"`
}

// HealthReport is the data-quality pass over the registry.
type HealthReport struct {
	DuplicateIDs    []string `json:"duplicateIds"`
	IncompleteIDs   []string `json:"incompleteIds"`
	UnverifiedCount int      `json:"unverifiedCount"`
	Total           int      `json:"total"`
}

// RegistryStats aggregates headline counts.
type RegistryStats struct {
	Total     int            `json:"total"`
	Available int            `json:"available"`
	Blocked   int            `json:"blocked"`
	Verified  int            `json:"verified"`
	ByGroup   map[string]int `json:"byGroup"`
}

// BulkAction is an action applied to a selection of donors.
type BulkAction string

const (
	BulkVerify  BulkAction = "VERIFY"
	BulkBlock   BulkAction = "BLOCK"
	BulkUnblock BulkAction = "UNBLOCK"
	BulkDelete  BulkAction = "DELETE"
	BulkExport  BulkAction = "EXPORT"
)

// BulkActionRequest targets a set of donor ids.
type BulkActionRequest struct {
	Action BulkAction `json:"action" validate:"required,oneof=VERIFY BLOCK UNBLOCK DELETE EXPORT"`
	IDs    []string   `json:"ids" validate:"required,min=1,dive,required"`
}

// BulkActionResult reports how many donors were affected. Export carries the dossier.
type BulkActionResult struct {
	Action   BulkAction `json:"action"`
	Affected int        `json:"affected"`
	Donors   []Donor    `json:"donors,omitempty"`
}

// GlobalCommand is a registry-wide operation.
type GlobalCommand string

const (
	GlobalVerifyAll         GlobalCommand = "VERIFY_ALL"
	GlobalResetAvailability GlobalCommand = "RESET_AVAILABILITY"
)

// GlobalCommandRequest selects the command to run.
type GlobalCommandRequest struct {
	Command GlobalCommand `json:"command" validate:"required,oneof=VERIFY_ALL RESET_AVAILABILITY"`
}

// SystemMetrics is a lightweight snapshot of the process metrics.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	StoreOpCount             uint64    `json:"storeOpCount"`
	AverageStoreOpDurationMs float64   `json:"averageStoreOpDurationMs"`
	ImportRowsStaged         uint64    `json:"importRowsStaged"`
	AuditEntries             uint64    `json:"auditEntries"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
