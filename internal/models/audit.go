package models

import "time"

// Audit actions written by registry operations.
const (
	AuditActionBulkPrefix        = "BULK_"
	AuditActionGlobalPrefix      = "GLOBAL_"
	AuditActionBulkCSVExport     = "BULK_CSV_EXPORT"
	AuditActionBulkXLSXExport    = "BULK_XLSX_EXPORT"
	AuditActionBulkPDFExport     = "BULK_PDF_EXPORT"
	AuditActionGlobalJSONExport  = "GLOBAL_JSON_EXPORT"
	AuditActionSingleNodeExport  = "SINGLE_NODE_EXPORT"
	AuditActionRegistryMirror    = "REGISTRY_MIRROR"
	AuditActionBulkImport        = "BULK_IMPORT"
	AuditActionBroadcastDispatch = "BROADCAST_DISPATCH"
	AuditActionBroadcastEnd      = "BROADCAST_TERMINATE"
	AuditActionSOSSent           = "SOS_SENT"
	AuditActionNodeUpdate        = "NODE_UPDATE"
	AuditActionNodePurge         = "NODE_PURGE"
	AuditActionNodeVerify        = "NODE_VERIFY"
	AuditActionNodeBlock         = "NODE_BLOCK"
	AuditActionAdminCreate       = "ADMIN_CREATE"
	AuditActionAdminRevoke       = "ADMIN_REVOKE"
)

// AuditLogEntry is an immutable record of a completed mutating action.
type AuditLogEntry struct {
	ID            string    `db:"id" json:"id"`
	Action        string    `db:"action" json:"action"`
	Details       string    `db:"details" json:"details"`
	AdminUsername string    `db:"admin_username" json:"adminUsername"`
	Timestamp     time.Time `db:"created_at" json:"timestamp"`
}
