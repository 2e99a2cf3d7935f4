package entity

import "time"

// Entidades auditadas.
const (
	AuditEntityDraft   = "draft"
	AuditEntityPreNote = "prenote"
	AuditEntityDock    = "dock"
)

// Acciones auditadas.
const (
	AuditActionSubmit   = "SUBMIT"
	AuditActionClassify = "CLASSIFY"
	AuditActionApprove  = "APPROVE"
	AuditActionReject   = "REJECT"
	AuditActionConfirm  = "CONFIRM"
	AuditActionReverse  = "REVERSE"
	AuditActionImport   = "IMPORT_NFE"
)

// AuditEntry registro histórico: quién, qué y cuándo, con la foto antes/después.
type AuditEntry struct {
	ID        string
	Entity    string
	EntityID  string
	Action    string
	UserID    string
	Before    []byte // JSON
	After     []byte // JSON
	Diff      string // patch en formato diff-match-patch
	CreatedAt time.Time
}

// Submission asiento del libro de envíos de borradores (clave de idempotencia única).
type Submission struct {
	IdempotencyKey string
	DraftID        string
	UserID         string
	PreNoteID      string
	Payload        []byte
	CreatedAt      time.Time
}
