package draft

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hub-portal/internal/application/audit"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
	"github.com/jhoicas/hub-portal/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// El cierre de un envío (libro, auditoría y borrado del borrador) es atómico.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		drafts repository.DraftRepository,
		submissions repository.SubmissionRepository,
		audits repository.AuditRepository,
	) error) error
}

// NFeParser lee el XML de una NF-e.
type NFeParser interface {
	Parse(data []byte) (*entity.NFeDocument, error)
}

// PDFGenerator resumen imprimible del borrador.
type PDFGenerator interface {
	GenerateDraftPDF(ctx context.Context, d *entity.Draft, remaining decimal.Decimal) ([]byte, error)
}

// AuditRecorder registra acciones fuera de una transacción.
type AuditRecorder interface {
	Record(ctx context.Context, ev audit.Event) (*entity.AuditEntry, error)
}
