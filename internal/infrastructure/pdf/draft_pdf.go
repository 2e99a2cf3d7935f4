// Package pdf genera el resumen imprimible de un borrador de pré-nota.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Filial + Fornecedor  │  Documento/Série + Fecha    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONDICIONES: pago / frete / prioridad / observación         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Item | Produto | Qtd | UM | V.Unit | Total           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RATEIO: Filial | C.Custo | % | Valor      + saldo           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el token de envío + anexos                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/hub-portal/internal/application/draft"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

var freightLabels = map[string]string{
	"C": "CIF", "F": "FOB", "T": "Terceiros", "R": "Remetente", "D": "Destinatário", "S": "Sem frete",
}

// ── Generator ─────────────────────────────────────────────────────────────────

var _ draft.PDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa draft.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateDraftPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateDraftPDF(_ context.Context, d *entity.Draft, remaining decimal.Decimal) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Pré-nota "+d.Header.DocumentNumber, true).
		WithAuthor(d.UserID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(d))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(conditionsRow(d.Header))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(itemsHeaderRow())
	m.AddRows(itemRows(d.Items)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(d))

	if len(d.Installments) > 0 {
		m.AddRows(line.NewRow(3))
		m.AddRows(installmentRows(d.Installments, remaining)...)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(d)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(d *entity.Draft) core.Row {
	h := d.Header
	supplier := h.Supplier
	if h.SupplierStore != "" {
		supplier += " / " + h.SupplierStore
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New("Filial "+nonEmpty(h.Branch, "-"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Fornecedor: "+nonEmpty(supplier, "-"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("PRÉ-NOTA DE ENTRADA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(h.DocumentNumber, "-")+" / "+nonEmpty(h.Series, "-"), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Inclusão: "+nonEmpty(h.InclusionDate, "-")+"   Emissão: "+nonEmpty(h.IssueDate, "-"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func conditionsRow(h entity.DraftHeader) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CONDIÇÕES", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Cond. pagamento: %s   |   Frete: %s   |   Prioridade: %s",
				nonEmpty(h.PaymentCondition, "-"),
				nonEmpty(freightLabels[h.FreightType], nonEmpty(h.FreightType, "-")),
				nonEmpty(h.Priority, "-"),
			), props.Text{Size: 8, Top: 6, Color: colorGray}),
			text.New(nonEmpty(h.Observation, ""), props.Text{Size: 8, Top: 10, Color: colorGray}),
		),
	)
}

func itemsHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Item", 1, align.Center),
		h("Produto", 5, align.Left),
		h("Qtd", 1, align.Right),
		h("UM", 1, align.Center),
		h("V. Unit.", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

func itemRows(items []entity.DraftItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		desc := it.ProductCode
		if it.Description != "" {
			desc += " - " + it.Description
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(it.ItemCode, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(desc, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(1).Add(text.New(it.Quantity.String(), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(1).Add(text.New(it.UnitOfMeasure, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(formatMoney(it.UnitValue), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatMoney(it.TotalValue), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalRow(d *entity.Draft) core.Row {
	return row.New(10).Add(
		col.New(8),
		col.New(2).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(2).Add(text.New(formatMoney(d.Total()), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

func installmentRows(insts []entity.Installment, remaining decimal.Decimal) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(text.New("RATEIO", props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
		}))),
	}
	for _, inst := range insts {
		rows = append(rows, row.New(5).Add(
			col.New(3).Add(text.New("Filial "+inst.Branch, props.Text{Size: 8})),
			col.New(4).Add(text.New("C.Custo "+inst.CostCenter, props.Text{Size: 8})),
			col.New(2).Add(text.New(inst.Percentage.StringFixed(2)+"%", props.Text{Size: 8, Align: align.Right})),
			col.New(3).Add(text.New(formatMoney(inst.Amount), props.Text{Size: 8, Align: align.Right, Right: 1})),
		))
	}
	saldo := props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Right: 1, Top: 1}
	if !remaining.IsZero() {
		saldo.Color = colorAlert
	}
	rows = append(rows, row.New(6).Add(
		col.New(9).Add(text.New("Saldo a ratear:", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 1})),
		col.New(3).Add(text.New(formatMoney(remaining), saldo)),
	))
	return rows
}

func footerRows(d *entity.Draft) []core.Row {
	var notes []string
	for _, a := range d.Attachments {
		notes = append(notes, "• "+nonEmpty(a.Description, a.Path))
	}
	attachments := "Sem anexos."
	if len(notes) > 0 {
		attachments = "Anexos:\n" + strings.Join(notes, "\n")
	}
	return []core.Row{
		row.New(40).Add(
			col.New(3).Add(code.NewQr(d.IdempotencyToken, props.Rect{Percent: 95, Center: true})),
			col.New(9).Add(
				text.New("Token de envio: "+d.IdempotencyToken, props.Text{Size: 7, Top: 2, Left: 3, Color: colorGray}),
				text.New("Situação: "+string(d.Status.State), props.Text{Size: 8, Top: 7, Left: 3}),
				text.New(attachments, props.Text{Size: 8, Top: 13, Left: 3, Color: colorGray}),
			),
		),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney formato brasileño con dos decimales: 1234567.5 → "1.234.567,50".
func formatMoney(v decimal.Decimal) string {
	s := v.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	out := string(buf) + "," + frac
	if v.IsNegative() {
		out = "-" + out
	}
	return out
}
